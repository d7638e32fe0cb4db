package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// Ensure Client implements model.InferenceClient.
var _ model.InferenceClient = (*Client)(nil)

// NewLimiter returns a limiter that admits one call per minDelay.
// A non-positive minDelay disables limiting.
func NewLimiter(minDelay time.Duration) *rate.Limiter {
	if minDelay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(minDelay), 1)
}

// Client is a decorator that spaces generation calls to the wrapped
// InferenceClient. Fallback calls share the limiter, so a burst of
// concurrent single analyses is smoothed out rather than sent at once.
type Client struct {
	inner   model.InferenceClient
	limiter *rate.Limiter
}

// NewClient wraps inner with a limiter. Clients that talk to the same
// endpoint should share one limiter instance.
func NewClient(inner model.InferenceClient, limiter *rate.Limiter) *Client {
	return &Client{inner: inner, limiter: limiter}
}

// Ping is not limited.
func (c *Client) Ping(ctx context.Context) error {
	return c.inner.Ping(ctx)
}

// Generate waits for the limiter, then delegates to the wrapped client.
func (c *Client) Generate(ctx context.Context, prompt string, opts model.GenerateOptions) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}
	return c.inner.Generate(ctx, prompt, opts)
}

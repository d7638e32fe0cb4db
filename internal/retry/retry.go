package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// Ensure Client implements model.InferenceClient.
var _ model.InferenceClient = (*Client)(nil)

// Client is a decorator that retries a failing liveness probe with
// exponential backoff and jitter. Generate is passed through untouched:
// a failed generation is handled by falling back, not by repeating it.
type Client struct {
	inner      model.InferenceClient
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewClient wraps an InferenceClient with probe retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewClient(inner model.InferenceClient, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Ping probes the endpoint, retrying on transient errors.
func (c *Client) Ping(ctx context.Context) error {
	err := c.inner.Ping(ctx)
	if err == nil || !isRetryable(err) {
		return err
	}

	lastErr := err
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		delay := c.backoffDelay(attempt, lastErr)

		c.logger.Warn("retrying liveness check",
			"attempt", attempt,
			"max_retries", c.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		err = c.inner.Ping(ctx)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}

	return lastErr
}

// Generate delegates to the wrapped client.
func (c *Client) Generate(ctx context.Context, prompt string, opts model.GenerateOptions) (string, error) {
	return c.inner.Generate(ctx, prompt, opts)
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// A Retry-After duration on the error takes precedence.
func (c *Client) backoffDelay(attempt int, err error) time.Duration {
	var endpointErr *model.EndpointError
	if errors.As(err, &endpointErr) && endpointErr.RetryAfter > 0 {
		return endpointErr.RetryAfter
	}

	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Cancellation is never retried. A deadline is the probe's own timeout;
	// the caller's deadline is caught by the backoff wait in Ping.
	if errors.Is(err, context.Canceled) {
		return false
	}

	var endpointErr *model.EndpointError
	if errors.As(err, &endpointErr) {
		return endpointErr.StatusCode == 429 || endpointErr.StatusCode >= 500
	}

	// Network errors are retryable.
	return true
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// Ensure OllamaClient implements model.InferenceClient.
var _ model.InferenceClient = (*OllamaClient)(nil)

// OllamaClient calls the native Ollama HTTP API (/api/tags, /api/generate).
type OllamaClient struct {
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

// NewOllamaClient creates a client for the Ollama server at baseURL.
// timeout bounds each Generate call; zero means no per-call deadline. Ping is
// always bounded, by timeout or maxProbeTimeout, whichever is shorter.
func NewOllamaClient(baseURL, model string, timeout time.Duration, httpClient *http.Client) *OllamaClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OllamaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// generateRequest mirrors the Ollama /api/generate request body.
type generateRequest struct {
	Model   string                `json:"model"`
	Prompt  string                `json:"prompt"`
	Stream  bool                  `json:"stream"`
	Options model.GenerateOptions `json:"options"`
}

// generateResponse mirrors the relevant fields of the non-streaming response.
type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Ping checks the server with GET /api/tags. Any failure is a *model.ConnectivityError.
func (c *OllamaClient) Ping(ctx context.Context) error {
	ctx, cancel := withDeadline(ctx, probeTimeout(c.timeout))
	defer cancel()

	url := c.baseURL + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &model.ConnectivityError{Endpoint: c.baseURL, Err: fmt.Errorf("create probe request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &model.ConnectivityError{Endpoint: c.baseURL, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &model.ConnectivityError{
			Endpoint: c.baseURL,
			Err: &model.EndpointError{
				StatusCode: resp.StatusCode,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			},
		}
	}
	return nil
}

// Generate sends prompt with stream disabled and returns the generated text.
func (c *OllamaClient) Generate(ctx context.Context, prompt string, opts model.GenerateOptions) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: opts,
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	ctx, cancel := withDeadline(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &model.EndpointError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Body:       truncate(strings.TrimSpace(string(respBytes)), 512),
		}
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBytes, &genResp); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	if genResp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", genResp.Error)
	}

	return genResp.Response, nil
}

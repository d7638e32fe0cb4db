package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// Ensure OpenAIClient implements model.InferenceClient.
var _ model.InferenceClient = (*OpenAIClient)(nil)

const strategistSystemPrompt = "You are an expert M&A strategist. You answer with a single JSON object and nothing else."

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
// (OpenAI, Ollama's /v1, vLLM, LM Studio).
type OpenAIClient struct {
	client  *openai.Client
	baseURL string
	model   string
	timeout time.Duration
}

// NewOpenAIClient creates a client for the OpenAI-compatible API at baseURL.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration, httpClient *http.Client) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		baseURL: cfg.BaseURL,
		model:   model,
		timeout: timeout,
	}
}

// Ping lists models as the liveness probe.
func (c *OpenAIClient) Ping(ctx context.Context) error {
	ctx, cancel := withDeadline(ctx, probeTimeout(c.timeout))
	defer cancel()

	if _, err := c.client.ListModels(ctx); err != nil {
		return &model.ConnectivityError{Endpoint: c.baseURL, Err: mapOpenAIError(err)}
	}
	return nil
}

// Generate runs one chat completion. repeat_penalty has no direct equivalent
// and is sent as frequency_penalty (penalty - 1).
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts model.GenerateOptions) (string, error) {
	ctx, cancel := withDeadline(ctx, c.timeout)
	defer cancel()

	maxTokens := opts.MaxTokens
	if opts.NumPredict > maxTokens {
		maxTokens = opts.NumPredict
	}
	var frequencyPenalty float32
	if opts.RepeatPenalty > 1 {
		frequencyPenalty = float32(opts.RepeatPenalty - 1)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: strategistSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:      float32(opts.Temperature),
		TopP:             float32(opts.TopP),
		MaxTokens:        maxTokens,
		FrequencyPenalty: frequencyPenalty,
		Stop:             opts.Stop,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", mapOpenAIError(err))
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// mapOpenAIError converts SDK status errors into *model.EndpointError.
func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &model.EndpointError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &model.EndpointError{StatusCode: reqErr.HTTPStatusCode, Body: truncate(string(reqErr.Body), 512), Err: err}
	}
	return err
}

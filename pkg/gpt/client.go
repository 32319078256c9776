// Package gpt talks to the OpenAI chat completions API in JSON mode. It owns
// every prompt the marketplace sends: the negotiation agent and the campaign
// matching pipeline.
package gpt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"collab-backend/config"
	"collab-backend/model"
	"collab-backend/pkg/metrics"
)

// ChatCompleter is the part of *openai.Client the package uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	api        ChatCompleter
	model      string
	maxRetries int
	retryDelay time.Duration
	metrics    *metrics.Metrics
	log        *zap.Logger
}

// NewClient builds a client from configuration. Without an API key the client
// is still returned, but every call fails with model.ErrAgentUnavailable.
func NewClient(cfg config.OpenAIConfig, m *metrics.Metrics, log *zap.Logger) *Client {
	c := &Client{
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Second,
		metrics:    m,
		log:        log,
	}
	if cfg.APIKey == "" {
		return c
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	c.api = openai.NewClientWithConfig(oc)
	return c
}

// NewClientWithAPI wraps an existing ChatCompleter.
func NewClientWithAPI(api ChatCompleter, modelName string, m *metrics.Metrics, log *zap.Logger) *Client {
	return &Client{api: api, model: modelName, maxRetries: 0, retryDelay: time.Second, metrics: m, log: log}
}

// completeJSON sends one system+user exchange and decodes the JSON answer into out.
func (c *Client) completeJSON(ctx context.Context, op, system, user string, out any) error {
	if c == nil || c.api == nil {
		return model.ErrAgentUnavailable
	}
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0.4,
	}

	start := time.Now()
	resp, err := c.createWithRetry(ctx, req)
	c.metrics.ObserveLLM(op, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("%s: empty response from model", op)
	}

	txt := stripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(txt), out); err != nil {
		c.log.Debug("unparseable model output", zap.String("operation", op), zap.String("raw", txt))
		return fmt.Errorf("%s: failed to parse JSON (%d bytes): %w", op, len(txt), err)
	}
	c.log.Debug("model call finished",
		zap.String("operation", op),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("took", time.Since(start)))
	return nil
}

func (c *Client) createWithRetry(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return openai.ChatCompletionResponse{}, ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
		c.log.Warn("retrying model call", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return openai.ChatCompletionResponse{}, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return true
}

// stripFences removes a ```json fence some models add even in JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

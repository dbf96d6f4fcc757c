package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"resume-match-api/internal/llm"
	"resume-match-api/internal/shared/metrics"
	"resume-match-api/internal/shared/telemetry"
)

const (
	groqBaseURL   = "https://api.groq.com/openai/v1"
	openAIBaseURL = "https://api.openai.com/v1"

	defaultTimeout = 120 * time.Second
)

// Options configures an OpenAI-compatible chat completions client.
type Options struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// Client implements llm.Gateway against Groq or OpenAI chat completions.
type Client struct {
	provider    string
	model       string
	temperature float32
	http        *resty.Client
}

// NewClient constructs a client. A blank API key yields llm.ErrMissingCredential.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, llm.ErrMissingCredential
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("%s: model is required", opts.Provider)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL(opts.Provider)
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(opts.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		provider:    opts.Provider,
		model:       opts.Model,
		temperature: opts.Temperature,
		http:        httpClient,
	}, nil
}

func defaultBaseURL(provider string) string {
	if provider == "openai" {
		return openAIBaseURL
	}
	return groqBaseURL
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float32        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// Complete sends exactly one chat completion request and returns the message content.
func (c *Client) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature:    c.temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	metrics.IncLLMCall()
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	latency := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("request timeout: %w", err)
		}
		return "", &llm.GatewayError{Provider: c.provider, Err: err}
	}

	raw := resp.Body()
	if resp.IsError() {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = resp.Status()
		}
		return "", &llm.GatewayError{Provider: c.provider, Status: resp.StatusCode(), Err: errors.New(msg)}
	}
	if !gjson.ValidBytes(raw) {
		return "", &llm.GatewayError{Provider: c.provider, Status: resp.StatusCode(), Err: errors.New("undecodable response envelope")}
	}
	if msg := gjson.GetBytes(raw, "error.message"); msg.Exists() {
		return "", &llm.GatewayError{Provider: c.provider, Status: resp.StatusCode(), Err: errors.New(msg.String())}
	}

	logUsage(c.provider, c.model, latency, raw)

	content := gjson.GetBytes(raw, "choices.0.message.content").String()
	if strings.TrimSpace(content) == "" {
		return "", llm.ErrEmptyResponse
	}
	return content, nil
}

func logUsage(provider, model string, latency time.Duration, raw []byte) {
	fields := map[string]any{
		"provider":   provider,
		"model":      model,
		"latency_ms": latency.Milliseconds(),
	}
	if usage := gjson.GetBytes(raw, "usage"); usage.Exists() {
		fields["prompt_tokens"] = usage.Get("prompt_tokens").Int()
		fields["completion_tokens"] = usage.Get("completion_tokens").Int()
		fields["total_tokens"] = usage.Get("total_tokens").Int()
	}
	telemetry.Info("llm.response", fields)
}

var _ llm.Gateway = (*Client)(nil)

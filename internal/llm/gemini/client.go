package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"resume-match-api/internal/llm"
	"resume-match-api/internal/shared/metrics"
	"resume-match-api/internal/shared/telemetry"
)

const (
	providerName   = "gemini"
	defaultTimeout = 120 * time.Second
)

// Options configures the Gemini client.
type Options struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// Client implements llm.Gateway using the Gemini generateContent API.
type Client struct {
	model       string
	temperature float32
	models      *genai.Models
}

// NewClient constructs a client. A blank API key yields llm.ErrMissingCredential.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, llm.ErrMissingCredential
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("gemini: model is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{
		model:       opts.Model,
		temperature: opts.Temperature,
		models:      client.Models,
	}, nil
}

// Complete sends exactly one generateContent request constrained to the analysis schema.
func (c *Client) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		Temperature:       genai.Ptr(c.temperature),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    analysisSchema(),
	}

	metrics.IncLLMCall()
	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt.User), config)
	latency := time.Since(start)
	if err != nil {
		gwErr := &llm.GatewayError{Provider: providerName, Err: err}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			gwErr.Status = apiErr.Code
		}
		return "", gwErr
	}

	fields := map[string]any{
		"provider":   providerName,
		"model":      c.model,
		"latency_ms": latency.Milliseconds(),
	}
	if resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["completion_tokens"] = resp.UsageMetadata.CandidatesTokenCount
		fields["total_tokens"] = resp.UsageMetadata.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func analysisSchema() *genai.Schema {
	list := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Description: desc,
			Items:       &genai.Schema{Type: genai.TypeString},
		}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"skill_match_percentage":             {Type: genai.TypeInteger, Description: "Match score from 0 to 100"},
			"matched_skills":                     list("Skills found in the resume that match the role"),
			"missing_skills":                     list("Important skills for the role missing from the resume"),
			"resume_issues":                      list("Weaknesses in the resume"),
			"improvement_suggestions":            list("Actionable steps to improve the resume"),
			"simulated_score_after_improvements": {Type: genai.TypeInteger, Description: "Estimated score after adding the top 2 missing skills"},
		},
		Required: []string{
			"skill_match_percentage",
			"matched_skills",
			"missing_skills",
			"resume_issues",
			"improvement_suggestions",
			"simulated_score_after_improvements",
		},
		PropertyOrdering: []string{
			"skill_match_percentage",
			"matched_skills",
			"missing_skills",
			"resume_issues",
			"improvement_suggestions",
			"simulated_score_after_improvements",
		},
	}
}

var _ llm.Gateway = (*Client)(nil)

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"resume-match-api/internal/analyses"
)

const analyzePath = "/api/analyze"

// RequestError is a non-2xx reply from the analyze endpoint.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Client calls a running analyze API.
type Client struct {
	http *resty.Client
}

// Option customizes a Client.
type Option func(*resty.Client)

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) {
		c.SetTimeout(d)
	}
}

// New constructs a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(150 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{http: rc}
}

// AnalyzeResume posts one analysis request and returns the decoded record.
func (c *Client) AnalyzeResume(ctx context.Context, role, resumeText string) (analyses.AnalysisRecord, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(analyses.AnalyzeRequest{Role: role, ResumeText: resumeText}).
		Post(analyzePath)
	if err != nil {
		return analyses.AnalysisRecord{}, fmt.Errorf("analyze request: %w", err)
	}

	body := resp.Body()
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		msg := gjson.GetBytes(body, "error").String()
		if strings.TrimSpace(msg) == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode())
		}
		return analyses.AnalysisRecord{}, &RequestError{Status: resp.StatusCode(), Message: msg}
	}

	var rec analyses.AnalysisRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return analyses.AnalysisRecord{}, fmt.Errorf("decode analysis: %w", err)
	}
	return rec, nil
}

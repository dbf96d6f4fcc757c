package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-match-api/internal/llm"
	"resume-match-api/internal/shared/metrics"
	"resume-match-api/internal/shared/telemetry"
)

// ErrMissingInput is returned when role or resume text is blank.
var ErrMissingInput = errors.New("role and resumeText are required")

// Outcome labels used in logs and the analyze_failed_total metric.
const (
	OutcomeCompleted      = "completed"
	OutcomeNotConfigured  = "not_configured"
	OutcomeInvalidInput   = "invalid_input"
	OutcomeGatewayError   = "gateway_error"
	OutcomeEmptyResponse  = "empty_response"
	OutcomeMalformedReply = "malformed_response"
)

// Service runs one analysis per call: prompt, a single gateway call, validation.
type Service struct {
	Gateway  llm.Gateway
	Provider string
	Model    string
}

// Configured reports whether a gateway is available.
func (s *Service) Configured() bool {
	return s != nil && s.Gateway != nil
}

// Analyze builds the prompt, calls the gateway exactly once and validates the reply.
func (s *Service) Analyze(ctx context.Context, role, resumeText string) (AnalysisRecord, error) {
	if !s.Configured() {
		return AnalysisRecord{}, ErrGatewayNotConfigured
	}
	if missing := MissingFields(role, resumeText); len(missing) > 0 {
		return AnalysisRecord{}, fmt.Errorf("%w: %s", ErrMissingInput, strings.Join(missing, ", "))
	}

	requestID := requestIDFromContext(ctx)
	metrics.IncAnalyzeRequest()
	start := time.Now()
	defer func() {
		metrics.ObserveAnalyzeDurationMs(float64(time.Since(start).Milliseconds()))
	}()

	prompt := llm.BuildAnalysisPrompt(role, resumeText)
	raw, err := s.Gateway.Complete(ctx, prompt)
	if err == nil && strings.TrimSpace(raw) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		outcome := OutcomeGatewayError
		if errors.Is(err, llm.ErrEmptyResponse) {
			outcome = OutcomeEmptyResponse
		}
		metrics.IncAnalyzeFailed(outcome)
		telemetry.Error("analysis.failed", map[string]any{
			"request_id": requestID,
			"provider":   s.Provider,
			"model":      s.Model,
			"outcome":    outcome,
			"err":        err.Error(),
		})
		return AnalysisRecord{}, fmt.Errorf("llm complete: %w", err)
	}

	rec, err := ParseRecord(raw)
	if err != nil {
		metrics.IncAnalyzeFailed(OutcomeMalformedReply)
		telemetry.Error("analysis.failed", map[string]any{
			"request_id": requestID,
			"provider":   s.Provider,
			"model":      s.Model,
			"outcome":    OutcomeMalformedReply,
			"err":        err.Error(),
			"raw":        raw,
		})
		return AnalysisRecord{}, err
	}

	if fields := rec.OutOfRange(); len(fields) > 0 {
		telemetry.Warn("analysis.score_out_of_range", map[string]any{
			"request_id":                         requestID,
			"fields":                             fields,
			"skill_match_percentage":             rec.SkillMatchPercentage,
			"simulated_score_after_improvements": rec.SimulatedScoreAfterImprovements,
		})
	}

	metrics.IncAnalyzeCompleted()
	telemetry.Info("analysis.completed", map[string]any{
		"request_id":             requestID,
		"provider":               s.Provider,
		"model":                  s.Model,
		"skill_match_percentage": rec.SkillMatchPercentage,
		"matched_skills":         len(rec.MatchedSkills),
		"missing_skills":         len(rec.MissingSkills),
	})
	return rec, nil
}

// MissingFields names the request fields that are empty or whitespace-only.
func MissingFields(role, resumeText string) []string {
	var missing []string
	if strings.TrimSpace(role) == "" {
		missing = append(missing, "role")
	}
	if strings.TrimSpace(resumeText) == "" {
		missing = append(missing, "resumeText")
	}
	return missing
}

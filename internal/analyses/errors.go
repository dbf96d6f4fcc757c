package analyses

import (
	"errors"
	"fmt"
)

// ErrGatewayNotConfigured is returned when no provider credential was configured at startup.
var ErrGatewayNotConfigured = errors.New("llm gateway not configured")

// MalformedResponseError reports a model reply that is not a valid AnalysisRecord.
// Raw holds the reply verbatim for server-side logging only.
type MalformedResponseError struct {
	Raw   string
	Field string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed analysis: field %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("malformed analysis: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Client-facing messages.
const (
	msgMethodNotAllowed = "Method not allowed"
	msgMissingAPIKey    = "Server configuration error: API key not found"
	msgInvalidBody      = "Invalid request body"
	msgMissingFields    = "Missing required fields: role and resumeText"
	msgEmptyResponse    = "No response received from AI model"
	msgMalformed        = "AI model returned an invalid analysis"
	msgAnalyzeFailed    = "An error occurred while analyzing the resume"
)

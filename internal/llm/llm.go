package llm

import (
	"context"
	"errors"
	"fmt"
)

// Gateway sends one prompt to a completion provider and returns the raw text reply.
type Gateway interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

var (
	// ErrMissingCredential is returned when no provider API key is configured.
	ErrMissingCredential = errors.New("llm api key not configured")
	// ErrEmptyResponse is returned when the provider answered without content.
	ErrEmptyResponse = errors.New("llm response empty")
)

// GatewayError wraps a failed provider call: transport, auth, rate limit,
// non-2xx status or an undecodable envelope.
type GatewayError struct {
	Provider string
	Status   int
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s gateway error (status %d): %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s gateway error: %v", e.Provider, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

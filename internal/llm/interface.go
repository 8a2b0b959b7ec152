// Package llm talks to the hosted text completion API.
package llm

import (
	"context"
	"fmt"
)

// Completer turns a prompt into a text completion.
type Completer interface {
	// Complete sends prompt and returns the model's text. Failures are
	// reported as *BlockedError or *APIError where the upstream says why.
	Complete(ctx context.Context, prompt string) (string, error)
}

// BlockedError means the upstream content-safety filter rejected the prompt
// or withheld the response.
type BlockedError struct {
	Feedback string
}

func (e *BlockedError) Error() string {
	return "prompt blocked: " + e.Feedback
}

// APIError is a failed upstream call with an HTTP-equivalent status.
type APIError struct {
	Code    int
	Status  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("completion API error %d %s: %s", e.Code, e.Status, e.Message)
}

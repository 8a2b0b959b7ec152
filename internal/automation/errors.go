package automation

import (
	"fmt"
	"net/http"

	"github.com/manya-08/ai-workflow-automator-project/internal/models"
)

// Kind classifies why a command could not be automated.
type Kind int

const (
	KindClientInput Kind = iota + 1
	KindSafetyRejection
	KindRateLimited
	KindUpstreamUnavailable
	KindUpstreamOther
	KindResponseParse
	KindResponseShape
	KindPersistence
	KindUnexpected
)

var kindNames = map[Kind]string{
	KindClientInput:         "client_input",
	KindSafetyRejection:     "safety_rejection",
	KindRateLimited:         "rate_limited",
	KindUpstreamUnavailable: "upstream_unavailable",
	KindUpstreamOther:       "upstream_error",
	KindResponseParse:       "response_parse",
	KindResponseShape:       "response_shape",
	KindPersistence:         "persistence",
	KindUnexpected:          "unexpected",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is returned by the interpreter and the service. Message is meant for
// display; RawResponse holds the completion text when one was received.
type Error struct {
	Kind        Kind
	Status      int
	Message     string
	Details     string
	RawResponse string
	// Workflow is set when interpretation succeeded but a later step failed.
	Workflow models.Workflow
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request may succeed later.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited
}

// HTTPStatus returns the status code for e, defaulting to 500.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

func newError(kind Kind, status int, msg string, err error) *Error {
	e := &Error{Kind: kind, Status: status, Message: msg, Err: err}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

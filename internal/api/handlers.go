package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/manya-08/ai-workflow-automator-project/internal/automation"
	"github.com/manya-08/ai-workflow-automator-project/internal/models"
)

// retryAfter is the Retry-After value sent with retryable failures.
const retryAfter = "60"

const landingHTML = "<h1>Workflow Automator is Running!</h1><p>Navigate to /automate (POST only) or use the panel to interact.</p>"

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// ErrorBody is the JSON body of every failed request. Error is always set.
type ErrorBody struct {
	Error             string          `json:"error"`
	Details           string          `json:"details,omitempty"`
	StatusCode        int             `json:"status_code,omitempty"`
	GeminiRawResponse string          `json:"gemini_raw_response,omitempty"`
	ParsedWorkflow    models.Workflow `json:"parsed_workflow,omitempty"`
}

// HandleLanding serves the landing page (GET /).
func (s *Server) HandleLanding(c echo.Context) error {
	return c.HTML(http.StatusOK, landingHTML)
}

// HandleHealth returns basic health status (always returns 200 OK)
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "workflow-automator",
		Version:   Version,
	})
}

// writeError writes a plain error body.
func writeError(c echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorBody{Error: msg})
}

// writeAutomationError converts an automation error into its response.
// Anything that is not an *automation.Error is reported as unexpected.
func writeAutomationError(c echo.Context, err error) error {
	var e *automation.Error
	if !errors.As(err, &e) {
		return c.JSON(http.StatusInternalServerError, ErrorBody{
			Error:   "An unexpected error occurred during AI processing.",
			Details: err.Error(),
		})
	}

	body := ErrorBody{
		Error:             e.Message,
		Details:           e.Details,
		GeminiRawResponse: e.RawResponse,
		ParsedWorkflow:    e.Workflow,
	}
	switch e.Kind {
	case automation.KindRateLimited, automation.KindUpstreamUnavailable, automation.KindUpstreamOther:
		body.StatusCode = e.HTTPStatus()
	}
	if e.Retryable() {
		c.Response().Header().Set("Retry-After", retryAfter)
	}
	return c.JSON(e.HTTPStatus(), body)
}

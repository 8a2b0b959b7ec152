// Package api contains the HTTP handlers of the workflow automator backend.
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/manya-08/ai-workflow-automator-project/internal/auth"
	"github.com/manya-08/ai-workflow-automator-project/internal/automation"
	"github.com/manya-08/ai-workflow-automator-project/internal/models"
)

// Version is reported by the health endpoint.
var Version = "1.0.0"

// Logger defines the logging interface used by the handlers.
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Automator is the part of automation.Service the handlers need.
type Automator interface {
	Automate(ctx context.Context, command string) (*automation.Outcome, error)
	History(ctx context.Context, limit int) ([]*models.WorkflowRecord, error)
	Workflow(ctx context.Context, id int64) (*models.WorkflowRecord, error)
}

// Identity registers accounts and verifies ID tokens.
type Identity interface {
	Register(ctx context.Context, email, password string) (*auth.User, error)
	VerifyToken(ctx context.Context, idToken string) (*auth.User, error)
}

// Server holds the dependencies for the API server.
type Server struct {
	automator Automator
	identity  Identity
	logger    Logger
}

// NewServer creates a new Server.
func NewServer(automator Automator, identity Identity, logger Logger) *Server {
	return &Server{automator: automator, identity: identity, logger: logger}
}

// RegisterRoutes mounts every backend route on e. Middleware in automateMW
// wraps only POST /automate.
func (s *Server) RegisterRoutes(e *echo.Echo, automateMW ...echo.MiddlewareFunc) {
	e.GET("/", s.HandleLanding)
	e.GET("/health", s.HandleHealth)

	e.POST("/automate", s.Automate, automateMW...)
	e.POST("/register", s.Register)
	e.POST("/verify_token", s.VerifyToken)

	e.GET("/workflows", s.ListWorkflows)
	e.GET("/workflows/:id", s.GetWorkflow)

	e.GET("/openapi.yaml", echo.WrapHandler(SpecHandler()))
	e.GET("/docs", echo.WrapHandler(SwaggerHandler()))
}

// decodeBody binds the JSON request body into v. An empty body leaves v
// untouched.
func decodeBody(c echo.Context, v interface{}) error {
	return (&echo.DefaultBinder{}).BindBody(c, v)
}

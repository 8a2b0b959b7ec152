package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/manya-08/ai-workflow-automator-project/internal/auth"
	"github.com/manya-08/ai-workflow-automator-project/internal/repository"
)

const defaultHistoryLimit = 50

// AutomateRequest is the body of POST /automate.
type AutomateRequest struct {
	Command string `json:"command"`
}

// Automate interprets, stores and runs a command
// (POST /automate)
func (s *Server) Automate(c echo.Context) error {
	ctx := c.Request().Context()

	var req AutomateRequest
	if err := decodeBody(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorBody{
			Error:   "No 'command' provided in the request body. Please send your automation request here.",
			Details: err.Error(),
		})
	}

	if user, ok := auth.PrincipalFrom(ctx); ok {
		s.logger.Info("automate request", "uid", user.UID)
	}

	outcome, err := s.automator.Automate(ctx, req.Command)
	if err != nil {
		return writeAutomationError(c, err)
	}
	return c.JSON(http.StatusOK, outcome)
}

// ListWorkflows returns stored workflows, newest first
// (GET /workflows?limit=N)
func (s *Server) ListWorkflows(c echo.Context) error {
	ctx := c.Request().Context()

	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return writeError(c, http.StatusBadRequest, "limit must be a positive integer.")
		}
		limit = n
	}

	records, err := s.automator.History(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list workflows", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorBody{Error: "Failed to list workflows.", Details: err.Error()})
	}
	return c.JSON(http.StatusOK, records)
}

// GetWorkflow returns one stored workflow
// (GET /workflows/:id)
func (s *Server) GetWorkflow(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "Workflow id must be an integer.")
	}

	record, err := s.automator.Workflow(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return writeError(c, http.StatusNotFound, "Workflow not found.")
	}
	if err != nil {
		s.logger.Error("failed to load workflow", "id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorBody{Error: "Failed to load workflow.", Details: err.Error()})
	}
	return c.JSON(http.StatusOK, record)
}

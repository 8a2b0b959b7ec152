package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/manya-08/ai-workflow-automator-project/internal/automation"
	"github.com/manya-08/ai-workflow-automator-project/internal/models"
	"github.com/manya-08/ai-workflow-automator-project/internal/repository"
)

// Automator is the part of automation.Service exposed as tools.
type Automator interface {
	Automate(ctx context.Context, command string) (*automation.Outcome, error)
	History(ctx context.Context, limit int) ([]*models.WorkflowRecord, error)
	Workflow(ctx context.Context, id int64) (*models.WorkflowRecord, error)
}

type Server struct {
	mcpServer *server.MCPServer
	automator Automator
}

func NewServer(automator Automator, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Workflow Automator",
			version,
			server.WithToolCapabilities(true),
		),
		automator: automator,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"automate",
			mcp.WithDescription("Interpret a natural-language command, store the workflow and run its actions"),
			mcp.WithString("command", mcp.Required(), mcp.Description("What to automate, e.g. 'email bob@acme.com the weekly report'")),
		),
		s.handleAutomate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_workflows",
			mcp.WithDescription("List stored workflows, newest first"),
			mcp.WithNumber("limit", mcp.Description("Maximum number of workflows to return (default 50)")),
		),
		s.handleListWorkflows,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_workflow",
			mcp.WithDescription("Get one stored workflow by id"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("The workflow id")),
		),
		s.handleGetWorkflow,
	)
}

func (s *Server) handleAutomate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	command, _ := args["command"].(string)
	outcome, err := s.automator.Automate(ctx, command)
	if err != nil {
		var e *automation.Error
		if errors.As(err, &e) {
			return mcp.NewToolResultError(fmt.Sprintf("%s (status %d)", e.Message, e.HTTPStatus())), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to automate: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(outcome)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleListWorkflows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	limit := 50
	if raw, ok := args["limit"].(float64); ok {
		if raw < 1 {
			return mcp.NewToolResultError("limit must be a positive integer"), nil
		}
		limit = int(raw)
	}

	records, err := s.automator.History(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list workflows: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(records)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	id, ok := args["id"].(float64)
	if !ok {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}

	record, err := s.automator.Workflow(ctx, int64(id))
	if errors.Is(err, repository.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("Workflow %d not found", int64(id))), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get workflow: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(record)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// MountHTTPHandlers serves the MCP SSE transport under /mcp on mux.
func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}

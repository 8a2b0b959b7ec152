package automation

import (
	"context"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/manya-08/ai-workflow-automator-project/internal/models"
	"github.com/manya-08/ai-workflow-automator-project/internal/repository"
)

// SuccessMessage is reported when a command was interpreted, stored and run.
const SuccessMessage = "Workflow parsed, saved, and executed!"

// Dispatcher executes the actions of a workflow.
type Dispatcher interface {
	Dispatch(ctx context.Context, specs []models.ActionSpec) []models.ActionResult
}

// Outcome is the result of automating one command.
type Outcome struct {
	Message          string                `json:"message"`
	OriginalCommand  string                `json:"original_command"`
	ParsedWorkflow   models.Workflow       `json:"parsed_workflow"`
	ExecutionResults []models.ActionResult `json:"execution_results"`
	WorkflowID       int64                 `json:"workflow_id"`
	Warnings         []string              `json:"warnings,omitempty"`
}

// Service is a service for automating commands.
type Service struct {
	interpreter *Interpreter
	store       repository.WorkflowStore
	dispatcher  Dispatcher
	logger      Logger
	commands    metric.Int64Counter
}

// NewService creates a new Service.
func NewService(interpreter *Interpreter, store repository.WorkflowStore, dispatcher Dispatcher, logger Logger) *Service {
	counter, err := otel.Meter("github.com/manya-08/ai-workflow-automator-project/internal/automation").
		Int64Counter("automator.commands", metric.WithDescription("Commands received, by outcome"))
	if err != nil {
		logger.Warn("command counter unavailable", "error", err)
	}
	return &Service{
		interpreter: interpreter,
		store:       store,
		dispatcher:  dispatcher,
		logger:      logger,
		commands:    counter,
	}
}

// Automate interprets command, stores the workflow and runs its actions.
// Persistence only happens after a successful interpretation, and dispatch
// only after a successful save. A save failure is reported as a
// KindPersistence error that still carries the parsed workflow.
func (s *Service) Automate(ctx context.Context, command string) (*Outcome, error) {
	interp, err := s.interpreter.Interpret(ctx, command)
	if err != nil {
		s.count(ctx, err)
		return nil, err
	}

	record := &models.WorkflowRecord{
		Command:        command,
		ParsedWorkflow: interp.Workflow,
		Status:         models.StatusActive,
	}
	if err := s.store.Save(ctx, record); err != nil {
		s.logger.Error("failed to save workflow", "error", err)
		e := newError(KindPersistence, http.StatusInternalServerError, "Failed to save or execute workflow.", err)
		e.Workflow = interp.Workflow
		e.RawResponse = interp.RawResponse
		s.count(ctx, e)
		return nil, e
	}
	s.logger.Info("workflow saved", "id", record.ID)

	var results []models.ActionResult
	if list, ok := interp.Workflow.ActionList(); ok {
		results = s.dispatcher.Dispatch(ctx, models.ActionsFrom(list))
	} else {
		s.logger.Info("no executable actions found in parsed workflow", "id", record.ID)
		results = []models.ActionResult{models.NoActionsResult()}
	}

	s.count(ctx, nil)
	return &Outcome{
		Message:          SuccessMessage,
		OriginalCommand:  command,
		ParsedWorkflow:   interp.Workflow,
		ExecutionResults: results,
		WorkflowID:       record.ID,
		Warnings:         interp.Warnings,
	}, nil
}

// History returns stored workflows, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*models.WorkflowRecord, error) {
	return s.store.List(ctx, limit)
}

// Workflow returns one stored workflow.
func (s *Service) Workflow(ctx context.Context, id int64) (*models.WorkflowRecord, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) count(ctx context.Context, err error) {
	if s.commands == nil {
		return
	}
	outcome := "ok"
	var e *Error
	if errors.As(err, &e) {
		outcome = e.Kind.String()
	} else if err != nil {
		outcome = KindUnexpected.String()
	}
	s.commands.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

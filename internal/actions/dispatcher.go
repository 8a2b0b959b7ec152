package actions

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/manya-08/ai-workflow-automator-project/internal/models"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}

// Dispatcher runs actions one after another and reports one result each.
type Dispatcher struct {
	email      *EmailSender
	slack      *SlackNotifier
	logger     Logger
	dispatched metric.Int64Counter
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(email *EmailSender, slack *SlackNotifier, logger Logger) *Dispatcher {
	counter, err := otel.Meter("github.com/manya-08/ai-workflow-automator-project/internal/actions").
		Int64Counter("automator.actions.dispatched", metric.WithDescription("Actions dispatched, by type and outcome"))
	if err != nil {
		logger.Warn("action counter unavailable", "error", err)
	}
	return &Dispatcher{email: email, slack: slack, logger: logger, dispatched: counter}
}

// Dispatch executes specs in order. The result slice always has the same
// length and order as specs; failures are reported, never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, specs []models.ActionSpec) []models.ActionResult {
	results := make([]models.ActionResult, 0, len(specs))
	for _, spec := range specs {
		result := d.run(ctx, Resolve(spec))
		if result.Message == "" {
			result.Message = "No message provided."
		}
		d.logger.Info("action executed", "action_type", result.ActionType, "success", result.Success, "message", result.Message)
		if d.dispatched != nil {
			d.dispatched.Add(ctx, 1, metric.WithAttributes(
				attribute.String("action_type", result.ActionType),
				attribute.Bool("success", result.Success),
			))
		}
		results = append(results, result)
	}
	return results
}

func (d *Dispatcher) run(ctx context.Context, action Action) models.ActionResult {
	var ok bool
	var msg string
	switch a := action.(type) {
	case EmailAction:
		ok, msg = d.email.Send(ctx, a)
	case SlackAction:
		ok, msg = d.slack.Notify(ctx, a)
	case UnknownAction:
		tag := a.Tag
		if tag == "" {
			tag = "None"
		}
		msg = fmt.Sprintf("Unknown or unimplemented action type: %s", tag)
	}
	return models.ActionResult{ActionType: action.Type(), Success: ok, Message: msg}
}

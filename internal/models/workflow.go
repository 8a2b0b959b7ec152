// Package models defines the domain models for the workflow automator
package models

import (
	"time"
)

// StatusActive is the status every stored workflow starts with.
const StatusActive = "active"

// Workflow is the structure produced by interpreting a command:
// {"trigger": {"type", "details"}, "actions": [{"type", "details"}, ...]}.
// It is kept as a generic mapping so that fields the model adds beyond the
// trigger/actions envelope survive storage and are echoed back unchanged.
type Workflow map[string]interface{}

// ActionList returns the "actions" field when it is a JSON array.
func (w Workflow) ActionList() ([]interface{}, bool) {
	actions, ok := w["actions"].([]interface{})
	return actions, ok
}

// WorkflowRecord is a persisted interpretation of one command.
type WorkflowRecord struct {
	ID             int64     `json:"id"`
	Command        string    `json:"command"`
	ParsedWorkflow Workflow  `json:"parsed_workflow"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

package models

import "fmt"

// Action type tags understood by the dispatcher.
const (
	ActionSendEmail = "send_email"
	ActionSendSlack = "send_slack_notification"
)

// ActionSpec is one requested effect as it appears in a parsed workflow.
type ActionSpec struct {
	Type    string                 `json:"type"`
	Details map[string]interface{} `json:"details"`
}

// Detail returns details[key] as a string, or "" when missing.
func (a ActionSpec) Detail(key string) string {
	v, ok := a.Details[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// DetailOr is Detail with a fallback for absent keys. A key that is present
// but empty is returned as-is.
func (a ActionSpec) DetailOr(key, fallback string) string {
	if _, ok := a.Details[key]; !ok {
		return fallback
	}
	return a.Detail(key)
}

// ActionResult is the outcome of a single dispatched action.
type ActionResult struct {
	ActionType string `json:"action_type"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
}

// NoActionsResult is reported when a workflow carries nothing to execute.
func NoActionsResult() ActionResult {
	return ActionResult{
		ActionType: "None",
		Success:    true,
		Message:    "No specific actions to execute.",
	}
}

// ActionsFrom normalizes a decoded JSON value into a sequence of action specs.
// A single object is treated as a one-element sequence. Entries that are not
// objects become specs with an empty type so they still yield a result.
func ActionsFrom(v interface{}) []ActionSpec {
	switch t := v.(type) {
	case nil:
		return []ActionSpec{}
	case []interface{}:
		specs := make([]ActionSpec, 0, len(t))
		for _, item := range t {
			specs = append(specs, actionSpecFrom(item))
		}
		return specs
	case []ActionSpec:
		return t
	case ActionSpec:
		return []ActionSpec{t}
	default:
		return []ActionSpec{actionSpecFrom(t)}
	}
}

func actionSpecFrom(v interface{}) ActionSpec {
	m, ok := v.(map[string]interface{})
	if !ok {
		return ActionSpec{}
	}
	spec := ActionSpec{Details: map[string]interface{}{}}
	if typ, ok := m["type"].(string); ok {
		spec.Type = typ
	} else if m["type"] != nil {
		spec.Type = fmt.Sprint(m["type"])
	}
	if details, ok := m["details"].(map[string]interface{}); ok {
		spec.Details = details
	}
	return spec
}

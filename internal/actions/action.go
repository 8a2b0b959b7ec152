// Package actions executes the effects named in a parsed workflow.
package actions

import (
	"github.com/manya-08/ai-workflow-automator-project/internal/models"
)

// Action is the closed set of executable actions. The unexported marker
// keeps other packages from adding variants.
type Action interface {
	Type() string
	isAction()
}

// EmailAction composes and relays one plain-text email.
type EmailAction struct {
	Recipient string
	Subject   string
	Body      string
}

// SlackAction posts a message to the configured incoming webhook.
type SlackAction struct {
	Message string
	// Channel overrides the webhook's default channel when set.
	Channel string
}

// UnknownAction is any type tag without a handler.
type UnknownAction struct {
	Tag string
}

func (EmailAction) Type() string { return models.ActionSendEmail }
func (SlackAction) Type() string { return models.ActionSendSlack }

func (u UnknownAction) Type() string {
	if u.Tag == "" {
		return "Unknown Action"
	}
	return u.Tag
}

func (EmailAction) isAction()   {}
func (SlackAction) isAction()   {}
func (UnknownAction) isAction() {}

// resolvers maps a type tag to the constructor for its variant.
var resolvers = map[string]func(models.ActionSpec) Action{
	models.ActionSendEmail: func(spec models.ActionSpec) Action {
		return EmailAction{
			Recipient: spec.Detail("recipient"),
			Subject:   spec.DetailOr("subject", "No Subject"),
			Body:      spec.Detail("body"),
		}
	},
	models.ActionSendSlack: func(spec models.ActionSpec) Action {
		return SlackAction{
			Message: spec.Detail("message"),
			Channel: spec.Detail("channel"),
		}
	},
}

// Resolve maps spec to its Action variant, defaulting to UnknownAction.
func Resolve(spec models.ActionSpec) Action {
	if resolve, ok := resolvers[spec.Type]; ok {
		return resolve(spec)
	}
	return UnknownAction{Tag: spec.Type}
}

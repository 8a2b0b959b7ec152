// Package prompt holds the fixed instruction sent to the completion API.
// The field names it teaches (trigger.type, trigger.details, actions[].type,
// actions[].details) are what the interpreter parses, so edits here must keep
// that envelope intact.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// Example is a few-shot demonstration of a command and its workflow.
type Example struct {
	Command  string
	Workflow string
}

// Examples are embedded in every prompt, in this order.
var Examples = []Example{
	{
		Command: "When a new user signs up, send them a welcome email.",
		Workflow: `{
    "trigger": {
        "type": "new_user_signup",
        "details": {}
    },
    "actions": [
        {
            "type": "send_email",
            "details": {
                "subject": "Welcome!",
                "body": "Thank you for signing up.",
                "recipient": "new_user_email_placeholder"
            }
        }
    ]
}`,
	},
	{
		Command: "Send an email to support@example.com about a critical issue with subject 'Critical Bug Report' and body 'The payment gateway is down.'",
		Workflow: `{
    "trigger": {
        "type": "manual_trigger",
        "details": {}
    },
    "actions": [
        {
            "type": "send_email",
            "details": {
                "subject": "Critical Bug Report",
                "body": "The payment gateway is down.",
                "recipient": "support@example.com"
            }
        }
    ]
}`,
	},
	{
		Command: "Notify on Slack in the #general channel when a payment is received.",
		Workflow: `{
    "trigger": {
        "type": "payment_received",
        "details": {}
    },
    "actions": [
        {
            "type": "send_slack_notification",
            "details": {
                "channel": "general",
                "message": "A new payment has been received!"
            }
        }
    ]
}`,
	},
	{
		Command: "Just send a quick message to #random channel on Slack saying 'Daily report is ready!'",
		Workflow: `{
    "trigger": {
        "type": "manual_trigger",
        "details": {}
    },
    "actions": [
        {
            "type": "send_slack_notification",
            "details": {
                "channel": "random",
                "message": "Daily report is ready!"
            }
        }
    ]
}`,
	},
}

const instruction = `
The user wants to automate a workflow. Analyze the following natural language command and extract **only a single, complete JSON object** containing the 'trigger' and 'action(s)' in a structured format.
Do NOT include any surrounding text, markdown code blocks ({{"` + "```" + `json"}}), or other characters outside of the JSON object itself.
If a trigger or action is unclear, mark it as "unclear".

**For sending an email, the action should be formatted as:**
{
    "type": "send_email",
    "details": {
        "subject": "Your Email Subject",
        "body": "Your Email Body Content",
        "recipient": "recipient@example.com"
    }
}
Ensure the 'recipient' is a valid email address.

**For sending a Slack notification, the action should be formatted as:**
{
    "type": "send_slack_notification",
    "details": {
        "channel": "#your-channel-name", // Optional: if omitted, uses default webhook channel
        "message": "Your message content"
    }
}

{{range $i, $ex := .Examples}}
Example {{inc $i}}: "{{$ex.Command}}"
{{$ex.Workflow}}
{{end}}
User command: "{{.Command}}"
`

var tmpl = template.Must(template.New("instruction").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(instruction))

// Render builds the completion prompt for command.
func Render(command string) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		Examples []Example
		Command  string
	}{Examples: Examples, Command: command})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// ExampleWorkflows decodes the few-shot workflows. Used to seed a store.
func ExampleWorkflows() (map[string]map[string]interface{}, error) {
	out := make(map[string]map[string]interface{}, len(Examples))
	for _, ex := range Examples {
		var wf map[string]interface{}
		dec := json.NewDecoder(strings.NewReader(ex.Workflow))
		if err := dec.Decode(&wf); err != nil {
			return nil, fmt.Errorf("decode example %q: %w", ex.Command, err)
		}
		out[ex.Command] = wf
	}
	return out, nil
}

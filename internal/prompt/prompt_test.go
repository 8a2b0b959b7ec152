package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_EmbedsCommandAndEnvelope(t *testing.T) {
	out, err := Render(`Email "ops@example.com" when the build breaks`)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), `User command: "Email "ops@example.com" when the build breaks"`))
	for _, want := range []string{`"trigger"`, `"actions"`, `"type"`, `"details"`, "send_email", "send_slack_notification", "```json"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "Example 1: \"When a new user signs up, send them a welcome email.\"")
	assert.Contains(t, out, "Example 4: ")
	assert.NotContains(t, out, "Example 5: ")
}

func TestExampleWorkflows_AreValidJSON(t *testing.T) {
	wfs, err := ExampleWorkflows()
	require.NoError(t, err)
	require.Len(t, wfs, len(Examples))

	for cmd, wf := range wfs {
		trigger, ok := wf["trigger"].(map[string]interface{})
		require.True(t, ok, cmd)
		assert.NotEmpty(t, trigger["type"], cmd)
		actions, ok := wf["actions"].([]interface{})
		require.True(t, ok, cmd)
		assert.Len(t, actions, 1, cmd)
	}
}

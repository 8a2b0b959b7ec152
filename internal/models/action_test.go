package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionsFrom_SingleObject(t *testing.T) {
	specs := ActionsFrom(map[string]interface{}{"type": "totally_unknown"})
	assert.Len(t, specs, 1)
	assert.Equal(t, "totally_unknown", specs[0].Type)
	assert.NotNil(t, specs[0].Details)
}

func TestActionsFrom_PreservesOrder(t *testing.T) {
	specs := ActionsFrom([]interface{}{
		map[string]interface{}{"type": "a"},
		"not an object",
		map[string]interface{}{"type": "c", "details": map[string]interface{}{"k": "v"}},
	})
	assert.Equal(t, []string{"a", "", "c"}, []string{specs[0].Type, specs[1].Type, specs[2].Type})
	assert.Equal(t, "v", specs[2].Detail("k"))
}

func TestActionsFrom_Empty(t *testing.T) {
	assert.Empty(t, ActionsFrom([]interface{}{}))
	assert.Empty(t, ActionsFrom(nil))
}

func TestActionSpec_DetailOr(t *testing.T) {
	spec := ActionSpec{Details: map[string]interface{}{"body": "", "n": 3.0}}
	assert.Equal(t, "No Subject", spec.DetailOr("subject", "No Subject"))
	assert.Equal(t, "", spec.DetailOr("body", "fallback"))
	assert.Equal(t, "3", spec.Detail("n"))
}

func TestWorkflow_ActionList(t *testing.T) {
	wf := Workflow{"actions": map[string]interface{}{"type": "send_email"}}
	_, ok := wf.ActionList()
	assert.False(t, ok)

	wf = Workflow{"actions": []interface{}{}, "trigger": map[string]interface{}{"type": "manual_trigger"}}
	list, ok := wf.ActionList()
	assert.True(t, ok)
	assert.Empty(t, list)
}

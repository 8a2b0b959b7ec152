package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/manya-08/ai-workflow-automator-project/internal/models"
)

// ErrNotFound is returned when no workflow has the requested id.
var ErrNotFound = errors.New("workflow not found")

// WorkflowStore is an append-only store of interpreted workflows. There is
// no update or delete.
type WorkflowStore interface {
	// Save inserts record and fills in its ID, Status and CreatedAt.
	Save(ctx context.Context, record *models.WorkflowRecord) error
	// Get retrieves a workflow by its ID.
	Get(ctx context.Context, id int64) (*models.WorkflowRecord, error)
	// List returns the newest workflows first, at most limit of them.
	List(ctx context.Context, limit int) ([]*models.WorkflowRecord, error)
	// Ping checks the connection.
	Ping(ctx context.Context) error
	Close() error
}

// encodeWorkflow produces the stored form of wf. encoding/json sorts map
// keys, so equal workflows always encode to the same bytes.
func encodeWorkflow(wf models.Workflow) (string, error) {
	if wf == nil {
		wf = models.Workflow{}
	}
	data, err := json.Marshal(wf)
	if err != nil {
		return "", fmt.Errorf("encode workflow: %w", err)
	}
	return string(data), nil
}

func decodeWorkflow(data string) (models.Workflow, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var wf models.Workflow
	if err := dec.Decode(&wf); err != nil {
		return nil, fmt.Errorf("decode stored workflow: %w", err)
	}
	return wf, nil
}

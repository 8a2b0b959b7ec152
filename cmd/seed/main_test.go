package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manya-08/ai-workflow-automator-project/internal/logging"
	"github.com/manya-08/ai-workflow-automator-project/internal/prompt"
	"github.com/manya-08/ai-workflow-automator-project/internal/repository"
)

func TestSeed_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := repository.NewSQLiteWorkflowStore(ctx, filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	defer store.Close()

	n, err := seed(ctx, store, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, len(prompt.Examples), n)

	n, err = seed(ctx, store, logging.NewNop())
	require.NoError(t, err)
	assert.Zero(t, n)

	records, err := store.List(ctx, 100)
	require.NoError(t, err)
	require.Len(t, records, len(prompt.Examples))
	// newest first, so the last example is on top
	assert.Equal(t, prompt.Examples[len(prompt.Examples)-1].Command, records[0].Command)
}

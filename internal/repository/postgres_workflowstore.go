package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/manya-08/ai-workflow-automator-project/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS workflows (
	id BIGSERIAL PRIMARY KEY,
	command TEXT NOT NULL,
	parsed_workflow_json TEXT NOT NULL,
	status TEXT DEFAULT 'active',
	created_at TIMESTAMPTZ DEFAULT now()
);
`

// PostgresWorkflowStore is a PostgreSQL implementation of the WorkflowStore interface.
type PostgresWorkflowStore struct {
	db *pgxpool.Pool
}

// NewPostgresWorkflowStore creates a new PostgresWorkflowStore and ensures
// the workflows table exists.
func NewPostgresWorkflowStore(ctx context.Context, db *pgxpool.Pool) (*PostgresWorkflowStore, error) {
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("create workflows table: %w", err)
	}
	return &PostgresWorkflowStore{db: db}, nil
}

// Save saves a workflow to the store.
func (s *PostgresWorkflowStore) Save(ctx context.Context, record *models.WorkflowRecord) error {
	payload, err := encodeWorkflow(record.ParsedWorkflow)
	if err != nil {
		return err
	}
	if record.Status == "" {
		record.Status = models.StatusActive
	}
	err = s.db.QueryRow(ctx,
		"INSERT INTO workflows (command, parsed_workflow_json, status) VALUES ($1, $2, $3) RETURNING id, created_at",
		record.Command, payload, record.Status,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}
	return nil
}

// Get retrieves a workflow by its ID.
func (s *PostgresWorkflowStore) Get(ctx context.Context, id int64) (*models.WorkflowRecord, error) {
	row := s.db.QueryRow(ctx,
		"SELECT id, command, parsed_workflow_json, COALESCE(status, 'active'), created_at FROM workflows WHERE id = $1", id)
	record, err := scanPgRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return record, err
}

// List returns the newest workflows first.
func (s *PostgresWorkflowStore) List(ctx context.Context, limit int) ([]*models.WorkflowRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		"SELECT id, command, parsed_workflow_json, COALESCE(status, 'active'), created_at FROM workflows ORDER BY id DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.WorkflowRecord
	for rows.Next() {
		record, err := scanPgRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Ping checks the connection.
func (s *PostgresWorkflowStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the pool.
func (s *PostgresWorkflowStore) Close() error {
	s.db.Close()
	return nil
}

func scanPgRecord(row pgx.Row) (*models.WorkflowRecord, error) {
	var record models.WorkflowRecord
	var payload string
	if err := row.Scan(&record.ID, &record.Command, &payload, &record.Status, &record.CreatedAt); err != nil {
		return nil, err
	}
	wf, err := decodeWorkflow(payload)
	if err != nil {
		return nil, err
	}
	record.ParsedWorkflow = wf
	return &record, nil
}

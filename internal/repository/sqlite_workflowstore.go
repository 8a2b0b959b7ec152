package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/manya-08/ai-workflow-automator-project/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS workflows (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	command TEXT NOT NULL,
	parsed_workflow_json TEXT NOT NULL,
	status TEXT DEFAULT 'active',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteWorkflowStore is a SQLite implementation of the WorkflowStore interface.
type SQLiteWorkflowStore struct {
	db *sql.DB
}

// NewSQLiteWorkflowStore opens (creating if needed) the database at path.
func NewSQLiteWorkflowStore(ctx context.Context, path string) (*SQLiteWorkflowStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single writer avoids SQLITE_BUSY and keeps ":memory:" on one connection
	db.SetMaxOpenConns(1)

	s := &SQLiteWorkflowStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteWorkflowStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create workflows table: %w", err)
	}
	return nil
}

// Save saves a workflow to the store.
func (s *SQLiteWorkflowStore) Save(ctx context.Context, record *models.WorkflowRecord) error {
	payload, err := encodeWorkflow(record.ParsedWorkflow)
	if err != nil {
		return err
	}
	if record.Status == "" {
		record.Status = models.StatusActive
	}
	createdAt := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO workflows (command, parsed_workflow_json, status, created_at) VALUES (?, ?, ?, ?)`,
		record.Command, payload, record.Status, createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}
	record.ID = id
	record.CreatedAt = createdAt
	return nil
}

// Get retrieves a workflow by its ID.
func (s *SQLiteWorkflowStore) Get(ctx context.Context, id int64) (*models.WorkflowRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, command, parsed_workflow_json, status, created_at FROM workflows WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return record, err
}

// List returns the newest workflows first.
func (s *SQLiteWorkflowStore) List(ctx context.Context, limit int) ([]*models.WorkflowRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, parsed_workflow_json, status, created_at FROM workflows ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.WorkflowRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Ping checks the connection.
func (s *SQLiteWorkflowStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteWorkflowStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*models.WorkflowRecord, error) {
	var record models.WorkflowRecord
	var payload string
	var status sql.NullString
	var createdAt sql.NullTime
	if err := row.Scan(&record.ID, &record.Command, &payload, &status, &createdAt); err != nil {
		return nil, err
	}
	wf, err := decodeWorkflow(payload)
	if err != nil {
		return nil, err
	}
	record.ParsedWorkflow = wf
	record.Status = models.StatusActive
	if status.Valid {
		record.Status = status.String
	}
	if createdAt.Valid {
		record.CreatedAt = createdAt.Time
	}
	return &record, nil
}

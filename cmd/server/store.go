package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/manya-08/ai-workflow-automator-project/internal/config"
	"github.com/manya-08/ai-workflow-automator-project/internal/logging"
	"github.com/manya-08/ai-workflow-automator-project/internal/repository"
)

// openStore opens the workflow store selected by db.driver.
func openStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (repository.WorkflowStore, error) {
	switch cfg.DB.Driver {
	case "postgres":
		pool, err := initDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		store, err := repository.NewPostgresWorkflowStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil
	default:
		logger.Debug("Opening SQLite store", "path", cfg.DB.Path)
		return repository.NewSQLiteWorkflowStore(ctx, cfg.DB.Path)
	}
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	logger.Debug("Initializing database connection", "host", cfg.DB.Host, "name", cfg.DB.Name)

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

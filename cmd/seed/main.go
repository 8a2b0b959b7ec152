package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/manya-08/ai-workflow-automator-project/internal/config"
	"github.com/manya-08/ai-workflow-automator-project/internal/logging"
	"github.com/manya-08/ai-workflow-automator-project/internal/models"
	"github.com/manya-08/ai-workflow-automator-project/internal/prompt"
	"github.com/manya-08/ai-workflow-automator-project/internal/repository"
)

// seedListLimit bounds the duplicate check; the store is expected to be
// small when seeding.
const seedListLimit = 10000

func main() {
	ctx := context.Background()

	// Load config
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.NewLogger(cfg.LogLevel)

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	seeded, err := seed(ctx, store, logger)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	logger.Info("Seeding complete!", "seeded", seeded)
}

// seed stores every few-shot example whose command is not stored yet.
func seed(ctx context.Context, store repository.WorkflowStore, logger *logging.Logger) (int, error) {
	// 1. Check for existing workflows to prevent duplicates
	existing, err := store.List(ctx, seedListLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to list existing workflows: %w", err)
	}
	existingMap := make(map[string]bool, len(existing))
	for _, r := range existing {
		existingMap[r.Command] = true
	}

	// 2. Store the example workflows in prompt order
	workflows, err := prompt.ExampleWorkflows()
	if err != nil {
		return 0, err
	}

	seeded := 0
	for _, ex := range prompt.Examples {
		if existingMap[ex.Command] {
			logger.Info("Skipping existing workflow", "command", ex.Command)
			continue
		}

		record := &models.WorkflowRecord{
			Command:        ex.Command,
			ParsedWorkflow: models.Workflow(workflows[ex.Command]),
			Status:         models.StatusActive,
		}
		if err := store.Save(ctx, record); err != nil {
			logger.Error("Failed to seed workflow", "command", ex.Command, "error", err)
			continue
		}
		logger.Info("Seeded workflow", "id", record.ID, "command", ex.Command)
		seeded++
	}
	return seeded, nil
}

func openStore(ctx context.Context, cfg *config.Config) (repository.WorkflowStore, error) {
	if cfg.DB.Driver != "postgres" {
		return repository.NewSQLiteWorkflowStore(ctx, cfg.DB.Path)
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	store, err := repository.NewPostgresWorkflowStore(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/manya-08/ai-workflow-automator-project/internal/config"
	"github.com/manya-08/ai-workflow-automator-project/internal/logging"
	"github.com/manya-08/ai-workflow-automator-project/internal/models"
)

func newHistoryCommand(envFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored workflows, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			return printHistory(cmd.Context(), cmd.OutOrStdout(), cfg, limit, asJSON)
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of workflows to show")
	cmd.Flags().Bool("json", false, "Print records as JSON")
	return cmd
}

func printHistory(ctx context.Context, out io.Writer, cfg *config.Config, limit int, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := openStore(ctx, cfg, logging.NewLogger(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	records, err := store.List(ctx, limit)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	return writeHistoryTable(out, records)
}

func writeHistoryTable(out io.Writer, records []*models.WorkflowRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "No workflows stored yet.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tSTATUS\tACTIONS\tCOMMAND")
	for _, r := range records {
		actions := "-"
		if list, ok := r.ParsedWorkflow.ActionList(); ok {
			actions = fmt.Sprint(len(list))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Status, actions, truncate(r.Command, 60))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

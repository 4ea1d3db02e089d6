package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vesselquery/server/internal/agent/model"
)

// QueryCmd returns the one-shot query command.
func QueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query \"<natural language query>\"",
		Short: "Run a single vessel-movement query",
		Long: `Run one natural-language query against the AIS position store.

The query is planned by the configured LLM, validated, and executed
deterministically. The result format (table, map, summary) is chosen by
the planner unless the query states one.

Usage:
  vesselquery query "show trajectory of vessel 367001234 last 24 hours"
  vesselquery query --session ops "which vessels were loitering last week?"`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().String("session", "default", "Session ID for conversational context")
	cmd.Flags().Bool("verbose", false, "Print the execution log after the result")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	session, _ := cmd.Flags().GetString("session")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Runner.Run(ctx, model.QueryInput{
		SessionID: session,
		Query:     args[0],
	})
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	renderResult(res, verbose)
	return nil
}

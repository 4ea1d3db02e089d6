package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vesselquery/server/internal/agent/model"
)

// ReplCmd returns the interactive session command.
func ReplCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive query session",
		Long: `Start an interactive session. Queries within one session share
conversational context, so follow-ups like "show it on a map" refer back
to the previous answer.

Session controls:
  :context    show the current session context
  :clear      drop transcript and context for this session
  :quit       exit (also exit, quit, Ctrl-D)`,
		RunE: runRepl,
	}

	cmd.Flags().String("session", "", "Session ID to resume (defaults to a fresh one)")
	cmd.Flags().Bool("verbose", false, "Print the execution log after each result")

	return cmd
}

func runRepl(cmd *cobra.Command, args []string) error {
	session, _ := cmd.Flags().GetString("session")
	verbose, _ := cmd.Flags().GetBool("verbose")
	if session == "" {
		session = uuid.NewString()
	}

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

	bold := color.New(color.Bold)
	fmt.Printf("vesselquery interactive session %s\n", bold.Sprint(session))
	fmt.Println("Type a query, or :quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	prompt := color.New(color.FgCyan).Sprint("vq> ")
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case ":quit", "quit", "exit":
			return nil
		case ":clear":
			app.Memory.Clear(ctx, session)
			fmt.Println("Session context cleared")
			continue
		case ":context":
			fmt.Println(app.Memory.ContextSummary(session))
			continue
		}

		res, err := app.Runner.Run(ctx, model.QueryInput{
			SessionID: session,
			Query:     line,
		})
		if err != nil {
			fmt.Printf("%s %v\n", color.New(color.FgRed).Sprint("error:"), err)
			continue
		}
		renderResult(res, verbose)
	}
}

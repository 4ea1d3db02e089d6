package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vesselquery/server/internal/agent/model"
	"github.com/vesselquery/server/internal/agent/repo"
)

// HistoryCmd returns the transcript archive inspection command.
func HistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <session-id>",
		Short: "Show the archived transcript of a session",
		Long: `Show the archived transcript of a session from the Redis transcript
archive. Requires REDIS_URL to be configured; without the archive,
transcripts only live in the process that served the session.`,
		Args: cobra.ExactArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().Bool("clear", false, "Delete the archived transcript instead of showing it")
	cmd.Flags().Bool("count", false, "Print only the number of archived turns")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	clear, _ := cmd.Flags().GetBool("clear")
	countOnly, _ := cmd.Flags().GetBool("count")

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if !cfg.Redis.Enabled() {
		return fmt.Errorf("transcript archive not configured (set REDIS_URL)")
	}

	rdb, err := cfg.Redis.New()
	if err != nil {
		return fmt.Errorf("initialising Redis client: %w", err)
	}
	defer rdb.Close()

	ttl, err := time.ParseDuration(cfg.Session.ArchiveTTL)
	if err != nil {
		return fmt.Errorf("invalid SESSION_ARCHIVE_TTL %q: %w", cfg.Session.ArchiveTTL, err)
	}
	archive := repo.NewRedisTranscriptRepository(rdb, ttl)

	ctx := cmd.Context()
	sessionID := args[0]

	if clear {
		if err := archive.ClearTranscript(ctx, sessionID); err != nil {
			return fmt.Errorf("clearing transcript: %w", err)
		}
		fmt.Printf("Cleared archived transcript for session %s\n", sessionID)
		return nil
	}

	if countOnly {
		n, err := archive.TurnCount(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("counting turns: %w", err)
		}
		fmt.Printf("%d turn(s)\n", n)
		return nil
	}

	turns, err := archive.LoadTranscript(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("loading transcript: %w", err)
	}
	if len(turns) == 0 {
		fmt.Println("No archived transcript for this session")
		return nil
	}

	userColor := color.New(color.FgCyan)
	for _, turn := range turns {
		label := turn.Role
		if turn.Role == model.RoleUser {
			label = userColor.Sprint(turn.Role)
		}
		fmt.Printf("%s: %s\n", label, turn.Content)
	}
	fmt.Printf("%d turn(s)\n", len(turns))
	return nil
}

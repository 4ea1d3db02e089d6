package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vesselquery/server/internal/cli"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "vesselquery",
		Short:   "Natural-language queries over AIS vessel movement data",
		Version: version,
		Long: `vesselquery answers natural-language questions about vessel movement:
trajectories, vessel listings and loitering detection over an AIS
position store. An LLM plans each query into a structured intent; the
pipeline validates and executes it deterministically.`,
	}

	rootCmd.AddCommand(cli.QueryCmd())
	rootCmd.AddCommand(cli.ReplCmd())
	rootCmd.AddCommand(cli.IngestCmd())
	rootCmd.AddCommand(cli.VesselsCmd())
	rootCmd.AddCommand(cli.HistoryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

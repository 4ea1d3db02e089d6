package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vesselquery/server/internal/store"
)

// IngestCmd returns the CSV ingest command.
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file.csv>",
		Short: "Load AIS positions from a CSV file into the position store",
		Long: `Load AIS position reports from a CSV export into the position store.

The default column names follow the standard AIS export layout
(BaseDateTime, MMSI, LAT, LON, SOG, COG). Malformed rows are skipped and
counted, not fatal.`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().String("time-column", "", "Override the timestamp column name")
	cmd.Flags().String("mmsi-column", "", "Override the MMSI column name")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening position store: %w", err)
	}
	defer st.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	cols := store.DefaultCSVColumns()
	if v, _ := cmd.Flags().GetString("time-column"); v != "" {
		cols.Timestamp = v
	}
	if v, _ := cmd.Flags().GetString("mmsi-column"); v != "" {
		cols.MMSI = v
	}

	inserted, skipped, err := st.IngestCSV(cmd.Context(), f, cols)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", args[0], err)
	}

	fmt.Printf("%s inserted %d rows", color.New(color.FgGreen).Sprint("✓"), inserted)
	if skipped > 0 {
		fmt.Printf(", %s", color.New(color.FgYellow).Sprintf("skipped %d malformed", skipped))
	}
	fmt.Println()
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vesselquery/server/internal/store"
)

// VesselsCmd returns the vessel listing command.
func VesselsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vessels",
		Short: "List the vessel MMSIs present in the position store",
		RunE:  runVessels,
	}
}

func runVessels(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening position store: %w", err)
	}
	defer st.Close()

	ids, err := st.ListVesselIDs(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing vessels: %w", err)
	}

	for _, id := range ids {
		fmt.Println(id)
	}
	fmt.Printf("%d vessel(s)\n", len(ids))
	return nil
}

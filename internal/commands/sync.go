package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finlens/backend/internal/config"
	"github.com/finlens/backend/internal/engine"
	"github.com/finlens/backend/internal/sheets"
)

func newSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Analyze and push the results to the configured spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			syncer, err := sheets.NewSyncer(cmd.Context(), cfg.Sheets)
			if err != nil {
				return err
			}
			if syncer == nil {
				return fmt.Errorf("sheet sync is not configured: set GOOGLE_CREDENTIALS_PATH and SPREADSHEET_ID")
			}

			eng, err := engine.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			report, err := eng.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			txs, err := eng.Transactions()
			if err != nil {
				return err
			}

			if err := syncer.Sync(cmd.Context(), report, txs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d transactions\n", len(txs))
			return nil
		},
	}

	return cmd
}

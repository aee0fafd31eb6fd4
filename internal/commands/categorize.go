package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finlens/backend/internal/config"
	"github.com/finlens/backend/internal/engine"
)

func newCategorizeCommand() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Run ingestion and categorization, reporting how labels were resolved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if dataDir != "" {
				cfg.DataDir = dataDir
			}

			eng, err := engine.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			if _, err := eng.Refresh(cmd.Context()); err != nil {
				return err
			}

			stats, _ := eng.LastRefresh()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Files loaded:      %d\n", stats.Files)
			fmt.Fprintf(out, "Transactions:      %d (dropped %d, deduplicated %d)\n",
				stats.Transactions, stats.Dropped, stats.Deduplicated)
			fmt.Fprintf(out, "Already labeled:   %d\n", stats.Categorization.AlreadyLabeled)
			fmt.Fprintf(out, "From cache:        %d\n", stats.Categorization.FromCache)
			fmt.Fprintf(out, "From classifier:   %d\n", stats.Categorization.FromClassifier)
			fmt.Fprintf(out, "From rules:        %d\n", stats.Categorization.FromRules)
			fmt.Fprintf(out, "Unmatched:         %d\n", stats.Categorization.Unmatched)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "statement directory (default from DATA_DIR)")

	return cmd
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finlens/backend/internal/config"
	"github.com/finlens/backend/internal/engine"
	"github.com/finlens/backend/internal/export"
)

func newAnalyzeCommand() *cobra.Command {
	var dataDir string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the analysis pipeline over the statement directory",
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

			report, err := eng.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				data, err := export.ReportJSON(report)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), export.ReportText(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "statement directory (default from DATA_DIR)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")

	return cmd
}

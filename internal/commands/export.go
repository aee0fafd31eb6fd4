package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finlens/backend/internal/config"
	"github.com/finlens/backend/internal/engine"
	"github.com/finlens/backend/internal/export"
	"github.com/finlens/backend/internal/model"
)

func newExportCommand() *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Analyze and write the result to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			eng, err := engine.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			report, err := eng.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "json":
				data, err = export.ReportJSON(report)
			case "pdf":
				data, err = export.ReportPDF(report)
			case "csv":
				var txs []model.Transaction
				txs, err = eng.Transactions()
				if err == nil {
					data, err = export.TransactionsCSV(txs)
				}
			case "txt":
				data = []byte(export.ReportText(report))
			default:
				return fmt.Errorf("unknown format %q (json, pdf, csv, txt)", format)
			}
			if err != nil {
				return err
			}

			if output == "" {
				output = "report." + format
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format: json, pdf, csv or txt")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default report.<format>)")

	return cmd
}

// Package commands defines the CLI surface: analyze statements, inspect
// categorization, export the results, push them to a spreadsheet, or start
// the API server.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "finlens",
		Short: "Personal finance statement analysis",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newCategorizeCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newSyncCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}

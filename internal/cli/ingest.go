package cli

import (
	"github.com/spf13/cobra"

	"aud-rate-history/internal/app"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import ARCHIVE_CSV",
	Short: "Bulk-import a historical wide CSV archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ImportOptions{
			Path:   args[0],
			DryRun: importDryRun,
		}
		return getApp().Import(cmd.Context(), opts)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update DAILY_JSON",
	Short: "Merge one daily document as an incremental batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.UpdateOptions{
			Path: args[0],
		}
		return getApp().Update(cmd.Context(), opts)
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate and report without writing to storage")
}

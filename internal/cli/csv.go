package cli

import (
	"github.com/spf13/cobra"

	"aud-rate-history/internal/app"
)

var (
	csvDateOut  string
	csvRangeOut string
)

var csvDateCmd = &cobra.Command{
	Use:   "csv-date DATE",
	Short: "Export the wide CSV row for one date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.CSVOptions{
			Date:    args[0],
			OutPath: csvDateOut,
		}
		return getApp().CSVDate(cmd.Context(), opts)
	},
}

var csvRangeCmd = &cobra.Command{
	Use:   "csv-range START END",
	Short: "Export the wide CSV table for a date range",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.CSVOptions{
			Start:   args[0],
			End:     args[1],
			OutPath: csvRangeOut,
		}
		return getApp().CSVRange(cmd.Context(), opts)
	},
}

func init() {
	csvDateCmd.Flags().StringVar(&csvDateOut, "out", "", "Write CSV to a file instead of stdout")
	csvRangeCmd.Flags().StringVar(&csvRangeOut, "out", "", "Write CSV to a file instead of stdout")
}

package cli

import (
	"github.com/spf13/cobra"

	"aud-rate-history/internal/app"
)

var rateCmd = &cobra.Command{
	Use:   "rate DATE ASSET",
	Short: "Look up the stored value for one date and asset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.RateOptions{
			Date:  args[0],
			Asset: args[1],
		}
		return getApp().Rate(cmd.Context(), opts)
	},
}

var rangeCmd = &cobra.Command{
	Use:   "range START END ASSET",
	Short: "List stored values for one asset over a date range",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.RangeOptions{
			Start: args[0],
			End:   args[1],
			Asset: args[2],
		}
		return getApp().Range(cmd.Context(), opts)
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show observation counts and date coverage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Summary(cmd.Context())
	},
}

var listCurrenciesCmd = &cobra.Command{
	Use:   "list-currencies",
	Short: "List the tracked asset symbols",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().ListCurrencies()
	},
}

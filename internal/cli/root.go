package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aud-rate-history/internal/app"
	"aud-rate-history/internal/config"
	"aud-rate-history/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	appHandle *app.App
)

var rootCmd = &cobra.Command{
	Use:   "audhist",
	Short: "Historical store for daily AUD rates, commodity and crypto prices",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		logger := logging.NewLogger(cfg.Logging)
		appHandle = app.NewApp(cfg, logger)
		return nil
	},
}

// legacyCommands maps the flag-style invocation used by older automation
// onto subcommands, so `audhist --rate 2023-01-03 USD` keeps working.
var legacyCommands = map[string]string{
	"--rate":            "rate",
	"--range":           "range",
	"--csv-date":        "csv-date",
	"--csv-range":       "csv-range",
	"--summary":         "summary",
	"--list-currencies": "list-currencies",
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	if sub, ok := legacyCommands[args[0]]; ok {
		out := append([]string{sub}, args[1:]...)
		return out
	}
	return args
}

// Execute runs the root command. Any error goes to stderr with a non-zero
// exit code.
func Execute() {
	rootCmd.SetArgs(normalizeLegacyArgs(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")

	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(rangeCmd)
	rootCmd.AddCommand(csvDateCmd)
	rootCmd.AddCommand(csvRangeCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(listCurrenciesCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}

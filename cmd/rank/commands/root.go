package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd runs a ranking when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "rank",
	Short: "Sector-relative equity ranking pipeline",
	Long: `Equity ranking CLI

Loads one snapshot row per entity, applies hard filters, normalizes metrics
against sector peers, scores, ranks, tracks rank changes and exports the top-N.

Usage:
  go run ./cmd/rank [command]

Examples:
  go run ./cmd/rank
  go run ./cmd/rank run --date 2026-10-14 --top 15
  go run ./cmd/rank history show AAPL
  go run ./cmd/rank config check
  go run ./cmd/rank scheduler start
  go run ./cmd/rank api`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runRanking,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: STRATEGY_FILE or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.Flags().StringVar(&runDate, "date", "", "run date YYYY-MM-DD (default: today)")
	rootCmd.Flags().IntVar(&runTop, "top", 0, "rows in the console summary (default: strategy console_top)")
}

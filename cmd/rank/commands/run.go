package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/output"
	"github.com/wonny/equityrank/internal/pipeline"
)

var (
	runDate string
	runTop  int
)

// runCmd runs the pipeline once
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ranking pipeline once",
	Long: `Runs S0 Snapshot → S1 Filter → S2 Normalize → S3 Scoring → S4 History →
S5 Explain → S6 Export for one date and prints the top-N summary.

A run with zero eligible entities exits 0 and records nothing.
A snapshot load failure exits non-zero without producing output.

Example:
  go run ./cmd/rank run
  go run ./cmd/rank run --date 2026-10-14 --top 15`,
	Args: cobra.NoArgs,
	RunE: runRanking,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDate, "date", "", "run date YYYY-MM-DD (default: today)")
	runCmd.Flags().IntVar(&runTop, "top", 0, "rows in the console summary (default: strategy console_top)")
}

func runRanking(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := pipeline.RunConfig{}
	if runDate != "" {
		date, err := contracts.ParseRunDate(runDate)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		cfg.Date = date
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	orch, err := a.orchestrator()
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	if cfg.Date.IsZero() {
		cfg.Date = a.today()
	}
	PrintRunHeader(a.strategy.Meta.StrategyID, orch.ConfigHash(), cfg.Date)

	result, err := orch.Run(ctx, cfg)
	if err != nil {
		PrintFailure(err)
		return err
	}

	top := runTop
	if top <= 0 {
		top = a.strategy.Output.ConsoleTop
	}

	PrintRunCounts(result)
	if err := output.PrintSummary(os.Stdout, result.Ranked, top); err != nil {
		return err
	}
	PrintRunFooter(result, a.cfg.Output.File)
	return nil
}

package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/output"
	"github.com/wonny/equityrank/internal/s5_explain"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the rank history ledger",
	Long: `Reads rows recorded by S4 History.

Subcommands:
  show  - per-date score and rank for one ticker

Example:
  go run ./cmd/rank history show AAPL`,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [ticker]",
	Short: "Show the recorded history of one ticker",
	Args:  cobra.ExactArgs(1),
	RunE:  showHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
}

func showHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	ticker := strings.TrimSpace(args[0])

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.ledger.History(ctx, ticker)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if len(rows) == 0 {
		fmt.Printf("No history recorded for %s\n", ticker)
		return nil
	}

	fmt.Printf("History for %s (%d runs)\n\n", ticker, len(rows))
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tRANK\tTOTAL\tΔ")
	for i, row := range rows {
		delta := "-"
		if i > 0 {
			delta = output.FormatDelta(rows[i-1].Rank - row.Rank)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n",
			row.Date.Format(contracts.DateLayout), s5_explain.FormatRank(row.Rank), row.TotalScore, delta)
	}
	return tw.Flush()
}

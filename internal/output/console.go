package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/wonny/equityrank/internal/contracts"
)

const narrativeWidth = 72

// PrintSummary renders the top-n table: rank, ticker, sector, total, delta, confidence, insight, risk
func PrintSummary(w io.Writer, ranked []contracts.RankedEntity, n int) error {
	rows := TopN(ranked, n)
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No eligible entities.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTICKER\tSECTOR\tTOTAL\tΔ\tCONF\tINSIGHT\tRISK")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%s\t%s\t%s\t%s\n",
			formatFloat(r.Rank),
			r.Ticker,
			r.Sector,
			r.TotalScore,
			FormatDelta(r.RankDelta),
			r.Confidence,
			truncate(r.Explanation.Narrative, narrativeWidth),
			r.Explanation.RiskNote,
		)
	}
	return tw.Flush()
}

// FormatDelta prints +n for improvements, -n for drops and "-" for no change
func FormatDelta(d float64) string {
	switch {
	case d > 0:
		return "+" + formatFloat(d)
	case d < 0:
		return formatFloat(d)
	default:
		return "-"
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max-3])) + "..."
}

package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/pkg/fileutil"
	"github.com/wonny/equityrank/pkg/logger"
)

// ExportColumns is the header row of the top-N artifact.
// Snapshot metrics follow the narrative; unknown values are written as empty cells.
var ExportColumns = []string{
	"Date", "Rank", "Ticker", "Name", "Sector", "TotalScore",
	"Quality", "Growth", "Valuation", "Technicals", "Risk",
	"RankDelta", "Confidence", "NormSource", "Insight", "RiskNote", "InsightVersion",
	"Price", "MA200", "MA50", "RSI", "ForwardPE", "PEGRatio", "EPSGrowth3Y", "RevCAGR3Y",
	"ROIC", "GrossMargin", "GrossMarginTrend", "DebtEBITDA", "Beta", "Employees", "FCFPositive",
}

// CSVExporter writes ranked entities to a CSV file
// ⭐ SSOT: 결과 파일 쓰기는 이 Exporter에서만
type CSVExporter struct {
	path   string
	logger *logger.Logger
}

// NewCSVExporter creates an exporter; the caller decides how many rows to pass
func NewCSVExporter(path string, log *logger.Logger) *CSVExporter {
	return &CSVExporter{
		path:   path,
		logger: log.WithStage(contracts.StageExport.String()),
	}
}

// Path returns the artifact location
func (e *CSVExporter) Path() string {
	return e.path
}

// Export implements contracts.Exporter. ranked must already be in rank order.
func (e *CSVExporter) Export(ctx context.Context, date time.Time, ranked []contracts.RankedEntity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := fileutil.WriteAtomic(e.path, func(w io.Writer) error {
		return WriteCSV(w, date, ranked)
	})
	if err != nil {
		return fmt.Errorf("export %s: %w", e.path, err)
	}

	e.logger.WithFields(map[string]interface{}{
		"file": e.path,
		"rows": len(ranked),
	}).Info("Top ranked exported")
	return nil
}

// WriteCSV renders rows with ExportColumns as header
func WriteCSV(w io.Writer, date time.Time, rows []contracts.RankedEntity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}

	day := date.Format(contracts.DateLayout)
	for _, r := range rows {
		record := []string{
			day,
			formatFloat(r.Rank),
			r.Ticker,
			r.Name,
			r.Sector,
			formatScore(r.TotalScore),
			formatScore(r.Scores.Quality),
			formatScore(r.Scores.Growth),
			formatScore(r.Scores.Valuation),
			formatScore(r.Scores.Technicals),
			formatScore(r.Scores.Risk),
			formatFloat(r.RankDelta),
			string(r.Confidence),
			string(r.NormSource),
			r.Explanation.Narrative,
			r.Explanation.RiskNote,
			r.Explanation.Version,
			formatMetric(r.Price),
			formatMetric(r.MA200),
			formatMetric(r.MA50),
			formatMetric(r.Momentum),
			formatMetric(r.ForwardPE),
			formatMetric(r.PEGRatio),
			formatMetric(r.EPSGrowth3Y),
			formatMetric(r.RevenueGrowth),
			formatMetric(r.ROIC),
			formatMetric(r.GrossMargin),
			formatMetric(r.GrossMarginTrend),
			formatMetric(r.DebtEBITDA),
			formatMetric(r.Beta),
			formatMetric(r.Employees),
			strconv.FormatBool(r.FCFPositive),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// TopN returns the first n entities; n <= 0 returns all
func TopN(ranked []contracts.RankedEntity, n int) []contracts.RankedEntity {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatMetric leaves unknown values empty so they never read as zero
func formatMetric(v *float64) string {
	if !contracts.Known(v) {
		return ""
	}
	return formatFloat(*v)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

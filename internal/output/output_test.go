package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/pkg/logger"
)

var runDate = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

func sample(n int) []contracts.RankedEntity {
	out := make([]contracts.RankedEntity, n)
	for i := range out {
		out[i].Ticker = string(rune('A' + i))
		out[i].Sector = "Energy"
		out[i].Rank = float64(i + 1)
		out[i].TotalScore = 90 - float64(i)
		out[i].Confidence = contracts.ConfidenceHigh
		out[i].NormSource = contracts.NormSourceSector
		out[i].Explanation = contracts.Explanation{Narrative: "Ranked, with a comma", RiskNote: "Beta: 1.00"}
	}
	return out
}

func TestTopN(t *testing.T) {
	rows := sample(5)
	assert.Len(t, TopN(rows, 3), 3)
	assert.Len(t, TopN(rows, 10), 5)
	assert.Len(t, TopN(rows, 0), 5)
	assert.Empty(t, TopN(nil, 3))
}

func TestCSVExporter_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "top_ranked.csv")
	rows := sample(25)
	rows[0].RankDelta = 3
	rows[0].Price = contracts.Float(123.45)
	rows[0].ForwardPE = contracts.Float(18)
	rows[0].ROIC = contracts.Float(0)
	rows[0].FCFPositive = true
	rows[0].Explanation.Version = "rules-v3"

	exp := NewCSVExporter(path, logger.Nop())
	require.NoError(t, exp.Export(context.Background(), runDate, TopN(rows, 20)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 21)
	assert.Equal(t, ExportColumns, records[0])

	first := records[1]
	assert.Equal(t, "2026-10-14", first[0])
	assert.Equal(t, "1", first[1])
	assert.Equal(t, "A", first[2])
	assert.Equal(t, "90.00", first[5])
	assert.Equal(t, "3", first[11])
	assert.Equal(t, "Ranked, with a comma", first[14])

	col := func(name string) string {
		for i, c := range records[0] {
			if c == name {
				return first[i]
			}
		}
		t.Fatalf("missing column %s", name)
		return ""
	}
	assert.Equal(t, "rules-v3", col("InsightVersion"))
	assert.Equal(t, "123.45", col("Price"))
	assert.Equal(t, "18", col("ForwardPE"))
	assert.Equal(t, "0", col("ROIC"), "a known zero is written")
	assert.Equal(t, "", col("Beta"), "unknown metrics stay empty")
	assert.Equal(t, "", col("MA200"))
	assert.Equal(t, "true", col("FCFPositive"))
	assert.Len(t, first, len(ExportColumns))

	// temp files never leak next to the artifact
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCSVExporter_WriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	exp := NewCSVExporter(filepath.Join(blocker, "top.csv"), logger.Nop())
	assert.Error(t, exp.Export(context.Background(), runDate, sample(2)))
}

func TestPrintSummary(t *testing.T) {
	rows := sample(12)
	rows[0].RankDelta = 2
	rows[1].RankDelta = -1.5
	rows[2].Explanation.Narrative = strings.Repeat("x", 100)

	var buf bytes.Buffer
	require.NoError(t, PrintSummary(&buf, rows, 10))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 11)
	assert.Contains(t, lines[0], "TICKER")
	assert.Contains(t, lines[1], "+2")
	assert.Contains(t, lines[2], "-1.5")
	assert.Contains(t, lines[3], "...")
	assert.NotContains(t, buf.String(), strings.Repeat("x", 80))
}

func TestPrintSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintSummary(&buf, nil, 10))
	assert.Equal(t, "No eligible entities.\n", buf.String())
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "+5", FormatDelta(5))
	assert.Equal(t, "-2.5", FormatDelta(-2.5))
	assert.Equal(t, "-", FormatDelta(0))
}

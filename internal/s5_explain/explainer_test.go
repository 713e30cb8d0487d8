package s5_explain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/pkg/logger"
)

var f64 = contracts.Float

func ranked(rank float64, scores contracts.CategoryScores, snap contracts.EntitySnapshot) *contracts.RankedEntity {
	e := &contracts.RankedEntity{Rank: rank}
	e.Scores = scores
	e.EntitySnapshot = snap
	return e
}

func TestExplain_Thesis(t *testing.T) {
	tests := []struct {
		name   string
		scores contracts.CategoryScores
		want   string
	}{
		{"double threat", contracts.CategoryScores{Quality: 75, Valuation: 72}, "double threat"},
		{"compounder", contracts.CategoryScores{Quality: 85, Valuation: 40}, "quality compounder"},
		{"deep value", contracts.CategoryScores{Quality: 40, Valuation: 85}, "deep value play"},
		{"momentum", contracts.CategoryScores{Technicals: 90}, "strong momentum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := NewRuleExplainer().Explain(ranked(3, tt.scores, contracts.EntitySnapshot{Sector: "Technology"}))
			assert.Contains(t, ex.Narrative, "Ranked #3 in Technology.")
			assert.Contains(t, ex.Narrative, tt.want)
			assert.Equal(t, RulesVersion, ex.Version)
		})
	}
}

func TestExplain_Notes(t *testing.T) {
	snap := contracts.EntitySnapshot{
		Sector:        "Health Care",
		RevenueGrowth: f64(0.22),
		ROIC:          f64(0.18),
		ForwardPE:     f64(12.34),
		PEGRatio:      f64(0.8),
		Price:         f64(120),
		MA200:         f64(100),
		Momentum:      f64(30),
		Beta:          f64(1.234),
	}

	ex := NewRuleExplainer().Explain(ranked(1, contracts.CategoryScores{}, snap))

	assert.Equal(t,
		"Ranked #1 in Health Care. "+
			"Business: Hyper-growth (22.0%) & Wide moat (ROIC 18.0%). "+
			"Value: Cheap P/E (12.3x), Undervalued PEG (0.80). "+
			"Timing: Uptrend (>200DMA), Oversold (Bounce potential).",
		ex.Narrative)
	assert.Equal(t, "Beta: 1.23", ex.RiskNote)
}

func TestExplain_UnknownMetrics(t *testing.T) {
	ex := NewRuleExplainer().Explain(ranked(2.5, contracts.CategoryScores{}, contracts.EntitySnapshot{}))

	assert.Equal(t,
		"Ranked #2.5 in Market. Business: Reliable steady-state metrics. Value: Fairly priced. Timing: Neutral setup.",
		ex.Narrative)
	assert.Equal(t, "Beta: n/a", ex.RiskNote)
}

func TestExplain_BelowTrendAndPremium(t *testing.T) {
	snap := contracts.EntitySnapshot{
		RevenueGrowth: f64(0.07),
		ForwardPE:     f64(42),
		Price:         f64(90),
		MA200:         f64(100),
	}
	ex := NewRuleExplainer().Explain(ranked(7, contracts.CategoryScores{}, snap))

	assert.Contains(t, ex.Narrative, "Business: Steady growth (7.0%).")
	assert.Contains(t, ex.Narrative, "Value: Premium P/E (42.0x).")
	assert.Contains(t, ex.Narrative, "Timing: Below 200DMA (Caution).")
}

func TestGrade(t *testing.T) {
	tests := []struct {
		missing int
		want    contracts.Confidence
	}{
		{0, contracts.ConfidenceHigh},
		{1, contracts.ConfidenceHigh},
		{2, contracts.ConfidenceMedium},
		{3, contracts.ConfidenceMedium},
		{4, contracts.ConfidenceLow},
		{8, contracts.ConfidenceLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.missing), tt.missing)
	}
}

func TestFormatRank(t *testing.T) {
	assert.Equal(t, "1", FormatRank(1))
	assert.Equal(t, "12", FormatRank(12))
	assert.Equal(t, "2.5", FormatRank(2.5))
}

type fixedExplainer struct{}

func (fixedExplainer) Explain(*contracts.RankedEntity) contracts.Explanation {
	return contracts.Explanation{Narrative: "n", RiskNote: "r", Version: "fixed"}
}

func TestStage_DoesNotTouchScores(t *testing.T) {
	items := []contracts.RankedEntity{
		*ranked(1, contracts.CategoryScores{Quality: 90}, contracts.EntitySnapshot{Ticker: "A"}),
		*ranked(2, contracts.CategoryScores{Quality: 10}, contracts.EntitySnapshot{Ticker: "B"}),
	}
	items[0].TotalScore, items[1].TotalScore = 80, 20
	items[1].MissingMetrics = 5

	require.NoError(t, NewStage(fixedExplainer{}, logger.Nop()).Apply(context.Background(), items))

	assert.Equal(t, 80.0, items[0].TotalScore)
	assert.Equal(t, 1.0, items[0].Rank)
	assert.Equal(t, "fixed", items[0].Explanation.Version)
	assert.Equal(t, contracts.ConfidenceHigh, items[0].Confidence)
	assert.Equal(t, contracts.ConfidenceLow, items[1].Confidence)
}

func TestStage_DefaultsToRules(t *testing.T) {
	items := []contracts.RankedEntity{*ranked(1, contracts.CategoryScores{}, contracts.EntitySnapshot{})}
	require.NoError(t, NewStage(nil, logger.Nop()).Apply(context.Background(), items))
	assert.Equal(t, RulesVersion, items[0].Explanation.Version)
}

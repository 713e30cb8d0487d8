package s3_scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/strategyconfig"
	"github.com/wonny/equityrank/pkg/logger"
)

var f64 = contracts.Float

func newScorer() *Scorer {
	cfg := strategyconfig.Default()
	return New(cfg.Categories, cfg.Weights, logger.Nop())
}

func TestTotal_ConcreteWeights(t *testing.T) {
	scores := contracts.CategoryScores{Quality: 80, Growth: 60, Valuation: 40, Technicals: 90, Risk: 70}
	assert.InDelta(t, 66.5, Total(scores, strategyconfig.Default().Weights), 1e-9)
}

func TestTotal_BoundedForBoundedInputs(t *testing.T) {
	w := strategyconfig.Default().Weights
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)

	for _, v := range []float64{0, 12.5, 50, 99.9, 100} {
		total := Total(contracts.CategoryScores{Quality: v, Growth: v, Valuation: v, Technicals: v, Risk: v}, w)
		assert.InDelta(t, v, total, 1e-9)
	}
	top := Total(contracts.CategoryScores{Quality: 100, Growth: 0, Valuation: 100, Technicals: 0, Risk: 100}, w)
	assert.GreaterOrEqual(t, top, 0.0)
	assert.LessOrEqual(t, top, 100.0)
}

func TestTrendScore(t *testing.T) {
	tests := []struct {
		name  string
		price *float64
		ma200 *float64
		want  float64
	}{
		{"at ma200", f64(100), f64(100), 50},
		{"10% above", f64(110), f64(100), 60},
		{"20% below", f64(80), f64(100), 30},
		{"capped above", f64(200), f64(100), 100},
		{"capped below", f64(20), f64(100), 0},
		{"unknown ma200", f64(100), nil, 50},
		{"unknown price", nil, f64(100), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &contracts.EntitySnapshot{Price: tt.price, MA200: tt.ma200}
			assert.InDelta(t, tt.want, TrendScore(e, 100), 1e-9)
		})
	}
}

func TestScore_CategoryBlends(t *testing.T) {
	e := &contracts.NormalizedEntity{
		EntitySnapshot: contracts.EntitySnapshot{Ticker: "AAA", Price: f64(110), MA200: f64(100)},
		Percentiles: contracts.Percentiles{
			contracts.MetricROIC:          90,
			contracts.MetricGrossMargin:   40,
			contracts.MetricRevenueGrowth: 75,
			contracts.MetricForwardPE:     20,
			contracts.MetricPEGRatio:      70,
			contracts.MetricMomentum:      80,
			contracts.MetricBeta:          30,
			contracts.MetricDebtEBITDA:    50,
		},
	}

	got := newScorer().Score(e)

	assert.InDelta(t, 0.6*90+0.4*40, got.Scores.Quality, 1e-9)
	assert.InDelta(t, 75, got.Scores.Growth, 1e-9)
	assert.InDelta(t, 0.6*20+0.4*70, got.Scores.Valuation, 1e-9)
	assert.InDelta(t, 0.4*80+0.6*60, got.Scores.Technicals, 1e-9)
	assert.InDelta(t, 0.5*30+0.5*50, got.Scores.Risk, 1e-9)
	assert.InDelta(t, 60, got.TrendScore, 1e-9)
	assert.InDelta(t, Total(got.Scores, strategyconfig.Default().Weights), got.TotalScore, 1e-9)
	assert.Equal(t, "AAA", got.Ticker)
}

func TestScore_MissingPercentilesAreNeutral(t *testing.T) {
	e := &contracts.NormalizedEntity{
		EntitySnapshot: contracts.EntitySnapshot{Ticker: "BBB"},
	}

	got := newScorer().Score(e)
	assert.Equal(t, contracts.CategoryScores{Quality: 50, Growth: 50, Valuation: 50, Technicals: 50, Risk: 50}, got.Scores)
	assert.InDelta(t, 50, got.TotalScore, 1e-9)
}

func TestApply_PreservesOrder(t *testing.T) {
	u := &contracts.NormalizedUniverse{Entities: []contracts.NormalizedEntity{
		{EntitySnapshot: contracts.EntitySnapshot{Ticker: "LOW"}, Percentiles: contracts.Percentiles{contracts.MetricROIC: 10}},
		{EntitySnapshot: contracts.EntitySnapshot{Ticker: "HIGH"}, Percentiles: contracts.Percentiles{contracts.MetricROIC: 100}},
	}}

	scored, err := newScorer().Apply(context.Background(), u)
	require.NoError(t, err)
	require.Len(t, scored, 2)
	assert.Equal(t, "LOW", scored[0].Ticker)
	assert.Equal(t, "HIGH", scored[1].Ticker)
	assert.Greater(t, scored[1].TotalScore, scored[0].TotalScore)

	empty, err := newScorer().Apply(context.Background(), &contracts.NormalizedUniverse{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

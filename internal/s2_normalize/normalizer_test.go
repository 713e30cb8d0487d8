package s2_normalize

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/strategyconfig"
	"github.com/wonny/equityrank/pkg/logger"
)

var f64 = contracts.Float

func entity(ticker, sector string, roic float64) contracts.EntitySnapshot {
	return contracts.EntitySnapshot{Ticker: ticker, Sector: sector, ROIC: f64(roic)}
}

func universe(entities ...contracts.EntitySnapshot) *contracts.FilteredUniverse {
	return &contracts.FilteredUniverse{Date: time.Now(), TotalInput: len(entities), Entities: entities}
}

func roicOnly(minSectorSize int, higher bool) *Normalizer {
	return New([]contracts.MetricSpec{
		{Metric: contracts.MetricROIC, HigherIsBetter: higher, MinSectorSize: minSectorSize},
	}, logger.Nop())
}

func byTicker(u *contracts.NormalizedUniverse) map[string]contracts.NormalizedEntity {
	out := make(map[string]contracts.NormalizedEntity, len(u.Entities))
	for _, e := range u.Entities {
		out[e.Ticker] = e
	}
	return out
}

func TestFractionalRanks(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"empty", nil, []float64{}},
		{"distinct", []float64{30, 10, 20}, []float64{3, 1, 2}},
		{"pair tie", []float64{3, 1, 2, 2}, []float64{4, 1, 2.5, 2.5}},
		{"all tied", []float64{7, 7, 7}, []float64{2, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FractionalRanks(tt.in))
		})
	}
}

func TestPercentileScores(t *testing.T) {
	higher := PercentileScores([]float64{10, 20, 30, 40}, true)
	assert.Equal(t, []float64{25, 50, 75, 100}, higher)

	lower := PercentileScores([]float64{10, 20, 30, 40}, false)
	assert.Equal(t, []float64{100, 75, 50, 25}, lower)

	single := PercentileScores([]float64{5}, true)
	assert.Equal(t, []float64{100}, single)

	assert.Nil(t, PercentileScores(nil, true))
}

func TestApply_SectorRelative(t *testing.T) {
	var entities []contracts.EntitySnapshot
	for i := 0; i < 5; i++ {
		entities = append(entities, entity(fmt.Sprintf("T%d", i), "Tech", float64(i+1)))
		entities = append(entities, entity(fmt.Sprintf("E%d", i), "Energy", float64(100+i)))
	}

	out, err := roicOnly(5, true).Apply(context.Background(), universe(entities...))
	require.NoError(t, err)
	got := byTicker(out)

	// Each sector ranks on its own: the best of each gets 100 regardless of the other.
	assert.Equal(t, 100.0, got["T4"].Percentiles.Get(contracts.MetricROIC))
	assert.Equal(t, 100.0, got["E4"].Percentiles.Get(contracts.MetricROIC))
	assert.Equal(t, 20.0, got["T0"].Percentiles.Get(contracts.MetricROIC))
	assert.Equal(t, 20.0, got["E0"].Percentiles.Get(contracts.MetricROIC))
	assert.Empty(t, out.FallbackSectors)
	for _, e := range out.Entities {
		assert.Equal(t, contracts.NormSourceSector, e.NormSource)
	}
}

func TestApply_SmallSectorFallsBackToUniverse(t *testing.T) {
	var entities []contracts.EntitySnapshot
	for i := 0; i < 5; i++ {
		entities = append(entities, entity(fmt.Sprintf("T%d", i), "Tech", float64(i+1))) // 1..5
	}
	entities = append(entities,
		entity("S1", "Utilities", 0.5),
		entity("S2", "Utilities", 3.5),
		entity("S3", "Utilities", 10),
	)

	out, err := roicOnly(5, true).Apply(context.Background(), universe(entities...))
	require.NoError(t, err)
	got := byTicker(out)

	assert.Equal(t, []string{"Utilities"}, out.FallbackSectors)
	for _, tk := range []string{"S1", "S2", "S3"} {
		assert.Equal(t, contracts.NormSourceUniverse, got[tk].NormSource, tk)
	}
	assert.Equal(t, contracts.NormSourceSector, got["T0"].NormSource)

	// Universe of 8 values: 0.5 is 1st, 3.5 is 5th, 10 is 8th.
	assert.InDelta(t, 1.0/8*100, got["S1"].Percentiles.Get(contracts.MetricROIC), 1e-9)
	assert.InDelta(t, 5.0/8*100, got["S2"].Percentiles.Get(contracts.MetricROIC), 1e-9)
	assert.InDelta(t, 100.0, got["S3"].Percentiles.Get(contracts.MetricROIC), 1e-9)

	// Tech still ranks sector-only.
	assert.Equal(t, 100.0, got["T4"].Percentiles.Get(contracts.MetricROIC))
}

func TestApply_LowerIsBetterAndTies(t *testing.T) {
	entities := []contracts.EntitySnapshot{
		entity("A", "X", 10),
		entity("B", "X", 20),
		entity("C", "X", 20),
		entity("D", "X", 40),
	}

	out, err := roicOnly(1, false).Apply(context.Background(), universe(entities...))
	require.NoError(t, err)
	got := byTicker(out)

	assert.Equal(t, 100.0, got["A"].Percentiles.Get(contracts.MetricROIC))
	assert.Equal(t, 62.5, got["B"].Percentiles.Get(contracts.MetricROIC))
	assert.Equal(t, 62.5, got["C"].Percentiles.Get(contracts.MetricROIC))
	assert.Equal(t, 25.0, got["D"].Percentiles.Get(contracts.MetricROIC))
}

func TestApply_MissingValuesAreNeutral(t *testing.T) {
	entities := []contracts.EntitySnapshot{
		entity("A", "X", 1),
		entity("B", "X", 2),
		{Ticker: "C", Sector: "X"},
		{Ticker: "D", Sector: "Y"},
		{Ticker: "E", Sector: "Y"},
	}

	out, err := roicOnly(1, true).Apply(context.Background(), universe(entities...))
	require.NoError(t, err)
	got := byTicker(out)

	assert.Equal(t, 100.0, got["B"].Percentiles.Get(contracts.MetricROIC))
	assert.Equal(t, 50.0, got["A"].Percentiles.Get(contracts.MetricROIC))
	assert.Equal(t, contracts.NeutralScore, got["C"].Percentiles.Get(contracts.MetricROIC))
	// sector Y has no ROIC at all
	assert.Equal(t, contracts.NeutralScore, got["D"].Percentiles.Get(contracts.MetricROIC))
	assert.Equal(t, contracts.NeutralScore, got["E"].Percentiles.Get(contracts.MetricROIC))
	assert.Equal(t, 1, got["C"].MissingMetrics)
	assert.Equal(t, 0, got["A"].MissingMetrics)
}

func TestApply_PercentilesInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sectors := []string{"Tech", "Energy", "Health", "Utilities"}

	var entities []contracts.EntitySnapshot
	for i := 0; i < 60; i++ {
		e := contracts.EntitySnapshot{
			Ticker: fmt.Sprintf("E%02d", i),
			Sector: sectors[rng.Intn(len(sectors))],
		}
		if rng.Float64() > 0.2 {
			e.ROIC = f64(rng.NormFloat64())
		}
		if rng.Float64() > 0.2 {
			e.ForwardPE = f64(float64(rng.Intn(40)))
		}
		e.Beta = f64(rng.Float64() * 2)
		entities = append(entities, e)
	}

	out, err := New(strategyconfig.Default().Metrics, logger.Nop()).Apply(context.Background(), universe(entities...))
	require.NoError(t, err)
	require.Len(t, out.Entities, len(entities))

	for _, e := range out.Entities {
		for _, m := range contracts.AllMetrics() {
			p := e.Percentiles.Get(m)
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 100.0)
		}
		if e.ROIC == nil {
			assert.Equal(t, contracts.NeutralScore, e.Percentiles.Get(contracts.MetricROIC))
		}
		// No snapshot carries gross margin or momentum.
		assert.Equal(t, contracts.NeutralScore, e.Percentiles.Get(contracts.MetricGrossMargin))
		assert.Equal(t, contracts.NeutralScore, e.Percentiles.Get(contracts.MetricMomentum))
	}
}

func TestApply_EmptyUniverse(t *testing.T) {
	out, err := roicOnly(5, true).Apply(context.Background(), universe())
	require.NoError(t, err)
	assert.Empty(t, out.Entities)
	assert.Empty(t, out.FallbackSectors)
}

func TestApply_BlankSectorGroupsAsUnknown(t *testing.T) {
	entities := []contracts.EntitySnapshot{entity("A", "", 1), entity("B", "", 2)}

	out, err := roicOnly(5, true).Apply(context.Background(), universe(entities...))
	require.NoError(t, err)
	assert.Equal(t, []string{contracts.UnknownSector}, out.FallbackSectors)
}

package s1_filter

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/strategyconfig"
	"github.com/wonny/equityrank/pkg/logger"
)

var f64 = contracts.Float

func healthy(ticker string) contracts.EntitySnapshot {
	return contracts.EntitySnapshot{
		Ticker:        ticker,
		Sector:        "Technology",
		Price:         f64(110),
		MA200:         f64(100),
		RevenueGrowth: f64(0.10),
		FCFPositive:   true,
		DebtEBITDA:    f64(1.5),
	}
}

func newFilter() *Filter {
	return New(strategyconfig.Default().Filter, logger.Nop())
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *contracts.EntitySnapshot)
		reason contracts.ExclusionReason
		pass   bool
	}{
		{"healthy", func(e *contracts.EntitySnapshot) {}, "", true},
		{"zero growth", func(e *contracts.EntitySnapshot) { e.RevenueGrowth = f64(0) }, contracts.ExcludedGrowth, false},
		{"negative growth", func(e *contracts.EntitySnapshot) { e.RevenueGrowth = f64(-0.05) }, contracts.ExcludedGrowth, false},
		{"unknown growth", func(e *contracts.EntitySnapshot) { e.RevenueGrowth = nil }, contracts.ExcludedGrowth, false},
		{"nan growth", func(e *contracts.EntitySnapshot) { e.RevenueGrowth = f64(math.NaN()) }, contracts.ExcludedGrowth, false},
		{"negative fcf", func(e *contracts.EntitySnapshot) { e.FCFPositive = false }, contracts.ExcludedCashFlow, false},
		{"exactly 25% below ma200", func(e *contracts.EntitySnapshot) { e.Price = f64(75) }, contracts.ExcludedTrend, false},
		{"24% below ma200", func(e *contracts.EntitySnapshot) { e.Price = f64(76) }, "", true},
		{"unknown ma200", func(e *contracts.EntitySnapshot) { e.MA200 = nil }, contracts.ExcludedTrend, false},
		{"unknown price", func(e *contracts.EntitySnapshot) { e.Price = nil }, contracts.ExcludedTrend, false},
		{"leverage 7", func(e *contracts.EntitySnapshot) { e.DebtEBITDA = f64(7) }, contracts.ExcludedLeverage, false},
		{"leverage exactly 6", func(e *contracts.EntitySnapshot) { e.DebtEBITDA = f64(6) }, contracts.ExcludedLeverage, false},
		{"leverage 5.99", func(e *contracts.EntitySnapshot) { e.DebtEBITDA = f64(5.99) }, "", true},
		{"unknown leverage passes", func(e *contracts.EntitySnapshot) { e.DebtEBITDA = nil }, "", true},
		{"growth checked first", func(e *contracts.EntitySnapshot) {
			e.RevenueGrowth = f64(-1)
			e.DebtEBITDA = f64(9)
			e.FCFPositive = false
		}, contracts.ExcludedGrowth, false},
	}

	f := newFilter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := healthy("T")
			tt.mutate(&e)
			reason, ok := f.Check(&e)
			assert.Equal(t, tt.pass, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestApply_LeverageExcludesDespiteGrowth(t *testing.T) {
	a := healthy("A")
	a.DebtEBITDA = f64(7)
	a.RevenueGrowth = f64(0.10)

	universe, err := newFilter().Apply(context.Background(), time.Now(), []contracts.EntitySnapshot{a, healthy("B")})
	require.NoError(t, err)

	require.Equal(t, 1, universe.Count())
	assert.Equal(t, "B", universe.Entities[0].Ticker)
	assert.Equal(t, 1, universe.Excluded[contracts.ExcludedLeverage])
	assert.Equal(t, 2, universe.TotalInput)
}

func TestApply_MonotonicAndNoNonPositiveGrowth(t *testing.T) {
	var input []contracts.EntitySnapshot
	growths := []float64{-0.2, 0, 0.01, 0.3, -0.01, 0.5}
	for i, g := range growths {
		e := healthy(string(rune('A' + i)))
		e.RevenueGrowth = f64(g)
		input = append(input, e)
	}

	universe, err := newFilter().Apply(context.Background(), time.Now(), input)
	require.NoError(t, err)

	assert.LessOrEqual(t, universe.Count(), len(input))
	assert.Equal(t, 3, universe.Count())
	for _, e := range universe.Entities {
		assert.Greater(t, *e.RevenueGrowth, 0.0)
	}
	assert.Equal(t, 3, universe.Excluded[contracts.ExcludedGrowth])
}

func TestApply_EmptyInput(t *testing.T) {
	universe, err := newFilter().Apply(context.Background(), time.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, universe.Count())
	assert.Equal(t, 0, universe.TotalInput)
	assert.NotNil(t, universe.Entities)
}

func TestApply_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newFilter().Apply(ctx, time.Now(), []contracts.EntitySnapshot{healthy("A")})
	assert.ErrorIs(t, err, context.Canceled)
}

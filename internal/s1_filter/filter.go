package s1_filter

import (
	"context"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/strategyconfig"
	"github.com/wonny/equityrank/pkg/logger"
)

// Filter implements S1: the binary eligibility gate
// ⭐ SSOT: S1 Hard Cut 로직은 여기서만
type Filter struct {
	config strategyconfig.Filter
	logger *logger.Logger
}

// New creates a filter from the strategy's filter thresholds
func New(config strategyconfig.Filter, log *logger.Logger) *Filter {
	return &Filter{
		config: config,
		logger: log.WithStage(contracts.StageFilter.String()),
	}
}

// Apply returns the entities passing every gate. An empty input yields an empty universe.
func (f *Filter) Apply(ctx context.Context, date time.Time, snapshots []contracts.EntitySnapshot) (*contracts.FilteredUniverse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	universe := &contracts.FilteredUniverse{
		Date:       date,
		TotalInput: len(snapshots),
		Entities:   make([]contracts.EntitySnapshot, 0, len(snapshots)),
		Excluded:   make(map[contracts.ExclusionReason]int),
	}

	for i := range snapshots {
		reason, ok := f.Check(&snapshots[i])
		if !ok {
			universe.Excluded[reason]++
			continue
		}
		universe.Entities = append(universe.Entities, snapshots[i])
	}

	f.logger.WithFields(map[string]interface{}{
		"date":         date.Format(contracts.DateLayout),
		"total_input":  universe.TotalInput,
		"passed":       universe.Count(),
		"filtered_out": universe.TotalInput - universe.Count(),
		"filters":      universe.Excluded,
	}).Info("Hard filter completed")

	return universe, nil
}

// Check returns the first failing gate, or ok=true when the entity passes
func (f *Filter) Check(e *contracts.EntitySnapshot) (contracts.ExclusionReason, bool) {
	// Growth: strictly positive; unknown fails
	if !contracts.Known(e.RevenueGrowth) || *e.RevenueGrowth <= f.config.GrowthMin {
		return contracts.ExcludedGrowth, false
	}

	// Cash flow
	if f.config.RequireFCFPositive && !e.FCFPositive {
		return contracts.ExcludedCashFlow, false
	}

	// Trend: not more than 25% below MA200; unknown price or MA200 fails
	ratio, ok := e.TrendRatio()
	if !ok || ratio <= f.config.TrendFloor {
		return contracts.ExcludedTrend, false
	}

	// Leverage: unknown passes
	if contracts.Known(e.DebtEBITDA) && *e.DebtEBITDA >= f.config.LeverageMax {
		return contracts.ExcludedLeverage, false
	}

	return "", true
}

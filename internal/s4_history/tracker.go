package s4_history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/pkg/logger"
)

// Tracker implements S4: rank, replace the run date in the ledger, compute rank deltas
// ⭐ SSOT: S4 히스토리/랭크 델타 로직은 여기서만
type Tracker struct {
	ledger contracts.Ledger
	logger *logger.Logger
}

// NewTracker creates a tracker over a ledger store
func NewTracker(ledger contracts.Ledger, log *logger.Logger) *Tracker {
	return &Tracker{
		ledger: ledger,
		logger: log.WithStage(contracts.StageHistory.String()),
	}
}

// Apply ranks the scored set, replaces date's ledger rows, and fills RankDelta
// against the latest ledger date strictly before date.
func (t *Tracker) Apply(ctx context.Context, date time.Time, scored []contracts.ScoredEntity) ([]contracts.RankedEntity, error) {
	date = contracts.RunDate(date)
	ranked := Rank(scored)

	rows := make([]contracts.LedgerRow, len(ranked))
	for i, r := range ranked {
		rows[i] = contracts.LedgerRow{
			Date:       date,
			Ticker:     r.Ticker,
			TotalScore: r.TotalScore,
			Rank:       r.Rank,
		}
	}

	if err := t.ledger.ReplaceDate(ctx, date, rows); err != nil {
		return nil, fmt.Errorf("replace ledger date %s: %w", date.Format(contracts.DateLayout), err)
	}

	previous, err := t.previousRanks(ctx, date)
	if err != nil {
		return nil, err
	}

	improved, matched := 0, 0
	for i := range ranked {
		prev, ok := previous[ranked[i].Ticker]
		if !ok {
			continue
		}
		p := prev
		ranked[i].PreviousRank = &p
		ranked[i].RankDelta = prev - ranked[i].Rank
		matched++
		if ranked[i].RankDelta > 0 {
			improved++
		}
	}

	t.logger.WithFields(map[string]interface{}{
		"date":         date.Format(contracts.DateLayout),
		"rows_written": len(rows),
		"matched_prev": matched,
		"improved":     improved,
	}).Info("History updated")

	return ranked, nil
}

// previousRanks returns ticker → rank for the previous ledger date.
// No previous date or an unreadable ledger yields an empty map.
func (t *Tracker) previousRanks(ctx context.Context, date time.Time) (map[string]float64, error) {
	prevDate, err := t.ledger.PreviousDate(ctx, date)
	switch {
	case errors.Is(err, contracts.ErrNoPreviousDate):
		t.logger.Info("No previous ledger date; rank deltas are 0")
		return map[string]float64{}, nil
	case errors.Is(err, contracts.ErrLedgerCorrupt):
		t.logger.WithError(err).Warn("Ledger unreadable; treating as no history")
		return map[string]float64{}, nil
	case err != nil:
		return nil, fmt.Errorf("previous ledger date: %w", err)
	}

	rows, err := t.ledger.RowsForDate(ctx, prevDate)
	if errors.Is(err, contracts.ErrLedgerCorrupt) {
		t.logger.WithError(err).Warn("Ledger unreadable; treating as no history")
		return map[string]float64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger rows for %s: %w", prevDate.Format(contracts.DateLayout), err)
	}

	t.logger.WithFields(map[string]interface{}{
		"previous_date": prevDate.Format(contracts.DateLayout),
		"rows":          len(rows),
	}).Debug("Loaded previous ranks")

	out := make(map[string]float64, len(rows))
	for _, r := range rows {
		out[r.Ticker] = r.Rank
	}
	return out, nil
}

package s4_history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
)

// MemoryLedger keeps the ledger in process memory
type MemoryLedger struct {
	mu     sync.RWMutex
	byDate map[time.Time][]contracts.LedgerRow
}

// NewMemoryLedger creates an empty in-memory ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{byDate: make(map[time.Time][]contracts.LedgerRow)}
}

func (m *MemoryLedger) ReplaceDate(ctx context.Context, date time.Time, rows []contracts.LedgerRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	date = contracts.RunDate(date)

	copied := make([]contracts.LedgerRow, len(rows))
	for i, r := range rows {
		r.Date = date
		copied[i] = r
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byDate[date] = copied
	return nil
}

func (m *MemoryLedger) PreviousDate(ctx context.Context, before time.Time) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dates := make([]time.Time, 0, len(m.byDate))
	for d := range m.byDate {
		dates = append(dates, d)
	}
	return previousDate(dates, contracts.RunDate(before))
}

func (m *MemoryLedger) RowsForDate(ctx context.Context, date time.Time) ([]contracts.LedgerRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.byDate[contracts.RunDate(date)]
	out := make([]contracts.LedgerRow, len(rows))
	copy(out, rows)
	return out, nil
}

func (m *MemoryLedger) History(ctx context.Context, ticker string) ([]contracts.LedgerRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []contracts.LedgerRow
	for _, rows := range m.byDate {
		for _, r := range rows {
			if r.Ticker == ticker {
				out = append(out, r)
			}
		}
	}
	sortByDate(out)
	return out, nil
}

// previousDate returns the latest date strictly before `before`
func previousDate(dates []time.Time, before time.Time) (time.Time, error) {
	var (
		best  time.Time
		found bool
	)
	for _, d := range dates {
		if d.Before(before) && (!found || d.After(best)) {
			best, found = d, true
		}
	}
	if !found {
		return time.Time{}, contracts.ErrNoPreviousDate
	}
	return best, nil
}

func sortByDate(rows []contracts.LedgerRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
}

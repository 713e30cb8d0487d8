package contracts

import (
	"context"
	"time"
)

// LedgerRow is one persisted (date, ticker) entry
type LedgerRow struct {
	Date       time.Time `json:"date"`
	Ticker     string    `json:"ticker"`
	TotalScore float64   `json:"total_score"`
	Rank       float64   `json:"rank"`
}

// Ledger is the HistoryLedger store
// ⭐ SSOT: 히스토리 저장소는 이 인터페이스로만 접근
type Ledger interface {
	// ReplaceDate atomically swaps every row for date with rows
	ReplaceDate(ctx context.Context, date time.Time, rows []LedgerRow) error

	// PreviousDate returns the latest date strictly before the given one, or ErrNoPreviousDate
	PreviousDate(ctx context.Context, before time.Time) (time.Time, error)

	// RowsForDate returns every row recorded for date
	RowsForDate(ctx context.Context, date time.Time) ([]LedgerRow, error)

	// History returns a ticker's rows ordered by date ascending
	History(ctx context.Context, ticker string) ([]LedgerRow, error)
}

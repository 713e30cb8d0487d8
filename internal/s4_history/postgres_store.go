package s4_history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/equityrank/internal/contracts"
)

// PostgresLedger stores the ledger in history.rank_history
// ⭐ SSOT: 히스토리 DB 저장/조회는 여기서만
type PostgresLedger struct {
	pool *pgxpool.Pool
}

// NewPostgresLedger creates a ledger over an existing pool
func NewPostgresLedger(pool *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS history;

	CREATE TABLE IF NOT EXISTS history.rank_history (
		rank_date   DATE             NOT NULL,
		ticker      TEXT             NOT NULL,
		total_score DOUBLE PRECISION NOT NULL,
		rank        DOUBLE PRECISION NOT NULL,
		created_at  TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
		PRIMARY KEY (rank_date, ticker)
	);

	CREATE INDEX IF NOT EXISTS rank_history_ticker_idx
		ON history.rank_history (ticker, rank_date);
`

// EnsureSchema creates the schema and table when missing
func (r *PostgresLedger) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure ledger schema: %w", err)
	}
	return nil
}

// ReplaceDate deletes and re-inserts date's rows in one transaction
func (r *PostgresLedger) ReplaceDate(ctx context.Context, date time.Time, rows []contracts.LedgerRow) error {
	date = contracts.RunDate(date)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM history.rank_history WHERE rank_date = $1", date); err != nil {
		return fmt.Errorf("failed to delete old rows: %w", err)
	}

	if len(rows) > 0 {
		batch := &pgx.Batch{}
		for _, row := range rows {
			batch.Queue(`
				INSERT INTO history.rank_history (rank_date, ticker, total_score, rank)
				VALUES ($1, $2, $3, $4)
			`, date, row.Ticker, row.TotalScore, row.Rank)
		}

		br := tx.SendBatch(ctx, batch)
		for range rows {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("failed to insert ledger row: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to close batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// PreviousDate returns the latest rank_date strictly before `before`
func (r *PostgresLedger) PreviousDate(ctx context.Context, before time.Time) (time.Time, error) {
	var prev *time.Time
	err := r.pool.QueryRow(ctx,
		"SELECT MAX(rank_date) FROM history.rank_history WHERE rank_date < $1",
		contracts.RunDate(before),
	).Scan(&prev)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query previous date: %w", err)
	}
	if prev == nil {
		return time.Time{}, contracts.ErrNoPreviousDate
	}
	return contracts.RunDate(*prev), nil
}

// RowsForDate returns date's rows ordered by rank
func (r *PostgresLedger) RowsForDate(ctx context.Context, date time.Time) ([]contracts.LedgerRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT rank_date, ticker, total_score, rank
		FROM history.rank_history
		WHERE rank_date = $1
		ORDER BY rank ASC, ticker ASC
	`, contracts.RunDate(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger rows: %w", err)
	}
	return collectRows(rows)
}

// History returns a ticker's rows ordered by date
func (r *PostgresLedger) History(ctx context.Context, ticker string) ([]contracts.LedgerRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT rank_date, ticker, total_score, rank
		FROM history.rank_history
		WHERE ticker = $1
		ORDER BY rank_date ASC
	`, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticker history: %w", err)
	}
	return collectRows(rows)
}

func collectRows(rows pgx.Rows) ([]contracts.LedgerRow, error) {
	defer rows.Close()

	out := make([]contracts.LedgerRow, 0)
	for rows.Next() {
		var row contracts.LedgerRow
		if err := rows.Scan(&row.Date, &row.Ticker, &row.TotalScore, &row.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row.Date = contracts.RunDate(row.Date)
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

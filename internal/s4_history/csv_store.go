package s4_history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/pkg/fileutil"
	"github.com/wonny/equityrank/pkg/logger"
)

// CSVHeader is the on-disk column order
var CSVHeader = []string{"Date", "Ticker", "TotalScore", "Rank"}

// CSVLedger persists the ledger as one CSV file.
// Rewrites go through a temp file and rename, so a date replace is all-or-nothing.
type CSVLedger struct {
	path   string
	logger *logger.Logger
	mu     sync.Mutex
	now    func() time.Time
}

// NewCSVLedger creates a ledger backed by path. The file is created on first write.
func NewCSVLedger(path string, log *logger.Logger) *CSVLedger {
	return &CSVLedger{
		path:   path,
		logger: log.WithField("ledger", path),
		now:    time.Now,
	}
}

// Path returns the ledger file location
func (l *CSVLedger) Path() string {
	return l.path
}

func (l *CSVLedger) ReplaceDate(ctx context.Context, date time.Time, rows []contracts.LedgerRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	date = contracts.RunDate(date)

	l.mu.Lock()
	defer l.mu.Unlock()

	existing, err := l.read()
	if errors.Is(err, contracts.ErrLedgerCorrupt) {
		quarantined, qerr := l.quarantine()
		if qerr != nil {
			return fmt.Errorf("quarantine corrupt ledger: %w", qerr)
		}
		l.logger.WithError(err).WithField("quarantined_to", quarantined).Warn("Corrupt ledger moved aside; starting empty history")
		existing = nil
	} else if err != nil {
		return err
	}

	kept := existing[:0]
	removed := 0
	for _, r := range existing {
		if r.Date.Equal(date) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	for _, r := range rows {
		r.Date = date
		kept = append(kept, r)
	}

	if err := l.write(kept); err != nil {
		return err
	}

	l.logger.WithFields(map[string]interface{}{
		"date":     date.Format(contracts.DateLayout),
		"replaced": removed,
		"written":  len(rows),
		"total":    len(kept),
	}).Debug("Ledger date replaced")

	return nil
}

func (l *CSVLedger) PreviousDate(ctx context.Context, before time.Time) (time.Time, error) {
	rows, err := l.readLocked()
	if err != nil {
		return time.Time{}, err
	}

	seen := make(map[time.Time]bool)
	dates := make([]time.Time, 0)
	for _, r := range rows {
		if !seen[r.Date] {
			seen[r.Date] = true
			dates = append(dates, r.Date)
		}
	}
	return previousDate(dates, contracts.RunDate(before))
}

func (l *CSVLedger) RowsForDate(ctx context.Context, date time.Time) ([]contracts.LedgerRow, error) {
	rows, err := l.readLocked()
	if err != nil {
		return nil, err
	}

	date = contracts.RunDate(date)
	out := make([]contracts.LedgerRow, 0)
	for _, r := range rows {
		if r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (l *CSVLedger) History(ctx context.Context, ticker string) ([]contracts.LedgerRow, error) {
	rows, err := l.readLocked()
	if err != nil {
		return nil, err
	}

	out := make([]contracts.LedgerRow, 0)
	for _, r := range rows {
		if r.Ticker == ticker {
			out = append(out, r)
		}
	}
	sortByDate(out)
	return out, nil
}

func (l *CSVLedger) readLocked() ([]contracts.LedgerRow, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

// read parses the ledger. A missing file is an empty ledger.
func (l *CSVLedger) read() ([]contracts.LedgerRow, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	rows, err := decodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", contracts.ErrLedgerCorrupt, l.path, err)
	}
	return rows, nil
}

// decodeCSV reads rows by header name, so column order on disk does not matter
func decodeCSV(r io.Reader) ([]contracts.LedgerRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, name := range CSVHeader {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var rows []contracts.LedgerRow
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(header), len(rec))
		}

		date, err := contracts.ParseRunDate(rec[col["Date"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: date: %w", line, err)
		}
		score, err := strconv.ParseFloat(rec[col["TotalScore"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: total score: %w", line, err)
		}
		rank, err := strconv.ParseFloat(rec[col["Rank"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: rank: %w", line, err)
		}

		rows = append(rows, contracts.LedgerRow{
			Date:       date,
			Ticker:     rec[col["Ticker"]],
			TotalScore: score,
			Rank:       rank,
		})
	}
	return rows, nil
}

func (l *CSVLedger) write(rows []contracts.LedgerRow) error {
	return fileutil.WriteAtomic(l.path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(CSVHeader); err != nil {
			return err
		}
		for _, r := range rows {
			rec := []string{
				r.Date.Format(contracts.DateLayout),
				r.Ticker,
				strconv.FormatFloat(r.TotalScore, 'f', -1, 64),
				strconv.FormatFloat(r.Rank, 'f', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func (l *CSVLedger) quarantine() (string, error) {
	target := fmt.Sprintf("%s.corrupt-%d", l.path, l.now().Unix())
	if err := os.Rename(l.path, target); err != nil {
		return "", err
	}
	return target, nil
}

package s0_snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/pkg/fileutil"
	"github.com/wonny/equityrank/pkg/logger"
)

// DirSource reads snapshot rows from *.json files.
// A subdirectory named after the run date (2006-01-02) wins over the top-level directory.
type DirSource struct {
	dir    string
	maxAge time.Duration
	logger *logger.Logger
	now    func() time.Time
}

// NewDirSource creates a directory-backed snapshot source
func NewDirSource(dir string, maxAge time.Duration, log *logger.Logger) *DirSource {
	return &DirSource{
		dir:    dir,
		maxAge: maxAge,
		logger: log.WithStage(contracts.StageSnapshot.String()),
		now:    time.Now,
	}
}

// ScanStats summarizes one directory scan
type ScanStats struct {
	Dir       string
	Files     int
	Skipped   int
	Stale     int
	Duplicate int
}

// Load implements contracts.SnapshotSource
func (s *DirSource) Load(ctx context.Context, date time.Time) ([]contracts.EntitySnapshot, error) {
	rows, stats, err := s.scan(ctx, date)
	if err != nil {
		return nil, err
	}

	if stats.Stale > 0 {
		s.logger.WithFields(map[string]interface{}{
			"stale_files": stats.Stale,
			"max_age":     s.maxAge.String(),
		}).Warn("Snapshot files older than max age")
	}

	s.logger.WithFields(map[string]interface{}{
		"dir":       stats.Dir,
		"files":     stats.Files,
		"skipped":   stats.Skipped,
		"duplicate": stats.Duplicate,
		"entities":  len(rows),
	}).Info("Snapshots loaded")

	return rows, nil
}

func (s *DirSource) scan(ctx context.Context, date time.Time) ([]contracts.EntitySnapshot, ScanStats, error) {
	dir := s.resolveDir(date)
	stats := ScanStats{Dir: dir}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: read dir %s: %v", contracts.ErrSnapshotLoad, dir, err)
	}

	var all []contracts.EntitySnapshot
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		stats.Files++

		path := filepath.Join(dir, entry.Name())
		if info, err := entry.Info(); err == nil && s.maxAge > 0 && fileutil.IsOlderThan(info, s.maxAge, s.now()) {
			stats.Stale++
		}

		data, err := os.ReadFile(path)
		if err != nil {
			stats.Skipped++
			s.logger.WithError(err).WithField("file", entry.Name()).Warn("Failed to read snapshot file")
			continue
		}
		rows, err := decodeRows(data)
		if err != nil {
			stats.Skipped++
			s.logger.WithError(err).WithField("file", entry.Name()).Warn("Failed to decode snapshot file")
			continue
		}
		all = append(all, rows...)
	}

	kept, dropped := dedupe(all)
	stats.Duplicate = dropped
	return kept, stats, nil
}

func (s *DirSource) resolveDir(date time.Time) string {
	if date.IsZero() {
		return s.dir
	}
	dated := filepath.Join(s.dir, date.Format(contracts.DateLayout))
	if info, err := os.Stat(dated); err == nil && info.IsDir() {
		return dated
	}
	return s.dir
}

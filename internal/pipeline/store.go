package pipeline

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/pkg/logger"
	"github.com/wonny/equityrank/pkg/redis"
)

const latestKey = "latest"

// ResultStore keeps recent run results in process and, when enabled, in Redis
// so an API process can serve what a scheduler process computed.
type ResultStore struct {
	local  *gocache.Cache
	remote *redis.Cache
	logger *logger.Logger
}

// NewResultStore creates a store. remote may be nil.
func NewResultStore(remote *redis.Cache, log *logger.Logger) *ResultStore {
	return &ResultStore{
		local:  gocache.New(redis.TTLRun, time.Hour),
		remote: remote,
		logger: log,
	}
}

// Save records result as the latest run and under its date
func (s *ResultStore) Save(ctx context.Context, result *RunResult) error {
	day := result.Date.Format(contracts.DateLayout)
	s.local.Set(latestKey, result, gocache.NoExpiration)
	s.local.Set(day, result, gocache.DefaultExpiration)

	if s.remote == nil {
		return nil
	}
	if err := s.remote.Set(ctx, redis.LatestRunKey(), result, redis.TTLRun); err != nil {
		return fmt.Errorf("cache latest run: %w", err)
	}
	if err := s.remote.Set(ctx, redis.RunKey(day), result, redis.TTLRun); err != nil {
		return fmt.Errorf("cache run %s: %w", day, err)
	}
	return nil
}

// Latest returns the most recent run, preferring Redis so other processes' runs are visible
func (s *ResultStore) Latest(ctx context.Context) (*RunResult, bool, error) {
	return s.get(ctx, latestKey, redis.LatestRunKey())
}

// ForDate returns the run recorded for date
func (s *ResultStore) ForDate(ctx context.Context, date time.Time) (*RunResult, bool, error) {
	day := contracts.RunDate(date).Format(contracts.DateLayout)
	return s.get(ctx, day, redis.RunKey(day))
}

func (s *ResultStore) get(ctx context.Context, localKey, remoteKey string) (*RunResult, bool, error) {
	if s.remote != nil {
		var result RunResult
		found, err := s.remote.Get(ctx, remoteKey, &result)
		if err != nil {
			s.logger.WithError(err).WithField("key", remoteKey).Warn("Result cache read failed, using local copy")
		} else if found {
			return &result, true, nil
		}
	}

	if v, ok := s.local.Get(localKey); ok {
		if result, ok := v.(*RunResult); ok {
			return result, true, nil
		}
	}
	return nil, false, nil
}

package commands

import (
	"context"
	"fmt"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/output"
	"github.com/wonny/equityrank/internal/pipeline"
	"github.com/wonny/equityrank/internal/s0_snapshot"
	"github.com/wonny/equityrank/internal/s4_history"
	"github.com/wonny/equityrank/internal/strategyconfig"
	"github.com/wonny/equityrank/pkg/config"
	"github.com/wonny/equityrank/pkg/database"
	"github.com/wonny/equityrank/pkg/httputil"
	"github.com/wonny/equityrank/pkg/logger"
	"github.com/wonny/equityrank/pkg/redis"
)

const keyPrefix = "equityrank"

// app holds the wired dependencies shared by every command
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	strategy *strategyconfig.Config
	ledger   contracts.Ledger
	redis    *redis.Client
	store    *pipeline.ResultStore
	db       *database.DB
}

// newApp loads config, strategy and the ledger backend
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if strategyFile != "" {
		cfg.StrategyFile = strategyFile
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load strategy
	strategy, err := strategyconfig.LoadOrDefault(cfg.StrategyFile)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	for _, w := range strategyconfig.CheckWarnings(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	a := &app{cfg: cfg, log: log, strategy: strategy}

	// 4. Connect to Redis (no-op when disabled)
	a.redis, err = redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.store = pipeline.NewResultStore(redis.NewCache(a.redis, keyPrefix), log)

	// 5. Open ledger
	if err := a.openLedger(ctx); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *app) openLedger(ctx context.Context) error {
	switch a.cfg.History.Backend {
	case config.BackendPostgres:
		db, err := database.New(ctx, a.cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		pg := s4_history.NewPostgresLedger(db.Pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure ledger schema: %w", err)
		}
		a.ledger = pg
	case config.BackendMemory:
		a.ledger = s4_history.NewMemoryLedger()
	default:
		a.ledger = s4_history.NewCSVLedger(a.cfg.History.File, a.log)
	}

	a.log.WithField("backend", a.cfg.History.Backend).Debug("History ledger ready")
	return nil
}

// source builds the configured snapshot source, wrapped with constituents enrichment
func (a *app) source() contracts.SnapshotSource {
	var src contracts.SnapshotSource
	client := httputil.New(a.log).WithRateLimit(a.cfg.Snapshot.RatePerSec)

	switch a.cfg.Snapshot.Source {
	case config.SourceHTTP:
		src = s0_snapshot.NewHTTPSource(client, a.cfg.Snapshot.URL, a.log)
	default:
		src = s0_snapshot.NewDirSource(a.cfg.Snapshot.Dir, a.cfg.Snapshot.MaxAge, a.log)
	}

	if a.cfg.Snapshot.ConstituentsFile != "" || a.cfg.Snapshot.ConstituentsURL != "" {
		src = s0_snapshot.NewEnrichedSource(src, a.cfg.Snapshot.ConstituentsFile, a.cfg.Snapshot.ConstituentsURL, client, a.log)
	}
	return src
}

// orchestrator wires the full pipeline
func (a *app) orchestrator() (*pipeline.Orchestrator, error) {
	return pipeline.NewOrchestrator(pipeline.Deps{
		Strategy: a.strategy,
		Source:   a.source(),
		Ledger:   a.ledger,
		Exporter: output.NewCSVExporter(a.cfg.Output.File, a.log),
		Store:    a.store,
		Locker:   redis.NewLocker(a.redis, keyPrefix),
		Location: a.cfg.Location(),
	}, a.log)
}

// Close releases connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close redis")
		}
	}
}

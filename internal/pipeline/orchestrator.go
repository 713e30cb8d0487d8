package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/metrics"
	"github.com/wonny/equityrank/internal/s1_filter"
	"github.com/wonny/equityrank/internal/s2_normalize"
	"github.com/wonny/equityrank/internal/s3_scoring"
	"github.com/wonny/equityrank/internal/s4_history"
	"github.com/wonny/equityrank/internal/s5_explain"
	"github.com/wonny/equityrank/internal/strategyconfig"
	"github.com/wonny/equityrank/pkg/logger"
	"github.com/wonny/equityrank/pkg/redis"
)

// ErrRunInProgress is returned when another run holds the pipeline lock
var ErrRunInProgress = errors.New("a ranking run is already in progress")

const (
	lockName = "pipeline-run"
	lockTTL  = 30 * time.Minute
)

// Deps are the collaborators of one orchestrator
type Deps struct {
	Strategy  *strategyconfig.Config
	Source    contracts.SnapshotSource
	Ledger    contracts.Ledger
	Explainer contracts.Explainer // nil = rule-based
	Exporter  contracts.Exporter  // nil = no artifact
	Store     *ResultStore        // nil = results not retained
	Locker    *redis.Locker       // nil = in-process serialization only
	Location  *time.Location      // run-date calendar; nil = UTC
}

// Orchestrator coordinates the ranking pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
//
//	S0 Snapshot → S1 Filter → S2 Normalize → S3 Scoring → S4 History → S5 Explain → S6 Export
type Orchestrator struct {
	source     contracts.SnapshotSource
	filter     *s1_filter.Filter
	normalizer *s2_normalize.Normalizer
	scorer     *s3_scoring.Scorer
	tracker    *s4_history.Tracker
	explainer  *s5_explain.Stage
	exporter   contracts.Exporter
	exportTop  int
	store      *ResultStore
	locker     *redis.Locker
	loc        *time.Location

	strategyID string
	configHash string

	mu     sync.Mutex
	logger *logger.Logger
	now    func() time.Time
}

// NewOrchestrator builds every stage from the strategy config
func NewOrchestrator(deps Deps, log *logger.Logger) (*Orchestrator, error) {
	if deps.Strategy == nil {
		return nil, fmt.Errorf("strategy config is required")
	}
	if deps.Source == nil {
		return nil, fmt.Errorf("snapshot source is required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("history ledger is required")
	}

	hash, err := strategyconfig.Hash(deps.Strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy config: %w", err)
	}

	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}

	cfg := deps.Strategy
	return &Orchestrator{
		source:     deps.Source,
		filter:     s1_filter.New(cfg.Filter, log),
		normalizer: s2_normalize.New(cfg.Metrics, log),
		scorer:     s3_scoring.New(cfg.Categories, cfg.Weights, log),
		tracker:    s4_history.NewTracker(deps.Ledger, log),
		explainer:  s5_explain.NewStage(deps.Explainer, log),
		exporter:   deps.Exporter,
		exportTop:  cfg.Output.ExportTop,
		store:      deps.Store,
		locker:     deps.Locker,
		loc:        loc,
		strategyID: cfg.Meta.StrategyID,
		configHash: hash,
		logger:     log,
		now:        time.Now,
	}, nil
}

// ConfigHash identifies the strategy every run of this orchestrator uses
func (o *Orchestrator) ConfigHash() string {
	return o.configHash
}

// Run executes the full pipeline for one date.
// Zero eligible entities is a normal outcome, not an error; an export failure only sets ExportError.
func (o *Orchestrator) Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.locker != nil {
		lock, err := o.locker.Acquire(ctx, lockName, lockTTL)
		if errors.Is(err, redis.ErrLockHeld) {
			return nil, ErrRunInProgress
		}
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				o.logger.WithError(err).Warn("Failed to release run lock")
			}
		}()
	}

	startTime := o.now()
	if cfg.Date.IsZero() {
		cfg.Date = startTime.In(o.loc)
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}

	result := &RunResult{
		RunID:           cfg.RunID,
		Date:            contracts.RunDate(cfg.Date),
		StrategyID:      o.strategyID,
		ConfigHash:      o.configHash,
		CompletedStages: make([]string, 0, len(contracts.AllStages())),
		StartedAt:       startTime,
	}
	day := result.Date.Format(contracts.DateLayout)
	log := o.logger.WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"date":   day,
	})

	log.WithFields(map[string]interface{}{
		"strategy_id": o.strategyID,
		"config_hash": o.configHash,
	}).Info("Starting ranking run")

	// S0: Snapshot
	snapshots, err := o.source.Load(ctx, result.Date)
	if err != nil {
		return result, fmt.Errorf("%s failed: %w", contracts.StageSnapshot.ShortName(), err)
	}
	result.Counts.Loaded = len(snapshots)
	result.completed(contracts.StageSnapshot)

	// S1: Filter
	universe, err := o.filter.Apply(ctx, result.Date, snapshots)
	if err != nil {
		return result, fmt.Errorf("%s failed: %w", contracts.StageFilter.ShortName(), err)
	}
	result.Counts.Filtered = universe.Count()
	result.Counts.Excluded = universe.Excluded
	result.completed(contracts.StageFilter)

	if universe.Count() == 0 {
		result.Outcome = contracts.OutcomeNoEligibleEntities
		log.WithError(contracts.ErrEmptyUniverse).WithField("loaded", result.Counts.Loaded).
			Warn("Run halted: no eligible entities")
		o.finish(ctx, result, log)
		return result, nil
	}

	// S2: Normalize
	normalized, err := o.normalizer.Apply(ctx, universe)
	if err != nil {
		return result, fmt.Errorf("%s failed: %w", contracts.StageNormalize.ShortName(), err)
	}
	result.Counts.FallbackSectors = normalized.FallbackSectors
	result.completed(contracts.StageNormalize)

	// S3: Scoring
	scored, err := o.scorer.Apply(ctx, normalized)
	if err != nil {
		return result, fmt.Errorf("%s failed: %w", contracts.StageScoring.ShortName(), err)
	}
	result.completed(contracts.StageScoring)

	// S4: History (ledger write failure aborts the run)
	ranked, err := o.tracker.Apply(ctx, result.Date, scored)
	if err != nil {
		return result, fmt.Errorf("%s failed: %w", contracts.StageHistory.ShortName(), err)
	}
	result.Counts.Ranked = len(ranked)
	result.completed(contracts.StageHistory)

	// S5: Explain
	if err := o.explainer.Apply(ctx, ranked); err != nil {
		return result, fmt.Errorf("%s failed: %w", contracts.StageExplain.ShortName(), err)
	}
	result.Ranked = ranked
	result.Outcome = contracts.OutcomeRanked
	result.completed(contracts.StageExplain)

	// S6: Export
	if o.exporter != nil {
		top := result.Top(o.exportTop)
		if err := o.exporter.Export(ctx, result.Date, top); err != nil {
			result.ExportError = err
			result.ExportErrorMessage = err.Error()
			log.WithError(err).Error("Export failed; ranking and ledger update kept")
		} else {
			result.Counts.Exported = len(top)
			result.completed(contracts.StageExport)
		}
	}

	o.finish(ctx, result, log)
	return result, nil
}

func (o *Orchestrator) finish(ctx context.Context, result *RunResult, log *logger.Logger) {
	finishedAt := o.now()
	result.Duration = finishedAt.Sub(result.StartedAt)

	metrics.RecordRun(metrics.RunSummary{
		Outcome: result.Outcome,
		StageCounts: map[string]int{
			contracts.StageSnapshot.String(): result.Counts.Loaded,
			contracts.StageFilter.String():   result.Counts.Filtered,
			contracts.StageHistory.String():  result.Counts.Ranked,
		},
		FallbackSectors: len(result.Counts.FallbackSectors),
		ExportFailed:    result.ExportError != nil,
		Duration:        result.Duration,
		FinishedAt:      finishedAt,
	})

	if o.store != nil {
		if err := o.store.Save(ctx, result); err != nil {
			log.WithError(err).Warn("Failed to cache run result")
		}
	}

	log.WithFields(map[string]interface{}{
		"outcome":  result.Outcome,
		"loaded":   result.Counts.Loaded,
		"filtered": result.Counts.Filtered,
		"ranked":   result.Counts.Ranked,
		"stages":   len(result.CompletedStages),
		"duration": result.Duration.Seconds(),
	}).Info("Ranking run completed")
}

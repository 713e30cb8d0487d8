package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/equityrank/internal/pipeline"
	"github.com/wonny/equityrank/internal/scheduler"
	"github.com/wonny/equityrank/pkg/logger"
)

// Runner is the part of the orchestrator the job needs
type Runner interface {
	Run(ctx context.Context, cfg pipeline.RunConfig) (*pipeline.RunResult, error)
}

// RankingJob runs the full ranking pipeline for the current market date
type RankingJob struct {
	runner   Runner
	schedule string
	location *time.Location
	logger   *logger.Logger
	now      func() time.Time
}

// NewRankingJob creates the daily ranking job
func NewRankingJob(runner Runner, schedule string, loc *time.Location, log *logger.Logger) *RankingJob {
	if loc == nil {
		loc = time.UTC
	}
	return &RankingJob{
		runner:   runner,
		schedule: schedule,
		location: loc,
		logger:   log,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *RankingJob) Name() string {
	return "daily_ranking"
}

// Schedule returns the cron schedule (weekdays after the close by default)
func (j *RankingJob) Schedule() string {
	return j.schedule
}

// Run executes one ranking run dated in the job's time zone
func (j *RankingJob) Run(ctx context.Context) error {
	date := j.now().In(j.location)

	result, err := j.runner.Run(ctx, pipeline.RunConfig{Date: date})
	if errors.Is(err, pipeline.ErrRunInProgress) {
		return scheduler.Permanent(err)
	}
	if err != nil {
		// snapshot files may still be landing; let the scheduler retry
		return fmt.Errorf("ranking run: %w", err)
	}

	fields := map[string]interface{}{
		"run_id":  result.RunID,
		"outcome": result.Outcome,
		"ranked":  result.Counts.Ranked,
	}
	if result.ExportError != nil {
		j.logger.WithFields(fields).WithError(result.ExportError).Warn("Scheduled ranking finished without export")
		return nil
	}
	j.logger.WithFields(fields).Info("Scheduled ranking finished")
	return nil
}

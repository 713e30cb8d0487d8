package pipeline

import (
	"time"

	"github.com/wonny/equityrank/internal/contracts"
)

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	Date  time.Time // zero = today in the orchestrator's location
	RunID string    // empty = generated
}

// Counts are the per-stage entity counts of one run
type Counts struct {
	Loaded          int                               `json:"loaded"`
	Filtered        int                               `json:"filtered"`
	Excluded        map[contracts.ExclusionReason]int `json:"excluded,omitempty"`
	Ranked          int                               `json:"ranked"`
	Exported        int                               `json:"exported"`
	FallbackSectors []string                          `json:"fallback_sectors,omitempty"`
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           string                   `json:"run_id"`
	Date            time.Time                `json:"date"`
	StrategyID      string                   `json:"strategy_id"`
	ConfigHash      string                   `json:"config_hash"`
	Outcome         contracts.Outcome        `json:"outcome"`
	Counts          Counts                   `json:"counts"`
	CompletedStages []string                 `json:"completed_stages"`
	Ranked          []contracts.RankedEntity `json:"ranked"`
	StartedAt       time.Time                `json:"started_at"`
	Duration        time.Duration            `json:"duration"`

	// ExportError is set when the artifact could not be written; the ranking and ledger still stand
	ExportError        error  `json:"-"`
	ExportErrorMessage string `json:"export_error,omitempty"`
}

// Top returns at most n ranked entities; n <= 0 returns all
func (r *RunResult) Top(n int) []contracts.RankedEntity {
	if n <= 0 || n >= len(r.Ranked) {
		return r.Ranked
	}
	return r.Ranked[:n]
}

func (r *RunResult) completed(stage contracts.Stage) {
	r.CompletedStages = append(r.CompletedStages, stage.String())
}

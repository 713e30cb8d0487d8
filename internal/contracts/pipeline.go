package contracts

import "time"

// Stage represents a pipeline stage
//
//	S0 → S1 → S2 → S3 → S4 → S5 → S6
//	Snapshot  Filter  Normalize  Scoring  History  Explain  Export
//
// 모든 로그와 RunResult에서 이 상수를 사용
type Stage string

const (
	// StageSnapshot S0: load one row per entity for the run date
	StageSnapshot Stage = "S0_SNAPSHOT"

	// StageFilter S1: hard eligibility gate
	StageFilter Stage = "S1_FILTER"

	// StageNormalize S2: sector-relative percentiles
	StageNormalize Stage = "S2_NORMALIZE"

	// StageScoring S3: category blends and total score
	StageScoring Stage = "S3_SCORING"

	// StageHistory S4: rank, ledger replace, rank delta
	StageHistory Stage = "S4_HISTORY"

	// StageExplain S5: narrative and risk note per entity
	StageExplain Stage = "S5_EXPLAIN"

	// StageExport S6: top-N artifact
	StageExport Stage = "S6_EXPORT"
)

func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	if len(s) < 2 {
		return "UNKNOWN"
	}
	switch s {
	case StageSnapshot, StageFilter, StageNormalize, StageScoring, StageHistory, StageExplain, StageExport:
		return string(s[:2])
	default:
		return "UNKNOWN"
	}
}

// AllStages returns stages in execution order
func AllStages() []Stage {
	return []Stage{
		StageSnapshot,
		StageFilter,
		StageNormalize,
		StageScoring,
		StageHistory,
		StageExplain,
		StageExport,
	}
}

// Outcome is the terminal state of one run
type Outcome string

const (
	OutcomeRanked             Outcome = "ranked"
	OutcomeNoEligibleEntities Outcome = "no_eligible_entities"
)

// DateLayout is the calendar date format used in ledgers, exports and APIs
const DateLayout = "2006-01-02"

// RunDate truncates t to its calendar date in UTC, keeping t's own year/month/day
func RunDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseRunDate parses a YYYY-MM-DD date
func ParseRunDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return RunDate(t), nil
}

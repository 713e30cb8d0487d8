package contracts

import "time"

// ExclusionReason names the first hard-filter gate an entity failed
type ExclusionReason string

const (
	ExcludedGrowth   ExclusionReason = "growth"
	ExcludedCashFlow ExclusionReason = "cash_flow"
	ExcludedTrend    ExclusionReason = "trend"
	ExcludedLeverage ExclusionReason = "leverage"
)

// FilteredUniverse is the S1 → S2 hand-off
type FilteredUniverse struct {
	Date       time.Time               `json:"date"`
	TotalInput int                     `json:"total_input"`
	Entities   []EntitySnapshot        `json:"entities"`
	Excluded   map[ExclusionReason]int `json:"excluded"`
}

// Count returns the number of entities that passed
func (u *FilteredUniverse) Count() int {
	return len(u.Entities)
}

// NormSource records which distribution an entity's percentiles came from
type NormSource string

const (
	NormSourceSector   NormSource = "sector"
	NormSourceUniverse NormSource = "universe_fallback"
)

// NormalizedEntity is a filtered snapshot plus its percentiles
type NormalizedEntity struct {
	EntitySnapshot
	Percentiles    Percentiles `json:"percentiles"`
	NormSource     NormSource  `json:"norm_source"`
	MissingMetrics int         `json:"missing_metrics"`
}

// NormalizedUniverse is the S2 → S3 hand-off
type NormalizedUniverse struct {
	Date            time.Time          `json:"date"`
	Entities        []NormalizedEntity `json:"entities"`
	FallbackSectors []string           `json:"fallback_sectors"`
}

// CategoryScores holds the five 0-100 category blends
type CategoryScores struct {
	Quality    float64 `json:"quality"`
	Growth     float64 `json:"growth"`
	Valuation  float64 `json:"valuation"`
	Technicals float64 `json:"technicals"`
	Risk       float64 `json:"risk"`
}

// ScoredEntity is the S3 → S4 hand-off
type ScoredEntity struct {
	NormalizedEntity
	Scores     CategoryScores `json:"scores"`
	TrendScore float64        `json:"trend_score"`
	TotalScore float64        `json:"total_score"`
}

// Confidence grades how complete an entity's inputs were
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Explanation is attached by the explanation hook; it never changes scores
type Explanation struct {
	Narrative string `json:"narrative"`
	RiskNote  string `json:"risk_note"`
	Version   string `json:"version"`
}

// RankedEntity is a scored entity with its rank for the run date
type RankedEntity struct {
	ScoredEntity
	Rank         float64     `json:"rank"` // 1 = best, ties share the mean position
	PreviousRank *float64    `json:"previous_rank,omitempty"`
	RankDelta    float64     `json:"rank_delta"` // previous - current, 0 when no prior entry
	Explanation  Explanation `json:"explanation"`
	Confidence   Confidence  `json:"confidence"`
}

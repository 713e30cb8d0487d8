package contracts

import (
	"context"
	"time"
)

// SnapshotSource supplies one row per entity for a run date (S0)
type SnapshotSource interface {
	Load(ctx context.Context, date time.Time) ([]EntitySnapshot, error)
}

// Explainer turns a ranked row into narrative text (S5)
type Explainer interface {
	Explain(entity *RankedEntity) Explanation
}

// Exporter persists the top-N artifact (S6)
type Exporter interface {
	Export(ctx context.Context, date time.Time, ranked []RankedEntity) error
}

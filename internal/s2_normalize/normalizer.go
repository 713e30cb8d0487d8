package s2_normalize

import (
	"context"
	"sort"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/pkg/logger"
)

// Normalizer implements S2: sector-relative percentiles
// ⭐ SSOT: S2 정규화 로직은 여기서만
type Normalizer struct {
	metrics []contracts.MetricSpec
	logger  *logger.Logger
}

// New creates a normalizer over the strategy's metric table
func New(metrics []contracts.MetricSpec, log *logger.Logger) *Normalizer {
	return &Normalizer{
		metrics: metrics,
		logger:  log.WithStage(contracts.StageNormalize.String()),
	}
}

// Apply computes one percentile per configured metric for every entity.
// Sectors smaller than a metric's min_sector_size are ranked against the whole universe.
func (n *Normalizer) Apply(ctx context.Context, u *contracts.FilteredUniverse) (*contracts.NormalizedUniverse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &contracts.NormalizedUniverse{
		Date:     u.Date,
		Entities: make([]contracts.NormalizedEntity, len(u.Entities)),
	}

	for i, e := range u.Entities {
		ne := contracts.NormalizedEntity{
			EntitySnapshot: e,
			Percentiles:    make(contracts.Percentiles, len(n.metrics)),
			NormSource:     contracts.NormSourceSector,
		}
		for _, spec := range n.metrics {
			ne.Percentiles[spec.Metric] = contracts.NeutralScore
			if spec.Metric.Value(&ne.EntitySnapshot) == nil {
				ne.MissingMetrics++
			}
		}
		out.Entities[i] = ne
	}

	sectors := groupBySector(out.Entities)
	fallback := make(map[string]bool)

	for _, spec := range n.metrics {
		all := make([]int, len(out.Entities))
		for i := range all {
			all[i] = i
		}
		universeScores := n.score(out.Entities, all, spec)

		for sector, members := range sectors {
			if len(members) < spec.MinSectorSize {
				fallback[sector] = true
				for _, idx := range members {
					if s, ok := universeScores[idx]; ok {
						out.Entities[idx].Percentiles[spec.Metric] = s
					}
				}
				continue
			}

			for idx, s := range n.score(out.Entities, members, spec) {
				out.Entities[idx].Percentiles[spec.Metric] = s
			}
		}
	}

	for sector := range fallback {
		out.FallbackSectors = append(out.FallbackSectors, sector)
		for _, idx := range sectors[sector] {
			out.Entities[idx].NormSource = contracts.NormSourceUniverse
		}
	}
	sort.Strings(out.FallbackSectors)

	n.logger.WithFields(map[string]interface{}{
		"entities":         len(out.Entities),
		"sectors":          len(sectors),
		"fallback_sectors": out.FallbackSectors,
		"metrics":          len(n.metrics),
	}).Info("Normalization completed")

	return out, nil
}

// score ranks the known values of one metric among the given members.
// Members with an unknown value are absent from the result.
func (n *Normalizer) score(entities []contracts.NormalizedEntity, members []int, spec contracts.MetricSpec) map[int]float64 {
	known := make([]int, 0, len(members))
	values := make([]float64, 0, len(members))
	for _, idx := range members {
		if v := spec.Metric.Value(&entities[idx].EntitySnapshot); v != nil {
			known = append(known, idx)
			values = append(values, *v)
		}
	}

	scores := PercentileScores(values, spec.HigherIsBetter)
	out := make(map[int]float64, len(known))
	for i, idx := range known {
		out[idx] = scores[i]
	}
	return out
}

func groupBySector(entities []contracts.NormalizedEntity) map[string][]int {
	groups := make(map[string][]int)
	for i, e := range entities {
		sector := e.Sector
		if sector == "" {
			sector = contracts.UnknownSector
		}
		groups[sector] = append(groups[sector], i)
	}
	return groups
}

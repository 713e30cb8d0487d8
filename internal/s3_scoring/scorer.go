package s3_scoring

import (
	"context"
	"math"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/strategyconfig"
	"github.com/wonny/equityrank/pkg/logger"
)

// Scorer implements S3: category blends and the weighted total
// ⭐ SSOT: S3 점수 계산 로직은 여기서만
type Scorer struct {
	categories strategyconfig.Categories
	weights    strategyconfig.TotalWeights
	logger     *logger.Logger
}

// New creates a scorer
func New(categories strategyconfig.Categories, weights strategyconfig.TotalWeights, log *logger.Logger) *Scorer {
	return &Scorer{
		categories: categories,
		weights:    weights,
		logger:     log.WithStage(contracts.StageScoring.String()),
	}
}

// Apply scores every normalized entity. Input order is preserved.
func (s *Scorer) Apply(ctx context.Context, u *contracts.NormalizedUniverse) ([]contracts.ScoredEntity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scored := make([]contracts.ScoredEntity, len(u.Entities))
	for i := range u.Entities {
		scored[i] = s.Score(&u.Entities[i])
	}

	fields := map[string]interface{}{
		"entities": len(scored),
	}
	if len(scored) > 0 {
		top := 0
		for i := range scored {
			if scored[i].TotalScore > scored[top].TotalScore {
				top = i
			}
		}
		fields["top_score"] = scored[top].TotalScore
		fields["top_ticker"] = scored[top].Ticker
	}
	s.logger.WithFields(fields).Info("Scoring completed")

	return scored, nil
}

// Score computes the five categories and the total for one entity
func (s *Scorer) Score(e *contracts.NormalizedEntity) contracts.ScoredEntity {
	p := e.Percentiles
	c := s.categories

	trend := TrendScore(&e.EntitySnapshot, c.Technicals.TrendScale)

	scores := contracts.CategoryScores{
		Quality:    blend(p, c.Quality),
		Growth:     p.Get(contracts.MetricRevenueGrowth),
		Valuation:  blend(p, c.Valuation),
		Technicals: p.Get(contracts.MetricMomentum)*c.Technicals.MomentumWeight + trend*c.Technicals.TrendWeight,
		Risk:       blend(p, c.Risk),
	}

	return contracts.ScoredEntity{
		NormalizedEntity: *e,
		Scores:           scores,
		TrendScore:       trend,
		TotalScore:       Total(scores, s.weights),
	}
}

// Total is the weighted sum of the category scores
func Total(c contracts.CategoryScores, w strategyconfig.TotalWeights) float64 {
	return c.Quality*w.Quality +
		c.Growth*w.Growth +
		c.Valuation*w.Valuation +
		c.Technicals*w.Technicals +
		c.Risk*w.Risk
}

// TrendScore maps price vs MA200 around a neutral 50, clamped to [0, 100].
// Unknown price or MA200 scores neutral.
func TrendScore(e *contracts.EntitySnapshot, scale float64) float64 {
	ratio, ok := e.TrendRatio()
	if !ok {
		return contracts.OrNeutral(nil)
	}
	return clamp(contracts.NeutralScore+ratio*scale, 0, 100)
}

func blend(p contracts.Percentiles, b strategyconfig.Blend2) float64 {
	return p.Get(b.First)*b.FirstWeight + p.Get(b.Second)*b.SecondWeight
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

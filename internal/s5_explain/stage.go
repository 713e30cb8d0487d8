package s5_explain

import (
	"context"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/pkg/logger"
)

// Stage implements S5: attach an explanation and confidence to every ranked entity
type Stage struct {
	explainer contracts.Explainer
	logger    *logger.Logger
}

// NewStage wraps an explainer. A nil explainer falls back to RuleExplainer.
func NewStage(explainer contracts.Explainer, log *logger.Logger) *Stage {
	if explainer == nil {
		explainer = NewRuleExplainer()
	}
	return &Stage{
		explainer: explainer,
		logger:    log.WithStage(contracts.StageExplain.String()),
	}
}

// Apply mutates only Explanation and Confidence
func (s *Stage) Apply(ctx context.Context, ranked []contracts.RankedEntity) error {
	grades := make(map[contracts.Confidence]int)
	for i := range ranked {
		if err := ctx.Err(); err != nil {
			return err
		}
		ranked[i].Explanation = s.explainer.Explain(&ranked[i])
		ranked[i].Confidence = Grade(ranked[i].MissingMetrics)
		grades[ranked[i].Confidence]++
	}

	s.logger.WithFields(map[string]interface{}{
		"entities":   len(ranked),
		"confidence": grades,
	}).Info("Explanations attached")

	return nil
}

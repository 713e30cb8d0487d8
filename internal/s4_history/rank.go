package s4_history

import (
	"sort"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/s2_normalize"
)

// Rank orders entities by total score descending and assigns fractional ranks.
// 1 = best; tied totals share the mean of their positions. Ties are listed by ticker.
func Rank(scored []contracts.ScoredEntity) []contracts.RankedEntity {
	negated := make([]float64, len(scored))
	for i := range scored {
		negated[i] = -scored[i].TotalScore
	}
	ranks := s2_normalize.FractionalRanks(negated)

	ranked := make([]contracts.RankedEntity, len(scored))
	for i := range scored {
		ranked[i] = contracts.RankedEntity{
			ScoredEntity: scored[i],
			Rank:         ranks[i],
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalScore != ranked[j].TotalScore {
			return ranked[i].TotalScore > ranked[j].TotalScore
		}
		return ranked[i].Ticker < ranked[j].Ticker
	})

	return ranked
}

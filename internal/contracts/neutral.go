package contracts

// NeutralScore is the percentile assigned when nothing is known
const NeutralScore = 50.0

// OrNeutral returns *v when it is a finite value, otherwise NeutralScore.
// ⭐ SSOT: 결측값 → 50 정책은 여기서만 정의
func OrNeutral(v *float64) float64 {
	if Known(v) {
		return *v
	}
	return NeutralScore
}

// Percentiles holds one 0-100 score per metric
type Percentiles map[Metric]float64

// Get returns the metric's percentile, or NeutralScore when it was never computed
func (p Percentiles) Get(m Metric) float64 {
	v, ok := p[m]
	if !ok {
		return NeutralScore
	}
	return OrNeutral(&v)
}

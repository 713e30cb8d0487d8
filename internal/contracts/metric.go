package contracts

// Metric identifies a normalized raw metric.
// The set is closed: strategy files may only reference these ids.
type Metric string

const (
	MetricROIC          Metric = "roic"
	MetricRevenueGrowth Metric = "revenue_growth"
	MetricGrossMargin   Metric = "gross_margin"
	MetricForwardPE     Metric = "forward_pe"
	MetricPEGRatio      Metric = "peg_ratio"
	MetricBeta          Metric = "beta"
	MetricDebtEBITDA    Metric = "debt_ebitda"
	MetricMomentum      Metric = "momentum"
)

// AllMetrics returns every known metric in canonical order
func AllMetrics() []Metric {
	return []Metric{
		MetricROIC,
		MetricRevenueGrowth,
		MetricGrossMargin,
		MetricForwardPE,
		MetricPEGRatio,
		MetricBeta,
		MetricDebtEBITDA,
		MetricMomentum,
	}
}

// Valid reports whether m is a known metric id
func (m Metric) Valid() bool {
	for _, known := range AllMetrics() {
		if m == known {
			return true
		}
	}
	return false
}

// Value extracts the raw metric from a snapshot (nil when unknown)
func (m Metric) Value(e *EntitySnapshot) *float64 {
	var v *float64
	switch m {
	case MetricROIC:
		v = e.ROIC
	case MetricRevenueGrowth:
		v = e.RevenueGrowth
	case MetricGrossMargin:
		v = e.GrossMargin
	case MetricForwardPE:
		v = e.ForwardPE
	case MetricPEGRatio:
		v = e.PEGRatio
	case MetricBeta:
		v = e.Beta
	case MetricDebtEBITDA:
		v = e.DebtEBITDA
	case MetricMomentum:
		v = e.Momentum
	}
	if !Known(v) {
		return nil
	}
	return v
}

// MetricSpec is one row of the metric table
type MetricSpec struct {
	Metric         Metric `yaml:"metric" json:"metric"`
	HigherIsBetter bool   `yaml:"higher_is_better" json:"higher_is_better"`
	MinSectorSize  int    `yaml:"min_sector_size" json:"min_sector_size"`
}

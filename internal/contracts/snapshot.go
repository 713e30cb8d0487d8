package contracts

import "math"

// EntitySnapshot is one entity on one date, as supplied by the snapshot source.
// Optional metrics are nil when unknown; zero is a real value.
type EntitySnapshot struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector"`

	Price    *float64 `json:"price"`
	MA200    *float64 `json:"ma200"`
	MA50     *float64 `json:"ma50"`
	Momentum *float64 `json:"rsi"` // 14-day RSI

	GrossMargin      *float64 `json:"gross_margin"`
	GrossMarginTrend *float64 `json:"gross_margin_trend"`
	Beta             *float64 `json:"beta"`
	ForwardPE        *float64 `json:"forward_pe"`
	PEGRatio         *float64 `json:"peg_ratio"`
	Employees        *float64 `json:"employees"`
	EPSGrowth3Y      *float64 `json:"eps_growth_3y"`
	ROIC             *float64 `json:"roic"`
	RevenueGrowth    *float64 `json:"rev_cagr_3y"`
	FCFPositive      bool     `json:"fcf_positive"`
	DebtEBITDA       *float64 `json:"debt_ebitda"`
}

// UnknownSector labels entities whose sector could not be resolved
const UnknownSector = "Unknown"

// Known reports whether v holds a finite value
func Known(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// Float returns a pointer to v; convenient for literals and tests
func Float(v float64) *float64 {
	return &v
}

// TrendRatio returns price/MA200 - 1, or false when either input is unusable
func (e *EntitySnapshot) TrendRatio() (float64, bool) {
	if !Known(e.Price) || !Known(e.MA200) || *e.MA200 <= 0 {
		return 0, false
	}
	return *e.Price / *e.MA200 - 1, true
}

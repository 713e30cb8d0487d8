package strategyconfig

import "github.com/wonny/equityrank/internal/contracts"

// Config is the full ranking strategy: metric table, filter gates, blends and weights
type Config struct {
	Meta       Meta                   `yaml:"meta" json:"meta"`
	Metrics    []contracts.MetricSpec `yaml:"metrics" json:"metrics"`
	Filter     Filter                 `yaml:"filter" json:"filter"`
	Categories Categories             `yaml:"categories" json:"categories"`
	Weights    TotalWeights           `yaml:"weights" json:"weights"`
	Output     Output                 `yaml:"output" json:"output"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Filter S1: Hard Cut thresholds
type Filter struct {
	GrowthMin          float64 `yaml:"growth_min" json:"growth_min"`     // strictly greater than
	TrendFloor         float64 `yaml:"trend_floor" json:"trend_floor"`   // (price-ma200)/ma200 strictly greater than
	LeverageMax        float64 `yaml:"leverage_max" json:"leverage_max"` // debt/ebitda strictly less than; unknown passes
	RequireFCFPositive bool    `yaml:"require_fcf_positive" json:"require_fcf_positive"`
}

// Categories S3: sub-metric blends per category (growth is a pass-through)
type Categories struct {
	Quality    Blend2     `yaml:"quality" json:"quality"`
	Valuation  Blend2     `yaml:"valuation" json:"valuation"`
	Technicals Technicals `yaml:"technicals" json:"technicals"`
	Risk       Blend2     `yaml:"risk" json:"risk"`
}

// Blend2 weights two metric percentiles
type Blend2 struct {
	First        contracts.Metric `yaml:"first" json:"first"`
	FirstWeight  float64          `yaml:"first_weight" json:"first_weight"`
	Second       contracts.Metric `yaml:"second" json:"second"`
	SecondWeight float64          `yaml:"second_weight" json:"second_weight"`
}

// Technicals blends the momentum percentile with the MA200 trend score
type Technicals struct {
	MomentumWeight float64 `yaml:"momentum_weight" json:"momentum_weight"`
	TrendWeight    float64 `yaml:"trend_weight" json:"trend_weight"`
	TrendScale     float64 `yaml:"trend_scale" json:"trend_scale"` // points per unit of price/ma200 - 1
}

// TotalWeights S3: category weights for the total score (sum = 1.0)
type TotalWeights struct {
	Quality    float64 `yaml:"quality" json:"quality"`
	Growth     float64 `yaml:"growth" json:"growth"`
	Valuation  float64 `yaml:"valuation" json:"valuation"`
	Technicals float64 `yaml:"technicals" json:"technicals"`
	Risk       float64 `yaml:"risk" json:"risk"`
}

// Sum returns the sum of all weights
func (w TotalWeights) Sum() float64 {
	return w.Quality + w.Growth + w.Valuation + w.Technicals + w.Risk
}

// Output sizes for the console summary and the exported artifact
type Output struct {
	ConsoleTop int `yaml:"console_top" json:"console_top"`
	ExportTop  int `yaml:"export_top" json:"export_top"`
}

// Spec returns the metric table row for m
func (c *Config) Spec(m contracts.Metric) (contracts.MetricSpec, bool) {
	for _, s := range c.Metrics {
		if s.Metric == m {
			return s, true
		}
	}
	return contracts.MetricSpec{}, false
}

// Default returns the built-in strategy
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "equity_rank_v1",
			Version:    "1.0.0",
		},
		Metrics: []contracts.MetricSpec{
			{Metric: contracts.MetricROIC, HigherIsBetter: true, MinSectorSize: 5},
			{Metric: contracts.MetricRevenueGrowth, HigherIsBetter: true, MinSectorSize: 5},
			{Metric: contracts.MetricGrossMargin, HigherIsBetter: true, MinSectorSize: 5},
			{Metric: contracts.MetricForwardPE, HigherIsBetter: false, MinSectorSize: 5},
			{Metric: contracts.MetricPEGRatio, HigherIsBetter: false, MinSectorSize: 5},
			{Metric: contracts.MetricBeta, HigherIsBetter: false, MinSectorSize: 5},
			{Metric: contracts.MetricDebtEBITDA, HigherIsBetter: false, MinSectorSize: 5},
			{Metric: contracts.MetricMomentum, HigherIsBetter: true, MinSectorSize: 5},
		},
		Filter: Filter{
			GrowthMin:          0,
			TrendFloor:         -0.25,
			LeverageMax:        6,
			RequireFCFPositive: true,
		},
		Categories: Categories{
			Quality: Blend2{
				First: contracts.MetricROIC, FirstWeight: 0.6,
				Second: contracts.MetricGrossMargin, SecondWeight: 0.4,
			},
			Valuation: Blend2{
				First: contracts.MetricForwardPE, FirstWeight: 0.6,
				Second: contracts.MetricPEGRatio, SecondWeight: 0.4,
			},
			Technicals: Technicals{
				MomentumWeight: 0.4,
				TrendWeight:    0.6,
				TrendScale:     100,
			},
			Risk: Blend2{
				First: contracts.MetricBeta, FirstWeight: 0.5,
				Second: contracts.MetricDebtEBITDA, SecondWeight: 0.5,
			},
		},
		Weights: TotalWeights{
			Quality:    0.30,
			Growth:     0.20,
			Valuation:  0.25,
			Technicals: 0.15,
			Risk:       0.10,
		},
		Output: Output{
			ConsoleTop: 10,
			ExportTop:  20,
		},
	}
}

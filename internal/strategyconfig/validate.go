package strategyconfig

import (
	"errors"
	"fmt"
	"math"

	"github.com/wonny/equityrank/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

const weightEpsilon = 1e-6

// Validate checks all required constraints
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Metrics ===
	if len(cfg.Metrics) == 0 {
		return ValidationError{"metrics", "must not be empty"}
	}
	seen := make(map[contracts.Metric]bool, len(cfg.Metrics))
	for i, spec := range cfg.Metrics {
		field := fmt.Sprintf("metrics[%d]", i)
		if !spec.Metric.Valid() {
			return ValidationError{field + ".metric", fmt.Sprintf("unknown metric %q", spec.Metric)}
		}
		if seen[spec.Metric] {
			return ValidationError{field + ".metric", fmt.Sprintf("duplicate metric %q", spec.Metric)}
		}
		seen[spec.Metric] = true
		if spec.MinSectorSize < 1 {
			return ValidationError{field + ".min_sector_size", "must be >= 1"}
		}
	}

	// === Filter ===
	if cfg.Filter.TrendFloor <= -1 || cfg.Filter.TrendFloor > 0 {
		return ValidationError{"filter.trend_floor", "must be in (-1, 0]"}
	}
	if cfg.Filter.LeverageMax <= 0 {
		return ValidationError{"filter.leverage_max", "must be > 0"}
	}

	// === Categories ===
	blends := []struct {
		field string
		blend Blend2
	}{
		{"categories.quality", cfg.Categories.Quality},
		{"categories.valuation", cfg.Categories.Valuation},
		{"categories.risk", cfg.Categories.Risk},
	}
	for _, b := range blends {
		if !b.blend.First.Valid() || !b.blend.Second.Valid() {
			return ValidationError{b.field, "unknown metric"}
		}
		if err := validateWeightsSum([]float64{b.blend.FirstWeight, b.blend.SecondWeight}, 1.0, weightEpsilon); err != nil {
			return ValidationError{b.field, err.Error()}
		}
	}
	tech := cfg.Categories.Technicals
	if err := validateWeightsSum([]float64{tech.MomentumWeight, tech.TrendWeight}, 1.0, weightEpsilon); err != nil {
		return ValidationError{"categories.technicals", err.Error()}
	}
	if tech.TrendScale <= 0 {
		return ValidationError{"categories.technicals.trend_scale", "must be > 0"}
	}

	// === Weights ===
	w := cfg.Weights
	if err := validateWeightsSum([]float64{w.Quality, w.Growth, w.Valuation, w.Technicals, w.Risk}, 1.0, weightEpsilon); err != nil {
		return ValidationError{"weights", err.Error()}
	}

	// === Output ===
	if cfg.Output.ConsoleTop < 1 {
		return ValidationError{"output.console_top", "must be >= 1"}
	}
	if cfg.Output.ExportTop < 1 {
		return ValidationError{"output.export_top", "must be >= 1"}
	}

	return nil
}

// CheckWarnings returns recommendation violations that do not stop the run
func CheckWarnings(cfg *Config) []Warning {
	var warnings []Warning

	used := []contracts.Metric{
		cfg.Categories.Quality.First, cfg.Categories.Quality.Second,
		contracts.MetricRevenueGrowth,
		cfg.Categories.Valuation.First, cfg.Categories.Valuation.Second,
		contracts.MetricMomentum,
		cfg.Categories.Risk.First, cfg.Categories.Risk.Second,
	}
	for _, m := range used {
		if _, ok := cfg.Spec(m); !ok {
			warnings = append(warnings, Warning{
				Code:    "METRIC_NOT_NORMALIZED",
				Message: fmt.Sprintf("%s is blended but missing from the metric table; it will always score %.0f", m, contracts.NeutralScore),
			})
		}
	}

	for _, spec := range cfg.Metrics {
		if spec.MinSectorSize < 3 {
			warnings = append(warnings, Warning{
				Code:    "SMALL_SECTOR_THRESHOLD",
				Message: fmt.Sprintf("%s min_sector_size=%d: sector percentiles will be noisy", spec.Metric, spec.MinSectorSize),
			})
		}
	}

	if cfg.Output.ExportTop < cfg.Output.ConsoleTop {
		warnings = append(warnings, Warning{
			Code:    "EXPORT_SMALLER_THAN_CONSOLE",
			Message: "output.export_top < output.console_top",
		})
	}

	return warnings
}

func validateWeightsSum(weights []float64, target float64, epsilon float64) error {
	if len(weights) == 0 {
		return errors.New("must not be empty")
	}
	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("weights must be >= 0, got %.4f", w)
		}
		sum += w
	}
	if math.Abs(sum-target) > epsilon {
		return fmt.Errorf("must sum to %.2f, got %.4f", target, sum)
	}
	return nil
}

package strategyconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equityrank/internal/contracts"
)

const strategyPath = "../../config/strategy/equity_rank_v1.yaml"

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Empty(t, CheckWarnings(cfg))
	assert.InDelta(t, 1.0, cfg.Weights.Sum(), 1e-9)
	assert.Len(t, cfg.Metrics, len(contracts.AllMetrics()))

	spec, ok := cfg.Spec(contracts.MetricForwardPE)
	require.True(t, ok)
	assert.False(t, spec.HigherIsBetter)
	assert.Equal(t, 5, spec.MinSectorSize)
}

func TestLoadShippedFileMatchesDefault(t *testing.T) {
	cfg, data, err := Load(strategyPath)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "equity_rank_v1", cfg.Meta.StrategyID)

	fileHash, err := Hash(cfg)
	require.NoError(t, err)
	defaultHash, err := Hash(Default())
	require.NoError(t, err)
	assert.Len(t, fileHash, 64)
	assert.Equal(t, defaultHash, fileHash)
}

func TestParseRejectsUnknownField(t *testing.T) {
	data, err := os.ReadFile(strategyPath)
	require.NoError(t, err)

	_, err = Parse(append(data, []byte("\nsurprise: true\n")...))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "equity_rank_v1", cfg.Meta.StrategyID)

	_, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"missing id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"no metrics", func(c *Config) { c.Metrics = nil }, "metrics"},
		{"unknown metric", func(c *Config) { c.Metrics[0].Metric = "ebitda_margin" }, "metrics[0].metric"},
		{"duplicate metric", func(c *Config) { c.Metrics[1].Metric = c.Metrics[0].Metric }, "metrics[1].metric"},
		{"zero sector size", func(c *Config) { c.Metrics[2].MinSectorSize = 0 }, "metrics[2].min_sector_size"},
		{"trend floor positive", func(c *Config) { c.Filter.TrendFloor = 0.1 }, "filter.trend_floor"},
		{"leverage max zero", func(c *Config) { c.Filter.LeverageMax = 0 }, "filter.leverage_max"},
		{"quality blend", func(c *Config) { c.Categories.Quality.FirstWeight = 0.7 }, "categories.quality"},
		{"negative blend weight", func(c *Config) {
			c.Categories.Risk.FirstWeight = -0.5
			c.Categories.Risk.SecondWeight = 1.5
		}, "categories.risk"},
		{"technicals blend", func(c *Config) { c.Categories.Technicals.TrendWeight = 0.5 }, "categories.technicals"},
		{"total weights", func(c *Config) { c.Weights.Risk = 0.2 }, "weights"},
		{"export top", func(c *Config) { c.Output.ExportTop = 0 }, "output.export_top"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCheckWarnings(t *testing.T) {
	cfg := Default()
	cfg.Metrics = cfg.Metrics[1:] // drop roic
	cfg.Metrics[0].MinSectorSize = 2

	codes := map[string]bool{}
	for _, w := range CheckWarnings(cfg) {
		codes[w.Code] = true
	}
	assert.True(t, codes["METRIC_NOT_NORMALIZED"])
	assert.True(t, codes["SMALL_SECTOR_THRESHOLD"])
}

func TestHashChangesWithWeights(t *testing.T) {
	a := Default()
	b := Default()
	b.Weights.Quality, b.Weights.Growth = 0.25, 0.25

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

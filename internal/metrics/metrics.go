// Package metrics holds the Prometheus collectors for ranking runs.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/equityrank/internal/contracts"
)

const namespace = "equityrank"

var (
	registry *prometheus.Registry
	once     sync.Once
)

var (
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Completed ranking runs by outcome",
	}, []string{"outcome"})

	ExportFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "export_failures_total",
		Help:      "Runs whose top-N artifact could not be written",
	})

	StageEntities = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stage_entities",
		Help:      "Entities leaving each stage in the last run",
	}, []string{"stage"})

	FallbackSectors = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fallback_sectors",
		Help:      "Sectors normalized against the whole universe in the last run",
	})

	LastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last run that produced a ranking",
	})

	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of a full pipeline run",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry registers every collector once
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			RunsTotal,
			ExportFailuresTotal,
			StageEntities,
			FallbackSectors,
			LastSuccess,
			RunDuration,
		)
	})
	return registry
}

// Handler serves the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(InitRegistry(), promhttp.HandlerOpts{})
}

// RunSummary is what the orchestrator reports after each run
type RunSummary struct {
	Outcome         contracts.Outcome
	StageCounts     map[string]int
	FallbackSectors int
	ExportFailed    bool
	Duration        time.Duration
	FinishedAt      time.Time
}

// RecordRun updates all run collectors from one summary
func RecordRun(s RunSummary) {
	RunsTotal.WithLabelValues(string(s.Outcome)).Inc()
	RunDuration.Observe(s.Duration.Seconds())
	FallbackSectors.Set(float64(s.FallbackSectors))

	for stage, n := range s.StageCounts {
		StageEntities.WithLabelValues(stage).Set(float64(n))
	}
	if s.ExportFailed {
		ExportFailuresTotal.Inc()
	}
	if s.Outcome == contracts.OutcomeRanked && !s.FinishedAt.IsZero() {
		LastSuccess.Set(float64(s.FinishedAt.Unix()))
	}
}

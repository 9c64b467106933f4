// Package metrics exposes Prometheus collectors for screening runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"StockRanker/internal/model"
)

// Metrics holds all Prometheus metrics of the screener.
type Metrics struct {
	RunsTotal          prometheus.Counter
	RunDuration        prometheus.Histogram
	SymbolsScored      prometheus.Gauge
	SymbolsUnavailable prometheus.Counter
	IndicatorFailures  *prometheus.CounterVec // labels: indicator, reason
	TopScore           prometheus.Gauge
	registry           *prometheus.Registry
}

// New creates and registers the collectors on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockranker_runs_total",
			Help: "Completed screening runs.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockranker_run_duration_seconds",
			Help:    "Wall time of a screening run.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		SymbolsScored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stockranker_symbols_scored",
			Help: "Symbols scored in the last run.",
		}),
		SymbolsUnavailable: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockranker_symbols_unavailable_total",
			Help: "Symbols excluded because their series could not be loaded.",
		}),
		IndicatorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockranker_indicator_failures_total",
			Help: "Indicator contributions dropped, by indicator and reason.",
		}, []string{"indicator", "reason"}),
		TopScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stockranker_top_score",
			Help: "Score of the best ranked symbol in the last run.",
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.RunsTotal, m.RunDuration, m.SymbolsScored,
		m.SymbolsUnavailable, m.IndicatorFailures, m.TopScore,
	)
	return m
}

// IndicatorFailed counts one dropped contribution.
func (m *Metrics) IndicatorFailed(_ string, err *model.IndicatorError) {
	m.IndicatorFailures.WithLabelValues(string(err.Indicator), err.Reason()).Inc()
}

// ObserveRun records the outcome of one run.
func (m *Metrics) ObserveRun(seconds float64, scored, unavailable int, top []model.RankEntry) {
	m.RunsTotal.Inc()
	m.RunDuration.Observe(seconds)
	m.SymbolsScored.Set(float64(scored))
	m.SymbolsUnavailable.Add(float64(unavailable))
	if len(top) > 0 {
		m.TopScore.Set(top[0].Score)
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/benvon/second-brain/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "second_brain"

// Metrics holds the Prometheus collectors for pattern analysis
type Metrics struct {
	registry         *prometheus.Registry
	runsTotal        *prometheus.CounterVec
	runDuration      prometheus.Histogram
	insightsTotal    *prometheus.CounterVec
	narrationsTotal  *prometheus.CounterVec
	lastRunTimestamp prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on registry.
// A nil registry gets a fresh one.
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pattern_runs_total",
			Help:      "Pattern analysis runs partitioned by final status.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "pattern_run_duration_seconds",
			Help:      "Wall time of pattern analysis runs.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		insightsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pattern_insights_total",
			Help:      "Theme insights produced partitioned by period.",
		}, []string{"period"}),
		narrationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "insight_narrations_total",
			Help:      "Insight narrations partitioned by outcome (generated or fallback).",
		}, []string{"outcome"}),
		lastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pattern_last_completed_run_timestamp_seconds",
			Help:      "Unix time of the last completed pattern analysis run.",
		}),
	}

	for _, c := range []prometheus.Collector{m.runsTotal, m.runDuration, m.insightsTotal, m.narrationsTotal, m.lastRunTimestamp} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

// ObserveRun records a finished analysis run
func (m *Metrics) ObserveRun(status models.RunStatus, duration time.Duration, insights []models.ThemeInsight) {
	m.runsTotal.WithLabelValues(string(status)).Inc()
	m.runDuration.Observe(duration.Seconds())
	for _, in := range insights {
		m.insightsTotal.WithLabelValues(string(in.Period)).Inc()
	}
	if status == models.RunStatusCompleted {
		m.lastRunTimestamp.SetToCurrentTime()
	}
}

// ObserveNarration records whether a narration used the template fallback
func (m *Metrics) ObserveNarration(fallback bool) {
	outcome := "generated"
	if fallback {
		outcome = "fallback"
	}
	m.narrationsTotal.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

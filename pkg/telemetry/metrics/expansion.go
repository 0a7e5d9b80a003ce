package metrics

import (
	"alice-hq/hassil-parser/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ExpansionMetrics tracks per-unit expansion outcomes.
//
// Metrics:
//   - hassil_units_total: units that produced patterns, by path
//   - hassil_fallbacks_total: external engine fallbacks, by cause
//   - hassil_units_dropped_total: units without a row, by reason
//   - hassil_patterns_per_unit: patterns kept per unit
type ExpansionMetrics struct {
	unitsTotal      *prometheus.CounterVec
	fallbacksTotal  *prometheus.CounterVec
	droppedTotal    *prometheus.CounterVec
	patternsPerUnit prometheus.Histogram
}

// NewExpansionMetrics creates and registers expansion metrics with the provided registry.
func NewExpansionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ExpansionMetrics {
	em := &ExpansionMetrics{
		unitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "units_total",
				Help:      "Intents expanded to at least one pattern, by expansion path",
			},
			[]string{"path"},
		),

		fallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "fallbacks_total",
				Help:      "Fallbacks from the external engine to custom expansion, by cause",
			},
			[]string{"cause"},
		),

		droppedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "units_dropped_total",
				Help:      "Intents that produced no output row, by reason",
			},
			[]string{"reason"},
		),

		patternsPerUnit: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "patterns_per_unit",
				Help:      "Number of patterns kept per intent",
				Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200},
			},
		),
	}

	registry.MustRegister(
		em.unitsTotal,
		em.fallbacksTotal,
		em.droppedTotal,
		em.patternsPerUnit,
	)

	return em
}

package metrics

import (
	"alice-hq/hassil-parser/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics tracks sync runs and their side effects.
type SyncMetrics struct {
	runsTotal    *prometheus.CounterVec
	duration     prometheus.Histogram
	upsertsTotal *prometheus.CounterVec
	eventsTotal  *prometheus.CounterVec
}

// NewSyncMetrics creates and registers sync metrics with the provided registry.
func NewSyncMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SyncMetrics {
	sm := &SyncMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "sync_runs_total",
				Help:      "Sync runs, by final status",
			},
			[]string{"status"},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "sync_duration_seconds",
				Help:      "Duration of sync runs in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
		),

		upsertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "upserts_total",
				Help:      "Template rows written to storage, by result",
			},
			[]string{"result"},
		),

		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "events_published_total",
				Help:      "templates_updated publications, by status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		sm.runsTotal,
		sm.duration,
		sm.upsertsTotal,
		sm.eventsTotal,
	)

	return sm
}

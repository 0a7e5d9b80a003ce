package metrics

import (
	"time"

	"alice-hq/hassil-parser/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every Prometheus metric of hassil-parser. It implements
// orchestrator.Recorder for per-unit expansion outcomes and records sync,
// storage and publication results for the sync pipeline.
//
// All methods are no-ops when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	expansion *ExpansionMetrics
	sync      *SyncMetrics
}

// NewCollector creates a collector and registers its metrics with registry.
// If registry is nil, a fresh registry is used.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "hassil"}
//	collector := metrics.NewCollector(cfg, nil)
//	orch := orchestrator.New(orchestrator.Options{Recorder: collector})
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:    cfg,
		registry:  registry,
		expansion: NewExpansionMetrics(cfg, registry),
		sync:      NewSyncMetrics(cfg, registry),
	}
}

// Registry returns the registry the collector's metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordUnit records a unit that produced patterns on path.
func (c *Collector) RecordUnit(path string, patterns int) {
	if !c.config.Enabled {
		return
	}
	c.expansion.unitsTotal.WithLabelValues(path).Inc()
	c.expansion.patternsPerUnit.Observe(float64(patterns))
}

// RecordFallback records a switch from the external engine to the custom
// expander ("error", "empty" or "document").
func (c *Collector) RecordFallback(cause string) {
	if !c.config.Enabled {
		return
	}
	c.expansion.fallbacksTotal.WithLabelValues(cause).Inc()
}

// RecordDropped records a unit that produced no row.
func (c *Collector) RecordDropped(reason string) {
	if !c.config.Enabled {
		return
	}
	c.expansion.droppedTotal.WithLabelValues(reason).Inc()
}

// RecordSync records a finished sync run. status is "success",
// "fetch_error" or "storage_error".
func (c *Collector) RecordSync(status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.sync.runsTotal.WithLabelValues(status).Inc()
	c.sync.duration.Observe(duration.Seconds())
}

// RecordUpsert records the outcome counts of one store upsert.
func (c *Collector) RecordUpsert(inserted, updated, skipped int) {
	if !c.config.Enabled {
		return
	}
	c.sync.upsertsTotal.WithLabelValues("inserted").Add(float64(inserted))
	c.sync.upsertsTotal.WithLabelValues("updated").Add(float64(updated))
	c.sync.upsertsTotal.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordPublish records an event publication attempt ("success" or "error").
func (c *Collector) RecordPublish(status string) {
	if !c.config.Enabled {
		return
	}
	c.sync.eventsTotal.WithLabelValues(status).Inc()
}

// Package metrics provides Prometheus metrics for hassil-parser.
//
// # Metrics
//
//   - units_total{path}: intents expanded by the external engine or the custom expander
//   - fallbacks_total{cause}: external engine fallbacks (error, empty, document)
//   - units_dropped_total{reason}: intents that produced no row
//   - patterns_per_unit: histogram of patterns kept per intent
//   - sync_runs_total{status}, sync_duration_seconds
//   - upserts_total{result}: inserted, updated, skipped rows
//   - events_published_total{status}
//
// Every name carries the configured namespace prefix (default "hassil").
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	orch := orchestrator.New(orchestrator.Options{Recorder: collector})
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
package metrics

// Package telemetry groups the observability packages of hassil-parser.
//
//   - logging: the process slog logger with run, domain and intent context
//   - metrics: Prometheus collector for expansion and sync outcomes
//   - tracing: OpenTelemetry OTLP export for sync runs and unit expansion
//   - health: the /health endpoint and inbox check
package telemetry

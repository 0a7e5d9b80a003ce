// Package tracing configures OpenTelemetry tracing for hassil-parser.
//
// Spans are exported over OTLP gRPC. A sync run produces one "sync.run"
// span, one "sync.domain" span per domain document, and one
// "orchestrator.expand" span per intent, each carrying the hassil.*
// attributes defined in this package.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
// When tracing is disabled the global provider stays the otel noop
// provider and spans cost next to nothing.
package tracing

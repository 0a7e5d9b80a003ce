package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"alice-hq/hassil-parser/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.TracingConfig
		enabled bool
		wantErr bool
	}{
		{name: "nil config", wantErr: true},
		{name: "disabled", config: &config.TracingConfig{Enabled: false}},
		{
			name: "otlp",
			config: &config.TracingConfig{
				Enabled:     true,
				Endpoint:    "localhost:4317",
				ServiceName: "test-service",
				Sampler:     SamplerAlways,
				Insecure:    true,
			},
			enabled: true,
		},
		{
			name: "bad sampler",
			config: &config.TracingConfig{
				Enabled:  true,
				Endpoint: "localhost:4317",
				Sampler:  "sometimes",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := otel.GetTracerProvider()
			t.Cleanup(func() { otel.SetTracerProvider(prev) })

			tracer, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tracer.Enabled() != tt.enabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.enabled)
			}
			if err := tracer.Shutdown(context.Background()); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestNewWithExporter_RecordsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(&config.TracingConfig{
		Enabled:     true,
		ServiceName: "test-service",
		Sampler:     SamplerAlways,
	}, exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}

	ctx, span := tracer.Start(context.Background(), "sync.run")
	if TraceID(ctx) == "" {
		t.Error("expected a trace ID in the span context")
	}
	span.SetAttributes(DomainKey.String("light"))
	SetStatus(span, errors.New("boom"))
	span.End()

	// Components use the global provider.
	_, child := otel.Tracer("other").Start(ctx, "orchestrator.expand")
	child.End()

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("exported %d spans, want 2", len(spans))
	}
	if spans[0].Name != "sync.run" || spans[0].Status.Code != codes.Error {
		t.Errorf("unexpected first span %q with status %v", spans[0].Name, spans[0].Status.Code)
	}
	if spans[1].Parent.SpanID() != spans[0].SpanContext.SpanID() {
		t.Error("child span not parented to sync.run")
	}
}

func TestTraceID_NoSpan(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID() = %q, want empty", got)
	}
}

func TestHTTPMiddleware(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	tracer, err := NewWithExporter(&config.TracingConfig{Sampler: SamplerAlways}, tracetest.NewInMemoryExporter())
	if err != nil {
		t.Fatal(err)
	}
	defer tracer.Shutdown(context.Background())

	var got string
	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = TraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/intents/sync", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace ID in handler = %q", got)
	}
	if h := rec.Header().Get("X-Trace-ID"); h != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("X-Trace-ID = %q", h)
	}
}

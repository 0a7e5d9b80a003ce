package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for sync run IDs.
	RunIDKey contextKey = "run_id"

	// DomainKey is the context key for the intent domain being expanded.
	DomainKey contextKey = "domain"

	// IntentKey is the context key for the intent being expanded.
	IntentKey contextKey = "intent"
)

// WithRunID adds a sync run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the sync run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithDomain adds a domain to the context.
func WithDomain(ctx context.Context, domain string) context.Context {
	return context.WithValue(ctx, DomainKey, domain)
}

// GetDomain retrieves the domain from the context.
func GetDomain(ctx context.Context) string {
	if domain, ok := ctx.Value(DomainKey).(string); ok {
		return domain
	}
	return ""
}

// WithIntent adds an intent name to the context.
func WithIntent(ctx context.Context, intent string) context.Context {
	return context.WithValue(ctx, IntentKey, intent)
}

// GetIntent retrieves the intent name from the context.
func GetIntent(ctx context.Context) string {
	if intent, ok := ctx.Value(IntentKey).(string); ok {
		return intent
	}
	return ""
}

func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if v := GetRunID(ctx); v != "" {
		attrs = append(attrs, slog.String(string(RunIDKey), v))
	}
	if v := GetDomain(ctx); v != "" {
		attrs = append(attrs, slog.String(string(DomainKey), v))
	}
	if v := GetIntent(ctx); v != "" {
		attrs = append(attrs, slog.String(string(IntentKey), v))
	}
	return attrs
}

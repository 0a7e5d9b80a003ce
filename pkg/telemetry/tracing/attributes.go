package tracing

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys.
const (
	RunIDKey     = attribute.Key("hassil.run_id")
	DomainKey    = attribute.Key("hassil.domain")
	IntentKey    = attribute.Key("hassil.intent")
	SentencesKey = attribute.Key("hassil.sentences")
	PathKey      = attribute.Key("hassil.path")
	PatternsKey  = attribute.Key("hassil.patterns")
	UnitsKey     = attribute.Key("hassil.units")
)

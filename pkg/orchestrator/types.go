package orchestrator

import (
	"log/slog"

	"alice-hq/hassil-parser/pkg/expand"
	"alice-hq/hassil-parser/pkg/grammar"
)

// Path identifies the engine that produced a result.
type Path string

const (
	PathExternal Path = "external"
	PathCustom   Path = "custom"
	PathNone     Path = "" // Both paths came up empty; the unit is dropped
)

// Fallback causes, as reported to the Recorder.
const (
	CauseError    = "error"
	CauseEmpty    = "empty"
	CauseDocument = "document"
)

// Drop reasons, as reported to the Recorder.
const (
	ReasonNoSentences = "no_sentences"
	ReasonEmpty       = "empty"
)

// Unit is one intent to expand.
type Unit struct {
	Domain    string
	Intent    string
	Sentences []string
	Rules     grammar.Rules // Local rules overriding the shared ones
}

// Result is the expansion of one unit.
type Result struct {
	Patterns []string
	Path     Path
	Fallback string // Cause of a fallback to the custom path, if any
}

// Dropped reports whether the unit produced no patterns.
func (r Result) Dropped() bool {
	return len(r.Patterns) == 0
}

// Recorder receives per-unit outcomes. The telemetry metrics collector
// implements it.
type Recorder interface {
	RecordUnit(path string, patterns int)
	RecordFallback(cause string)
	RecordDropped(reason string)
}

type nopRecorder struct{}

func (nopRecorder) RecordUnit(string, int) {}
func (nopRecorder) RecordFallback(string) {}
func (nopRecorder) RecordDropped(string) {}

// Options configures an Orchestrator.
type Options struct {
	// External enables the sampler path. It is resolved once at startup.
	External bool

	// ExternalOnly disables the fallback: units the sampler rejects or
	// leaves empty are dropped, and a document whose rules do not compile
	// fails the session. Implies External.
	ExternalOnly bool

	// MaxPatterns caps every unit's result (default: 50).
	MaxPatterns int

	// MaxRuleDepth bounds rule nesting and template nesting on both paths
	// (default: 32).
	MaxRuleDepth int

	// ExplosionFactor bounds the candidates of one sentence on both paths
	// to this multiple of MaxPatterns (default: 10).
	ExplosionFactor int

	Logger   *slog.Logger
	Recorder Recorder
}

func (o *Options) applyDefaults() {
	if o.ExternalOnly {
		o.External = true
	}
	if o.MaxPatterns <= 0 {
		o.MaxPatterns = 50
	}
	if o.MaxRuleDepth <= 0 {
		o.MaxRuleDepth = expand.DefaultMaxRuleDepth
	}
	if o.ExplosionFactor <= 0 {
		o.ExplosionFactor = expand.DefaultExplosionFactor
	}
	if o.Logger == nil {
		o.Logger = slog.Default().With("component", "orchestrator")
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
}

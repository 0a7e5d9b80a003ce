package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"alice-hq/hassil-parser/pkg/expand"
	"alice-hq/hassil-parser/pkg/grammar"
	"alice-hq/hassil-parser/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Orchestrator holds the run-wide expansion settings. It is safe for
// concurrent use; sessions for different documents may run in parallel.
type Orchestrator struct {
	opts   Options
	engine *expand.Engine
	tracer trace.Tracer
}

// New creates an orchestrator.
func New(opts Options) *Orchestrator {
	opts.applyDefaults()
	return &Orchestrator{
		opts: opts,
		engine: expand.New(
			expand.WithLogger(opts.Logger),
			expand.WithExplosionFactor(opts.ExplosionFactor),
			expand.WithMaxRuleDepth(opts.MaxRuleDepth),
		),
		tracer: otel.Tracer("hassil-parser/orchestrator"),
	}
}

// MaxPatterns returns the per-unit pattern cap.
func (o *Orchestrator) MaxPatterns() int {
	return o.opts.MaxPatterns
}

// Session expands the units of one document.
type Session struct {
	o       *Orchestrator
	table   grammar.Table // Custom-path alternatives of the shared rules
	adapter *Adapter      // Nil when the sampler is disabled or failed
	err     error         // Document compile failure in ExternalOnly mode
	logger  *slog.Logger
}

// NewSession binds the shared rules of a document. When the sampler is
// enabled it compiles them once; a failure switches the whole document
// to the custom path, or fails the session in ExternalOnly mode.
func (o *Orchestrator) NewSession(domain string, shared grammar.Rules) *Session {
	logger := o.opts.Logger.With("domain", domain)
	s := &Session{
		o:      o,
		table:  shared.Alternatives(logger),
		logger: logger,
	}

	if o.opts.External {
		adapter, err := NewAdapter(shared, o.opts.MaxRuleDepth, o.opts.ExplosionFactor, logger)
		switch {
		case err != nil && o.opts.ExternalOnly:
			s.err = fmt.Errorf("external engine rejected document rules: %w", err)
		case err != nil:
			logger.Warn("external engine unavailable for document, using custom expansion",
				"cause", CauseDocument, "error", err)
		default:
			s.adapter = adapter
		}
	}
	return s
}

// Err returns the document compile error of an ExternalOnly session.
// Expand fails with it for every unit.
func (s *Session) Err() error {
	return s.err
}

// External reports whether units of this session try the sampler first.
func (s *Session) External() bool {
	return s.adapter != nil
}

// Expand runs one unit through the fallback state machine. The returned
// error is non-nil only when ctx is done or the session failed.
func (s *Session) Expand(ctx context.Context, unit Unit) (Result, error) {
	if s.err != nil {
		return Result{}, s.err
	}

	ctx, span := s.o.tracer.Start(ctx, "orchestrator.expand", trace.WithAttributes(
		tracing.DomainKey.String(unit.Domain),
		tracing.IntentKey.String(unit.Intent),
		tracing.SentencesKey.Int(len(unit.Sentences)),
	))
	defer span.End()

	logger := s.logger.With("intent", unit.Intent)
	limit := s.o.opts.MaxPatterns
	rec := s.o.opts.Recorder

	if len(unit.Sentences) == 0 {
		logger.WarnContext(ctx, "intent has no sentences, skipping")
		rec.RecordDropped(ReasonNoSentences)
		return Result{}, nil
	}

	var result Result
	switch {
	case s.adapter != nil:
		patterns, err := s.adapter.Expand(ctx, unit.Sentences, unit.Rules, limit)
		switch {
		case ctx.Err() != nil:
			return Result{}, ctx.Err()
		case err != nil && s.o.opts.ExternalOnly:
			logger.WarnContext(ctx, "external expansion failed", "error", err)
		case err != nil:
			logger.WarnContext(ctx, "external expansion failed, falling back to custom expansion",
				"cause", CauseError, "error", err)
			result.Fallback = CauseError
		case len(patterns) == 0 && s.o.opts.ExternalOnly:
			// Dropped below.
		case len(patterns) == 0:
			logger.WarnContext(ctx, "external expansion produced no patterns, falling back to custom expansion",
				"cause", CauseEmpty)
			result.Fallback = CauseEmpty
		default:
			result = Result{Patterns: patterns, Path: PathExternal}
		}
	case s.o.opts.External:
		result.Fallback = CauseDocument
	}

	if result.Path == PathNone && !s.o.opts.ExternalOnly {
		if result.Fallback != "" {
			rec.RecordFallback(result.Fallback)
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		result.Patterns = s.o.engine.ExpandSentences(unit.Sentences, s.rules(unit, logger), limit)
		result.Path = PathCustom
	}

	span.SetAttributes(
		tracing.PathKey.String(string(result.Path)),
		tracing.PatternsKey.Int(len(result.Patterns)),
	)

	if result.Dropped() {
		logger.WarnContext(ctx, "intent expanded to 0 patterns, skipping", "sentences", len(unit.Sentences))
		rec.RecordDropped(ReasonEmpty)
		return Result{Fallback: result.Fallback}, nil
	}

	rec.RecordUnit(string(result.Path), len(result.Patterns))
	logger.DebugContext(ctx, "expanded intent",
		"path", result.Path, "sentences", len(unit.Sentences), "patterns", len(result.Patterns))
	return result, nil
}

// rules returns the custom-path rule table of a unit: the shared
// alternatives overridden by the unit's own.
func (s *Session) rules(unit Unit, logger *slog.Logger) grammar.Table {
	if len(unit.Rules) == 0 {
		return s.table
	}
	return grammar.Override(s.table, unit.Rules.Alternatives(logger))
}

// ExpandCustom runs a unit through the custom expander only. It is the
// reference the external path falls back to.
func (s *Session) ExpandCustom(unit Unit) []string {
	return s.o.engine.ExpandSentences(unit.Sentences, s.rules(unit, s.logger), s.o.opts.MaxPatterns)
}

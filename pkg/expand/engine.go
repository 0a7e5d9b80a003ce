package expand

import (
	"log/slog"

	"alice-hq/hassil-parser/pkg/grammar"
	"alice-hq/hassil-parser/pkg/template/ast"
	"alice-hq/hassil-parser/pkg/template/parser"
)

const (
	// DefaultExplosionFactor bounds the un-deduplicated candidates of one
	// template to this multiple of the pattern cap.
	DefaultExplosionFactor = 10

	// DefaultMaxRuleDepth bounds how deeply rule references may nest.
	DefaultMaxRuleDepth = 32
)

// Engine expands sentence templates. It holds no per-call state and is
// safe for concurrent use.
type Engine struct {
	logger          *slog.Logger
	explosionFactor int
	maxRuleDepth    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger receiving expansion warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithExplosionFactor sets the explosion guard multiplier.
func WithExplosionFactor(factor int) Option {
	return func(e *Engine) {
		if factor > 0 {
			e.explosionFactor = factor
		}
	}
}

// WithMaxRuleDepth sets the maximum rule nesting depth.
func WithMaxRuleDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxRuleDepth = depth
		}
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:          slog.Default().With("component", "expand"),
		explosionFactor: DefaultExplosionFactor,
		maxRuleDepth:    DefaultMaxRuleDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExpandTemplate expands one template into at most limit distinct
// patterns, in expansion order.
func (e *Engine) ExpandTemplate(template string, rules grammar.Table, limit int) []string {
	c := NewCollector(limit)
	e.expandInto(c, template, rules, limit)
	return c.Patterns()
}

// ExpandSentences expands every sentence in order into one shared result,
// stopping as soon as limit patterns have been collected.
func (e *Engine) ExpandSentences(sentences []string, rules grammar.Table, limit int) []string {
	shared := NewCollector(limit)
	for _, sentence := range sentences {
		if shared.Full() {
			break
		}
		for _, p := range e.ExpandTemplate(sentence, rules, limit) {
			shared.Add(p)
			if shared.Full() {
				break
			}
		}
	}
	return shared.Patterns()
}

func (e *Engine) expandInto(c *Collector, template string, rules grammar.Table, limit int) {
	if c.Full() {
		return
	}

	x := &expansion{
		engine: e,
		rules:  rules,
		parsed: make(map[string][]ast.Sequence),
		warned: make(map[string]bool),
		logger: e.logger.With("template", template),
	}

	budget := e.explosionFactor * max(limit, 0)
	candidates := 0

	for resolved := range x.resolved(parser.Parse(template)) {
		for alt := range alternations(resolved) {
			for tree := range optionals(alt) {
				text, stripped := StripRuleTokens(tree.Render())
				if stripped {
					x.warn("stray", "removed rule token formed during expansion")
				}
				c.Add(text)
				candidates++

				if c.Full() {
					return
				}
				if candidates > budget {
					x.logger.Debug("explosion guard reached, truncating expansion",
						"candidates", candidates, "patterns", c.Len())
					return
				}
			}
		}
	}
}

// expansion is the state of one ExpandTemplate call.
type expansion struct {
	engine *Engine
	rules  grammar.Table
	parsed map[string][]ast.Sequence
	warned map[string]bool
	logger *slog.Logger
}

// warn logs msg once per key and call.
func (x *expansion) warn(key, msg string, args ...any) {
	if x.warned[key] {
		return
	}
	x.warned[key] = true
	x.logger.Warn(msg, args...)
}

// ExpandTemplate expands one template with a default engine.
func ExpandTemplate(template string, rules grammar.Table, limit int) []string {
	return New().ExpandTemplate(template, rules, limit)
}

// ExpandSentences expands sentences with a default engine.
func ExpandSentences(sentences []string, rules grammar.Table, limit int) []string {
	return New().ExpandSentences(sentences, rules, limit)
}

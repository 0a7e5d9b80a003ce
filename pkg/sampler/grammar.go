package sampler

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"alice-hq/hassil-parser/pkg/grammar"
	"alice-hq/hassil-parser/pkg/template/ast"
	tmplErrors "alice-hq/hassil-parser/pkg/template/errors"
	"alice-hq/hassil-parser/pkg/template/parser"
)

// Grammar is a compiled, acyclic rule set. It is immutable and safe for
// concurrent use.
type Grammar struct {
	rules    map[string]ast.Sequence
	maxDepth int
}

// Option configures compilation.
type Option func(*Grammar)

// WithMaxDepth sets the maximum nesting depth accepted by the parser.
func WithMaxDepth(depth int) Option {
	return func(g *Grammar) {
		if depth > 0 {
			g.maxDepth = depth
		}
	}
}

// Compile parses every rule strictly and rejects rule cycles. All parse
// errors are reported together.
func Compile(rules grammar.Canonical, opts ...Option) (*Grammar, error) {
	g := &Grammar{
		rules:    make(map[string]ast.Sequence, len(rules)),
		maxDepth: 32,
	}
	for _, opt := range opts {
		opt(g)
	}

	if err := g.add(rules); err != nil {
		return nil, err
	}
	return g, nil
}

// Extend returns a grammar with local rules overriding the receiver's.
// The receiver is not modified.
func (g *Grammar) Extend(local grammar.Canonical) (*Grammar, error) {
	if len(local) == 0 {
		return g, nil
	}

	ext := &Grammar{
		rules:    maps.Clone(g.rules),
		maxDepth: g.maxDepth,
	}
	if err := ext.add(local); err != nil {
		return nil, err
	}
	return ext, nil
}

// Rules returns the compiled rule names in sorted order.
func (g *Grammar) Rules() []string {
	return slices.Sorted(maps.Keys(g.rules))
}

func (g *Grammar) add(rules grammar.Canonical) error {
	errs := tmplErrors.NewErrorList()

	for _, name := range rules.Names() {
		p := parser.NewParser().WithStrictMode(true).WithMaxDepth(g.maxDepth).WithOrigin("<" + name + ">")
		seq, err := p.Parse(rules[name])
		if err != nil {
			errs.Add(err)
			continue
		}
		g.rules[name] = seq
	}
	if err := errs.ToError(); err != nil {
		return err
	}

	return g.checkCycles()
}

// checkCycles walks the reference graph depth-first. References to
// undefined rules are not an error here; they fail when sampled.
func (g *Grammar) checkCycles() error {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(g.rules))
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case active:
			start := slices.Index(stack, name)
			chain := append(slices.Clone(stack[start:]), name)
			return &tmplErrors.Error{
				Type:    tmplErrors.ErrorTypeCycle,
				Message: fmt.Sprintf("Rule cycle: <%s>", strings.Join(chain, "> -> <")),
			}
		case done:
			return nil
		}

		seq, ok := g.rules[name]
		if !ok {
			return nil
		}

		state[name] = active
		stack = append(stack, name)
		for _, ref := range seq.Rules() {
			if err := visit(ref); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return nil
	}

	for _, name := range g.Rules() {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// checkReferences reports the first reference reachable from seq that has
// no rule.
func (g *Grammar) checkReferences(seq ast.Sequence) error {
	seen := make(map[string]bool)
	pending := seq.Rules()

	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]
		if seen[name] {
			continue
		}
		seen[name] = true

		body, ok := g.rules[name]
		if !ok {
			return &tmplErrors.Error{
				Type:       tmplErrors.ErrorTypeReference,
				Message:    fmt.Sprintf("Unknown rule <%s>", name),
				Location:   referenceLocation(seq, name),
				Suggestion: tmplErrors.SuggestRuleName(name, g.Rules()),
			}
		}
		pending = append(pending, body.Rules()...)
	}
	return nil
}

// referenceLocation returns where seq references name, if it does directly.
func referenceLocation(seq ast.Sequence, name string) ast.Location {
	var loc ast.Location
	ast.Inspect(seq, func(n ast.Node) bool {
		if n.Type == ast.NodeRule && n.Value == name {
			loc = n.Location
			return false
		}
		return true
	})
	return loc
}

package sampler

import (
	"context"
	"iter"
	"slices"

	"alice-hq/hassil-parser/pkg/template/ast"
	"alice-hq/hassil-parser/pkg/template/parser"
)

// Sample enumerates the sentences a template produces, in document order:
// alternation branches left to right, optional spans with their content
// before without it. Slots are kept as "{name}". Whitespace is returned
// as produced; callers normalize.
//
// A parse or reference error is yielded once, before any sentence. If ctx
// is cancelled the iteration yields ctx.Err() and stops.
func (g *Grammar) Sample(ctx context.Context, template string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		seq, err := parser.NewParser().WithStrictMode(true).WithMaxDepth(g.maxDepth).Parse(template)
		if err == nil {
			err = g.checkReferences(seq)
		}
		if err != nil {
			yield("", err)
			return
		}

		w := &walker{rules: g.rules, ctx: ctx, yield: yield}
		w.walk(seq, "")
	}
}

// Validate parses a template and checks its references without sampling.
func (g *Grammar) Validate(template string) error {
	seq, err := parser.NewParser().WithStrictMode(true).WithMaxDepth(g.maxDepth).Parse(template)
	if err != nil {
		return err
	}
	return g.checkReferences(seq)
}

type walker struct {
	rules map[string]ast.Sequence
	ctx   context.Context
	yield func(string, error) bool
}

// walk expands nodes after prefix in continuation-passing style. It
// returns false once the consumer stops or the context is done.
func (w *walker) walk(nodes ast.Sequence, prefix string) bool {
	for len(nodes) > 0 {
		n := nodes[0]
		switch n.Type {
		case ast.NodeText:
			prefix += n.Value
		case ast.NodeSlot:
			prefix += "{" + n.Value + "}"
		case ast.NodeRule:
			return w.walk(concat(w.rules[n.Value], nodes[1:]), prefix)
		case ast.NodeAlternation:
			for _, branch := range n.Branches {
				if !w.walk(concat(branch, nodes[1:]), prefix) {
					return false
				}
			}
			return true
		case ast.NodeOptional:
			for _, branch := range n.Branches {
				if !w.walk(concat(branch, nodes[1:]), prefix) {
					return false
				}
			}
			return w.walk(nodes[1:], prefix)
		}
		nodes = nodes[1:]
	}

	if err := w.ctx.Err(); err != nil {
		w.yield("", err)
		return false
	}
	return w.yield(prefix, nil)
}

func concat(a, b ast.Sequence) ast.Sequence {
	if len(a) == 0 {
		return b
	}
	return slices.Concat(a, b)
}

package expand

import (
	"iter"
	"slices"
	"strings"
	"unicode"

	"alice-hq/hassil-parser/pkg/template/ast"
	"alice-hq/hassil-parser/pkg/template/parser"
)

// step addresses one node on the way down a tree: the node index within
// its sequence and, for every step but the last, the branch to enter.
type step struct {
	node   int
	branch int
}

// locate returns the path to the first node in document order that
// satisfies match, or nil.
func locate(s ast.Sequence, match func(ast.Node) bool) []step {
	for i, n := range s {
		if match(n) {
			return []step{{node: i, branch: -1}}
		}
		for b, branch := range n.Branches {
			if path := locate(branch, match); path != nil {
				return append([]step{{node: i, branch: b}}, path...)
			}
		}
	}
	return nil
}

// spliceAt returns a copy of s with the node at path replaced by repl.
// Only the sequences along the path are copied.
func spliceAt(s ast.Sequence, path []step, repl ast.Sequence) ast.Sequence {
	at := path[0]
	if len(path) == 1 {
		return ast.Splice(s, at.node, repl)
	}
	n := s[at.node]
	inner := spliceAt(n.Branches[at.branch], path[1:], repl)
	return ast.Replace(s, at.node, ast.WithBranch(n, at.branch, inner))
}

// nodeAt returns the node addressed by path.
func nodeAt(s ast.Sequence, path []step) ast.Node {
	for len(path) > 1 {
		s = s[path[0].node].Branches[path[0].branch]
		path = path[1:]
	}
	return s[path[0].node]
}

func isRule(n ast.Node) bool {
	return n.Type == ast.NodeRule
}

func innermost(t ast.NodeType) func(ast.Node) bool {
	return func(n ast.Node) bool {
		if n.Type != t {
			return false
		}
		for _, b := range n.Branches {
			if b.Has(t) {
				return false
			}
		}
		return true
	}
}

var (
	innermostAlternation = innermost(ast.NodeAlternation)
	innermostOptional    = innermost(ast.NodeOptional)
)

// resolved yields every tree obtained by resolving all rule references,
// depth-first, one branch per alternative per reference.
func (x *expansion) resolved(s ast.Sequence) iter.Seq[ast.Sequence] {
	return func(yield func(ast.Sequence) bool) {
		x.resolve(s, yield)
	}
}

func (x *expansion) resolve(s ast.Sequence, yield func(ast.Sequence) bool) bool {
	path := locate(s, isRule)
	if path == nil {
		return yield(s)
	}

	ref := nodeAt(s, path)
	for _, alt := range x.alternatives(ref) {
		if !x.resolve(spliceAt(s, path, alt), yield) {
			return false
		}
	}
	return true
}

// alternatives returns the parsed alternatives a reference resolves to.
// Nested references are stamped with the chain of rules that produced
// them, so a rule reached again through its own expansion is detected.
func (x *expansion) alternatives(ref ast.Node) []ast.Sequence {
	name := ref.Value

	switch {
	case slices.Contains(ref.Origin, name):
		x.warn("cycle:"+name, "rule references itself, resolving to empty",
			"rule", name, "chain", strings.Join(append(slices.Clone(ref.Origin), name), " -> "))
		return empty
	case len(ref.Origin) >= x.engine.maxRuleDepth:
		x.warn("depth:"+name, "rule nesting too deep, resolving to empty",
			"rule", name, "depth", len(ref.Origin))
		return empty
	}

	alts, ok := x.parsed[name]
	if !ok {
		texts, found := x.rules.Lookup(name)
		if !found || len(texts) == 0 {
			x.warn("missing:"+name, "expansion rule not found, removing from template", "rule", name)
			alts = empty
		} else {
			alts = make([]ast.Sequence, len(texts))
			for i, text := range texts {
				alts[i] = parser.Parse(text)
			}
		}
		x.parsed[name] = alts
	}

	origin := append(slices.Clone(ref.Origin), name)
	out := make([]ast.Sequence, len(alts))
	for i, alt := range alts {
		out[i] = withOrigin(alt, origin)
	}
	return out
}

// empty is the single empty alternative of an unresolvable reference.
var empty = []ast.Sequence{nil}

// withOrigin returns a copy of s whose rule references carry origin.
func withOrigin(s ast.Sequence, origin []string) ast.Sequence {
	if len(s) == 0 {
		return s
	}
	out := make(ast.Sequence, len(s))
	for i, n := range s {
		switch {
		case n.Type == ast.NodeRule:
			n.Origin = origin
		case len(n.Branches) > 0:
			branches := make([]ast.Sequence, len(n.Branches))
			for b, branch := range n.Branches {
				branches[b] = withOrigin(branch, origin)
			}
			n.Branches = branches
		}
		out[i] = n
	}
	return out
}

// alternations yields every tree obtained by expanding all alternation
// groups, innermost first.
func alternations(s ast.Sequence) iter.Seq[ast.Sequence] {
	return func(yield func(ast.Sequence) bool) {
		expandAlternations(s, yield)
	}
}

func expandAlternations(s ast.Sequence, yield func(ast.Sequence) bool) bool {
	path := locate(s, innermostAlternation)
	if path == nil {
		return yield(s)
	}

	group := nodeAt(s, path)
	for _, branch := range group.Branches {
		if !expandAlternations(spliceAt(s, path, trimBranch(branch)), yield) {
			return false
		}
	}
	return true
}

// trimBranch strips leading and trailing whitespace from a branch.
func trimBranch(b ast.Sequence) ast.Sequence {
	if len(b) == 0 {
		return b
	}
	out := slices.Clone(b)
	if first := &out[0]; first.Type == ast.NodeText {
		first.Value = strings.TrimLeftFunc(first.Value, unicode.IsSpace)
	}
	if last := &out[len(out)-1]; last.Type == ast.NodeText {
		last.Value = strings.TrimRightFunc(last.Value, unicode.IsSpace)
	}
	return ast.Merge(out)
}

// optionals yields every tree obtained by expanding all optional spans,
// innermost first, the kept variant before the removed one.
func optionals(s ast.Sequence) iter.Seq[ast.Sequence] {
	return func(yield func(ast.Sequence) bool) {
		expandOptionals(s, yield)
	}
}

func expandOptionals(s ast.Sequence, yield func(ast.Sequence) bool) bool {
	path := locate(s, innermostOptional)
	if path == nil {
		return yield(s)
	}

	span := nodeAt(s, path)
	for _, branch := range span.Branches {
		if !expandOptionals(spliceAt(s, path, branch), yield) {
			return false
		}
	}
	return expandOptionals(spliceAt(s, path, nil), yield)
}

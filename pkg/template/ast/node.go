package ast

import "strings"

// NodeType is the kind of a template node.
type NodeType string

const (
	NodeText        NodeType = "text"
	NodeSlot        NodeType = "slot"
	NodeRule        NodeType = "rule"
	NodeAlternation NodeType = "alternation"
	NodeOptional    NodeType = "optional"
)

// Node is one element of a template.
type Node struct {
	Type NodeType

	// Value holds the literal text, the slot name or the rule name.
	Value string

	// Branches holds the alternatives of an alternation or optional span.
	// An optional span parsed leniently always has exactly one branch.
	Branches []Sequence

	// Origin is the chain of rule names whose expansion produced this
	// rule reference, outermost first. It is empty for references written
	// directly in a sentence.
	Origin []string

	Location Location
}

// Sequence is an ordered list of nodes.
type Sequence []Node

// Text returns a literal text node.
func Text(s string) Node {
	return Node{Type: NodeText, Value: s}
}

// Slot returns a slot placeholder node.
func Slot(name string) Node {
	return Node{Type: NodeSlot, Value: name}
}

// Rule returns a rule reference node.
func Rule(name string) Node {
	return Node{Type: NodeRule, Value: name}
}

// Alternation returns an alternation node over the given branches.
func Alternation(branches ...Sequence) Node {
	return Node{Type: NodeAlternation, Branches: branches}
}

// Optional returns an optional span over the given branches.
func Optional(branches ...Sequence) Node {
	return Node{Type: NodeOptional, Branches: branches}
}

// IsStructural reports whether the node still needs expansion.
func (n Node) IsStructural() bool {
	return n.Type == NodeRule || n.Type == NodeAlternation || n.Type == NodeOptional
}

// Has reports whether the sequence contains a node of type t at any depth.
func (s Sequence) Has(t NodeType) bool {
	found := false
	Inspect(s, func(n Node) bool {
		if n.Type == t {
			found = true
		}
		return !found
	})
	return found
}

// Len returns the number of nodes in the tree, nested branches included.
func (s Sequence) Len() int {
	count := 0
	Inspect(s, func(Node) bool {
		count++
		return true
	})
	return count
}

// Rules returns the names of every rule referenced in the tree, in
// document order and without duplicates.
func (s Sequence) Rules() []string {
	var names []string
	seen := make(map[string]bool)
	Inspect(s, func(n Node) bool {
		if n.Type == NodeRule && !seen[n.Value] {
			seen[n.Value] = true
			names = append(names, n.Value)
		}
		return true
	})
	return names
}

// Render concatenates the text and slot nodes of a fully expanded
// sequence. Structural nodes are written back in template syntax.
func (s Sequence) Render() string {
	var sb strings.Builder
	s.write(&sb)
	return sb.String()
}

// String returns the template syntax of the sequence.
func (s Sequence) String() string {
	return s.Render()
}

func (s Sequence) write(sb *strings.Builder) {
	for _, n := range s {
		switch n.Type {
		case NodeText:
			sb.WriteString(n.Value)
		case NodeSlot:
			sb.WriteString("{" + n.Value + "}")
		case NodeRule:
			sb.WriteString("<" + n.Value + ">")
		case NodeAlternation:
			writeBranches(sb, "(", ")", n.Branches)
		case NodeOptional:
			writeBranches(sb, "[", "]", n.Branches)
		}
	}
}

func writeBranches(sb *strings.Builder, open, close string, branches []Sequence) {
	sb.WriteString(open)
	for i, b := range branches {
		if i > 0 {
			sb.WriteString("|")
		}
		b.write(sb)
	}
	sb.WriteString(close)
}

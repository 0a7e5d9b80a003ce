// Package ast defines the syntax tree for intent sentence templates.
//
// A template is a flat sequence of nodes. Structural nodes carry nested
// sequences in their Branches:
//
//	Sequence
//	├── Text         literal text, kept verbatim
//	├── Slot         {name}, never substituted
//	├── Rule         <name>, resolved against a rule table
//	├── Alternation  (a|b|c), one branch per alternative
//	└── Optional     [a] or [a|b], the branches plus the empty string
//
// # Basic Usage
//
//	seq := parser.Parse("(turn|switch) on [the] <name>")
//	fmt.Println(seq.Len(), seq.Has(ast.NodeRule))
//
// # Immutability
//
// Nodes are values and sequences are never modified in place after
// parsing. Expansion rewrites a tree by copying the path from the root to
// the rewritten node, so a parsed rule alternative can be shared by every
// expansion that splices it.
package ast

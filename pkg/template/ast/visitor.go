package ast

// Inspect traverses the tree in document order (pre-order). It calls fn
// for every node; if fn returns false, the node's branches are skipped
// and traversal stops.
func Inspect(s Sequence, fn func(Node) bool) bool {
	for _, n := range s {
		if !fn(n) {
			return false
		}
		for _, b := range n.Branches {
			if !Inspect(b, fn) {
				return false
			}
		}
	}
	return true
}

// Splice returns a copy of s with the node at index i replaced by repl.
// Adjacent text nodes at the seams are merged.
func Splice(s Sequence, i int, repl Sequence) Sequence {
	out := make(Sequence, 0, len(s)+len(repl))
	out = appendMerged(out, s[:i]...)
	out = appendMerged(out, repl...)
	out = appendMerged(out, s[i+1:]...)
	return out
}

// Replace returns a copy of s with the node at index i swapped for n.
func Replace(s Sequence, i int, n Node) Sequence {
	out := make(Sequence, len(s))
	copy(out, s)
	out[i] = n
	return out
}

// WithBranch returns a copy of n whose branch b is replaced by seq.
func WithBranch(n Node, b int, seq Sequence) Node {
	branches := make([]Sequence, len(n.Branches))
	copy(branches, n.Branches)
	branches[b] = seq
	n.Branches = branches
	return n
}

// Merge returns s with adjacent text nodes joined and empty text dropped.
func Merge(s Sequence) Sequence {
	return appendMerged(make(Sequence, 0, len(s)), s...)
}

func appendMerged(out Sequence, nodes ...Node) Sequence {
	for _, n := range nodes {
		if n.Type == NodeText {
			if n.Value == "" {
				continue
			}
			if last := len(out) - 1; last >= 0 && out[last].Type == NodeText {
				out[last].Value += n.Value
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

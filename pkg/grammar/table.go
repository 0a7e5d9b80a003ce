package grammar

import "sort"

// Table maps rule names to their ordered alternatives.
type Table map[string][]string

// Lookup returns the alternatives of a rule.
func (t Table) Lookup(name string) ([]string, bool) {
	alts, ok := t[name]
	return alts, ok
}

// Names returns the rule names in sorted order.
func (t Table) Names() []string {
	return sortedKeys(t)
}

// Override returns a new table holding shared overridden by local.
func Override[M ~map[string]V, V any](shared, local M) M {
	out := make(M, len(shared)+len(local))
	for name, v := range shared {
		out[name] = v
	}
	for name, v := range local {
		out[name] = v
	}
	return out
}

// Clone returns a shallow copy of the rule set.
func (r Rules) Clone() Rules {
	return Override(r, nil)
}

// Names returns the rule names in sorted order.
func (c Canonical) Names() []string {
	return sortedKeys(c)
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

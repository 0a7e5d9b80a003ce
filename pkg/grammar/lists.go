package grammar

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ListDef is a slot list from an intent document. Only lists with values
// or a numeric range can stand in for a rule; wildcard lists cannot.
type ListDef struct {
	Values   List
	Range    *Range
	Wildcard bool
}

// MaxRangeItems bounds how many numbers a range list may expand to.
// Larger ranges are not usable as rules.
const MaxRangeItems = 1000

// Range is a numeric slot list.
type Range struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
	Step int `yaml:"step"`
}

// Len returns the number of values in the range, or -1 when it exceeds
// MaxRangeItems.
func (r Range) Len() int {
	if r.To < r.From {
		return 0
	}
	// The span of two ints always fits in a uint64.
	span := uint64(r.To) - uint64(r.From)
	n := span/uint64(r.step()) + 1
	if n > MaxRangeItems {
		return -1
	}
	return int(n)
}

func (r Range) step() int {
	if r.Step <= 0 {
		return 1
	}
	return r.Step
}

// UnmarshalYAML decodes a list definition. Unknown shapes decode to an
// empty definition rather than an error.
func (l *ListDef) UnmarshalYAML(node *yaml.Node) error {
	node = resolve(node)
	if node.Kind != yaml.MappingNode {
		*l = ListDef{}
		return nil
	}

	var def ListDef
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, resolve(node.Content[i+1])
		switch key {
		case "values":
			if list, ok := DecodeValue(val).(List); ok {
				def.Values = list
			}
		case "range":
			var r Range
			if err := val.Decode(&r); err != nil {
				return fmt.Errorf("line %d: invalid range: %w", val.Line, err)
			}
			def.Range = &r
		case "wildcard":
			def.Wildcard = val.Value == "true"
		}
	}

	*l = def
	return nil
}

// Items returns the list entries usable as rule alternatives.
func (l ListDef) Items() List {
	if len(l.Values) > 0 {
		return l.Values
	}
	if l.Range == nil {
		return nil
	}

	n := l.Range.Len()
	if n <= 0 {
		return nil
	}
	step := l.Range.step()
	items := make(List, 0, n)
	for i := range n {
		items = append(items, Plain(strconv.Itoa(l.Range.From+i*step)))
	}
	return items
}

// MergeLists adds every list with usable items to rules unless a rule of
// the same name already exists. It returns the names that were added.
// Ranges longer than MaxRangeItems are skipped with a warning.
func MergeLists(rules Rules, lists map[string]ListDef) []string {
	var added []string
	for _, name := range sortedKeys(lists) {
		if _, exists := rules[name]; exists {
			continue
		}
		def := lists[name]
		if r := def.Range; r != nil && len(def.Values) == 0 && r.Len() < 0 {
			orDefault(nil).Warn("skipping range list with too many values",
				"list", name, "from", r.From, "to", r.To, "max", MaxRangeItems)
			continue
		}
		items := def.Items()
		if len(usable(items)) == 0 {
			continue
		}
		rules[name] = items
		added = append(added, name)
	}
	return added
}

// usable filters out invalid items.
func usable(items List) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if text, ok := Text(item); ok {
			out = append(out, text)
		}
	}
	return out
}

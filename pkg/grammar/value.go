package grammar

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// RuleValue is one encoded rule value: Literal, List or Invalid.
type RuleValue interface {
	isRuleValue()
}

// Literal is a ready-made template fragment. It is never split.
type Literal string

// List is a sequence of rule items, one alternative each.
type List []RuleItem

// Invalid is a rule value of an unsupported shape.
type Invalid struct {
	Kind string // Encoded kind, e.g. "mapping" or "!!int"
}

func (Literal) isRuleValue() {}
func (List) isRuleValue()    {}
func (Invalid) isRuleValue() {}

// RuleItem is one element of a List: Plain, Tagged or InvalidItem.
type RuleItem interface {
	isRuleItem()
}

// Plain is a list element given as a bare string.
type Plain string

// Tagged is a list element given as a record; In is its canonical text.
type Tagged struct {
	In  string
	Out string
}

// InvalidItem is a list element of an unsupported shape.
type InvalidItem struct {
	Kind string
}

func (Plain) isRuleItem()       {}
func (Tagged) isRuleItem()      {}
func (InvalidItem) isRuleItem() {}

// Text returns the canonical text of an item and whether it is usable.
func Text(item RuleItem) (string, bool) {
	switch it := item.(type) {
	case Plain:
		return string(it), true
	case Tagged:
		return it.In, true
	default:
		return "", false
	}
}

// Rules maps rule names to encoded values. It decodes from YAML.
type Rules map[string]RuleValue

// UnmarshalYAML decodes every entry of a mapping node with DecodeValue.
func (r *Rules) UnmarshalYAML(node *yaml.Node) error {
	node = resolve(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expansion rules must be a mapping, got %s", node.Line, kindName(node))
	}

	out := make(Rules, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out[node.Content[i].Value] = DecodeValue(node.Content[i+1])
	}
	*r = out
	return nil
}

// DecodeValue converts a YAML node into a RuleValue.
func DecodeValue(node *yaml.Node) RuleValue {
	node = resolve(node)
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!str" {
			return Literal(node.Value)
		}
		return Invalid{Kind: node.ShortTag()}
	case yaml.SequenceNode:
		items := make(List, 0, len(node.Content))
		for _, child := range node.Content {
			items = append(items, DecodeItem(child))
		}
		return items
	default:
		return Invalid{Kind: kindName(node)}
	}
}

// DecodeItem converts a YAML sequence element into a RuleItem.
func DecodeItem(node *yaml.Node) RuleItem {
	node = resolve(node)
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!str" {
			return Plain(node.Value)
		}
		return InvalidItem{Kind: node.ShortTag()}
	case yaml.MappingNode:
		var tagged Tagged
		found := false
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i].Value, resolve(node.Content[i+1])
			if val.Kind != yaml.ScalarNode || val.ShortTag() == "!!null" {
				continue
			}
			switch key {
			case "in":
				tagged.In = val.Value
				found = true
			case "out":
				tagged.Out = val.Value
			}
		}
		if !found {
			return InvalidItem{Kind: "mapping without in"}
		}
		return tagged
	default:
		return InvalidItem{Kind: kindName(node)}
	}
}

// FromAny converts an in-memory value (as produced by a generic decoder)
// into a RuleValue.
func FromAny(v any) RuleValue {
	switch val := v.(type) {
	case string:
		return Literal(val)
	case []string:
		items := make(List, 0, len(val))
		for _, s := range val {
			items = append(items, Plain(s))
		}
		return items
	case []any:
		items := make(List, 0, len(val))
		for _, elem := range val {
			items = append(items, ItemFromAny(elem))
		}
		return items
	default:
		return Invalid{Kind: fmt.Sprintf("%T", v)}
	}
}

// ItemFromAny converts an in-memory list element into a RuleItem.
func ItemFromAny(v any) RuleItem {
	switch val := v.(type) {
	case string:
		return Plain(val)
	case map[string]any:
		in, ok := val["in"]
		if !ok || in == nil {
			return InvalidItem{Kind: "mapping without in"}
		}
		tagged := Tagged{In: scalarString(in)}
		if out, ok := val["out"]; ok && out != nil {
			tagged.Out = scalarString(out)
		}
		return tagged
	default:
		return InvalidItem{Kind: fmt.Sprintf("%T", v)}
	}
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}

// resolve follows alias nodes and unwraps document nodes.
func resolve(node *yaml.Node) *yaml.Node {
	for node != nil {
		switch {
		case node.Kind == yaml.AliasNode && node.Alias != nil:
			node = node.Alias
		case node.Kind == yaml.DocumentNode && len(node.Content) == 1:
			node = node.Content[0]
		default:
			return node
		}
	}
	return &yaml.Node{}
}

func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return node.ShortTag()
	case 0:
		return "empty"
	default:
		return fmt.Sprintf("kind %d", node.Kind)
	}
}

package intents

import (
	"fmt"

	"alice-hq/hassil-parser/pkg/grammar"

	"gopkg.in/yaml.v3"
)

// Document is one parsed intent file.
type Document struct {
	Language       string                     `yaml:"language"`
	ExpansionRules grammar.Rules              `yaml:"expansion_rules"`
	Lists          map[string]grammar.ListDef `yaml:"lists"`
	Intents        Intents                    `yaml:"intents"`
}

// Intents keeps intents in document order.
type Intents []Intent

// Intent is one named intent with its data blocks.
type Intent struct {
	Name string      `yaml:"-"`
	Data []DataBlock `yaml:"data"`
}

// DataBlock is one group of sentences sharing a context filter.
type DataBlock struct {
	Sentences       []string      `yaml:"sentences"`
	ExcludesContext Context       `yaml:"excludes_context"`
	RequiresContext Context       `yaml:"requires_context"`
	ExpansionRules  grammar.Rules `yaml:"expansion_rules"`
}

// Context is a context filter. Only the domain key is used.
type Context struct {
	Domain StringList `yaml:"domain"`
}

// StringList decodes from a single string or a sequence of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			*l = nil
			return nil
		}
		*l = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return err
		}
		*l = values
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

// UnmarshalYAML decodes the intents mapping in document order.
func (in *Intents) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: intents must be a mapping", node.Line)
	}

	out := make(Intents, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		intent := Intent{Name: node.Content[i].Value}
		if err := node.Content[i+1].Decode(&intent); err != nil {
			return fmt.Errorf("intent %s: %w", intent.Name, err)
		}
		out = append(out, intent)
	}
	*in = out
	return nil
}

// Parse decodes a document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse intent document: %w", err)
	}
	return &doc, nil
}

package grammar

import (
	"log/slog"
	"strings"
)

// Canonical maps rule names to a single template string each, the shape
// the sampling engine consumes.
type Canonical map[string]string

// Normalize canonicalizes every rule. A Literal is kept as-is, a List with
// one usable item becomes that item, a List with several becomes
// "(a|b|c)". Empty lists, invalid items and invalid values are dropped
// with a warning.
func Normalize(rules Rules, logger *slog.Logger) Canonical {
	logger = orDefault(logger)

	out := make(Canonical, len(rules))
	for _, name := range sortedKeys(rules) {
		if text, ok := NormalizeValue(name, rules[name], logger); ok {
			out[name] = text
		}
	}
	return out
}

// NormalizeValue canonicalizes a single rule value.
func NormalizeValue(name string, value RuleValue, logger *slog.Logger) (string, bool) {
	logger = orDefault(logger)

	switch v := value.(type) {
	case Literal:
		return string(v), true
	case List:
		items := listTexts(name, v, logger)
		switch len(items) {
		case 0:
			logger.Warn("dropping rule with no usable values", "rule", name)
			return "", false
		case 1:
			return items[0], true
		default:
			return "(" + strings.Join(items, "|") + ")", true
		}
	case Invalid:
		logger.Warn("dropping rule with unsupported value", "rule", name, "kind", v.Kind)
		return "", false
	default:
		logger.Warn("dropping rule with unsupported value", "rule", name, "kind", "nil")
		return "", false
	}
}

// Alternatives returns the ordered alternatives of every rule, without any
// canonical rewriting: a Literal is one alternative, each usable List item
// is one alternative. Unusable rules are omitted with a warning, so that a
// reference to them degrades to an empty alternative during expansion.
func (r Rules) Alternatives(logger *slog.Logger) Table {
	logger = orDefault(logger)

	out := make(Table, len(r))
	for _, name := range sortedKeys(r) {
		switch v := r[name].(type) {
		case Literal:
			out[name] = []string{string(v)}
		case List:
			items := listTexts(name, v, logger)
			if len(items) == 0 {
				logger.Warn("dropping rule with no usable values", "rule", name)
				continue
			}
			out[name] = items
		case Invalid:
			logger.Warn("dropping rule with unsupported value", "rule", name, "kind", v.Kind)
		}
	}
	return out
}

// listTexts returns the usable item texts, warning about the rest.
func listTexts(name string, list List, logger *slog.Logger) []string {
	out := make([]string, 0, len(list))
	for i, item := range list {
		text, ok := Text(item)
		if !ok {
			kind := "nil"
			if inv, isInvalid := item.(InvalidItem); isInvalid {
				kind = inv.Kind
			}
			logger.Warn("dropping rule item with unsupported shape", "rule", name, "index", i, "kind", kind)
			continue
		}
		out = append(out, text)
	}
	return out
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default().With("component", "grammar")
	}
	return logger
}

// Package grammar models expansion rules and canonicalizes them.
//
// Intent documents encode a rule value in several shapes:
//
//	expansion_rules:
//	  name: "[the] {name}"          # Literal
//	  turn: ["turn", "switch"]      # List of Plain items
//	  area:                         # List of Tagged items
//	    - in: kitchen
//	      out: kitchen_area
//
// RuleValue is a closed variant over those shapes (Literal, List, Invalid),
// and RuleItem over list elements (Plain, Tagged, InvalidItem). Decoding
// never fails: anything unrecognised becomes an Invalid value that the
// normalizer drops with a warning.
//
// Two views are derived from a rule set:
//
//   - Normalize produces Canonical rules, one template string per name,
//     for the preferred sampling engine.
//   - Alternatives produces a Table, an ordered list of alternatives per
//     name, for the fallback expansion engine.
//
// Both are total functions over the variant and report problems only as
// log records.
package grammar

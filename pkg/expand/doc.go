// Package expand implements the custom expansion engine.
//
// A template is parsed once into an ast tree and expanded in four ordered
// phases:
//
//  1. Rule resolution: the first <rule> reference is replaced by each of its
//     alternatives in turn until no reference remains. Unknown and cyclic
//     references resolve to an empty alternative.
//  2. Alternation: the first innermost (a|b) group is replaced by each of its
//     trimmed branches.
//  3. Optionals: the first innermost [x] span produces a copy with its
//     content kept, then a copy with the span removed.
//  4. Normalization: whitespace runs collapse to one space and the result
//     is trimmed.
//
// Candidates are produced lazily, so the pattern cap and the explosion guard
// stop enumeration instead of truncating a fully materialized list.
//
// # Basic Usage
//
//	rules := grammar.Table{"area": {"kitchen", "hall"}}
//	patterns := expand.ExpandTemplate("turn (on|off) [the] <area> light", rules, 50)
//
// Malformed syntax never fails: unmatched delimiters are kept as text.
package expand

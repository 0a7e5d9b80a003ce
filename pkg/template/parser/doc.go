// Package parser turns sentence templates into ast sequences.
//
// Two modes are provided:
//
// Lenient mode never fails. Delimiters are paired with a single stack pass;
// an opening '(' or '[' without a partner, or a closing one without an
// opener, is kept as literal text. Only parenthesized groups split on '|'.
// This is the grammar of the fallback expansion engine.
//
// Strict mode follows the full grammar of the preferred engine: optional
// spans may hold alternatives ([a|b]), a top-level '|' makes the whole
// sentence an alternation, '\' escapes the next character, and every
// unbalanced or malformed construct is reported as a located error.
//
// # Usage
//
//	seq := parser.Parse("turn (on|off) [the] {name}")
//
//	seq, err := parser.NewParser().WithStrictMode(true).Parse("turn (on|off")
//	// err: [syntax] Unclosed '(' ...
package parser

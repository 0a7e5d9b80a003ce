// Package sampler is a strict grammar engine over canonical rules.
//
// Unlike the custom expander it parses the full template grammar: optional
// spans may carry alternatives ([a|b]), a top-level '|' makes the whole
// sentence an alternation, and '\' escapes the next character. Malformed
// templates, unknown rule references and rule cycles are reported as
// errors rather than degraded, which lets callers fall back to a more
// forgiving path.
//
// Rules are compiled once and shared:
//
//	g, err := sampler.Compile(canonical)
//	if err != nil {
//	    return err
//	}
//	for s, err := range g.Sample(ctx, "turn (on|off) [the] <name>") {
//	    ...
//	}
//
// Sampling is lazy; stopping the range loop stops enumeration.
package sampler

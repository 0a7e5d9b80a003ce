// Package orchestrator chooses the expansion path for each unit.
//
// A Session is bound to one document's shared rules. Each unit is tried
// on the external sampler first when that engine is enabled; an error or
// an empty result re-runs the whole unit through the custom expander. A
// unit that is still empty is dropped. If the shared rules cannot be
// compiled for the sampler, every unit of the document goes straight to
// the custom expander.
//
// Failures inside a unit never fail the batch. Expand returns an error
// only when its context is done.
package orchestrator

// Package envelope implements the data model for e-signature envelopes:
// recipients, typed signature fields, envelope settings, and the pure
// operations that mutate them (placement, reassignment, validation,
// conditional visibility, undo/redo history).
//
// Everything in this package is side-effect free. Persistence, step
// orchestration and finalization live in the session package.
package envelope

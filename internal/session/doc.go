// Package session implements the envelope editing session: the three-step
// workflow controller, typed mutation commands routed through the undo/redo
// history, the debounced autosave-to-draft client, and the finalization
// engine that converts a validated envelope into a saved template or issued
// per-recipient signing links.
//
// The session talks to its collaborators (draft store, template store,
// signature-request issuance, page metadata) through interfaces; HTTP
// implementations against the hosting service live in remote.go and
// in-memory fakes live in the tests.
package session

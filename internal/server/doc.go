// Package server provides the HTTP server for the e-sign hosting service.
//
// the server is configured through environment variables
// (see internal/config/config.go for details)
//
// The package wires up
//   - the collaborator APIs consumed by editing sessions (drafts, templates,
//     signature-request issuance, page metadata)
//   - the sign-link resolution endpoints (/sign/{token}, /cc/{token})
//   - common infrastructure handlers (health, version, jwks)
//
// handlers are in internal/server/handlers, middleware in
// internal/server/middleware
package server

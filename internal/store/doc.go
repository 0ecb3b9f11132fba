// Package store implements the Postgres persistence layer: draft snapshots,
// template definitions and issued signature-request records, plus the
// embedded schema migrations. It provides the server-side implementations of
// the session package's collaborator interfaces.
package store

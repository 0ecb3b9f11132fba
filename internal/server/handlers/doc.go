// Package handlers implements the HTTP handlers for the e-sign hosting
// service: drafts, templates, signature-request issuance, page metadata,
// sign-link resolution, plus the infrastructure endpoints (health, version,
// jwks).
package handlers

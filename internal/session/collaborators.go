package session

// collaborators.go defines the external collaborator contracts the session
// depends on. Everything behind these interfaces is replaceable: the
// hosting service implements them over Postgres, remote.go implements them
// over HTTP, and the tests use in-memory fakes.

import (
	"context"
	"time"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/envelope"
)

// DraftStore persists resumable snapshots of in-progress request sessions,
// keyed by document id (scoped server-side to the current owner).
type DraftStore interface {
	// Load returns the most recent draft for the document, or ok=false when
	// none exists.
	Load(ctx context.Context, documentID string) (draft envelope.Draft, ok bool, err error)

	// Save upserts the draft and returns the server-assigned lastSaved
	// timestamp.
	Save(ctx context.Context, draft envelope.Draft) (lastSaved time.Time, err error)

	// Discard deletes the draft. Deleting a missing draft is not an error.
	Discard(ctx context.Context, documentID string) error
}

// TemplateStore persists reusable template definitions.
type TemplateStore interface {
	LoadTemplate(ctx context.Context, documentID string) (tpl envelope.Template, ok bool, err error)
	SaveTemplate(ctx context.Context, tpl envelope.Template) error
}

// PagePreview describes the rendered pages of a document. Rendering itself
// is out of scope; the collaborator serves page count plus per-page preview
// resource URLs.
type PagePreview struct {
	DocumentID  string   `json:"documentId"`
	PageCount   int      `json:"pageCount"`
	PreviewURLs []string `json:"previewUrls"`
}

// PageMetadataService resolves a document's page preview. The session
// fetches it once on first entry to the placement step and releases it on
// teardown.
type PageMetadataService interface {
	DocumentPages(ctx context.Context, documentID string) (PagePreview, error)

	// Release frees any preview resource acquired for the document. Called
	// on session teardown and on error paths; releasing twice is harmless.
	Release(ctx context.Context, documentID string) error
}

// IssuanceRequest is the payload posted to the signature-request issuance
// collaborator.
type IssuanceRequest struct {
	DocumentID          string                      `json:"documentId"`
	Recipients          []envelope.Recipient        `json:"recipients"`
	SignatureFields     []envelope.SignatureField   `json:"signatureFields"`
	CCRecipients        []envelope.CCRecipient      `json:"ccRecipients"`
	Message             string                      `json:"message,omitempty"`
	DueDate             *time.Time                  `json:"dueDate,omitempty"`
	ViewMode            envelope.ViewMode           `json:"viewMode"`
	SigningOrder        envelope.SigningOrder       `json:"signingOrder"`
	ExpirationDays      string                      `json:"expirationDays"`
	AccessCodeRequired  bool                        `json:"accessCodeRequired"`
	AccessCodeType      envelope.AccessCodeType     `json:"accessCodeType,omitempty"`
	AccessCodeHint      string                      `json:"accessCodeHint,omitempty"`
	AccessCode          string                      `json:"accessCode,omitempty"`
	ScheduledSendDate   *time.Time                  `json:"scheduledSendDate,omitempty"`
	IntentVideoRequired bool                        `json:"intentVideoRequired"`

	// Checksum is the canonical envelope checksum used as the issuance
	// idempotency key: re-posting the same envelope does not issue twice.
	Checksum string `json:"checksum"`
}

// IssuedRequest is one per-recipient signature-request record returned by
// the issuance collaborator.
type IssuedRequest struct {
	Recipient string `json:"recipient"`
	Email     string `json:"email"`

	// UniqueID is the server-issued opaque token embedded in the signing
	// link path.
	UniqueID string `json:"uniqueId"`

	// Status is "pending-notification" for recipients notified now and
	// "waiting" for sequential recipients whose turn has not come.
	Status string `json:"status"`

	// SigningOrderIndex is the recipient's ordinal position; the server
	// uses it to advance sequential envelopes.
	SigningOrderIndex int `json:"signingOrderIndex"`

	// LinkToken is the Ed25519-signed JWS over {requestId, email, role}
	// that lets the signing page verify the link offline.
	LinkToken string `json:"linkToken,omitempty"`
}

// IssuedCC is one view-only CC record.
type IssuedCC struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	UniqueID  string `json:"uniqueId"`
	LinkToken string `json:"linkToken,omitempty"`
}

// IssuanceResult is the issuance collaborator's response.
type IssuanceResult struct {
	SignatureRequests []IssuedRequest `json:"signatureRequests"`
	CCRecipients      []IssuedCC      `json:"ccRecipients"`
}

// IssuanceService issues signature-request records with server-assigned
// tokens.
type IssuanceService interface {
	Issue(ctx context.Context, req IssuanceRequest) (IssuanceResult, error)
}

// request record statuses shared with the hosting service
const (
	StatusPendingNotification = "pending-notification"
	StatusWaiting             = "waiting"
)

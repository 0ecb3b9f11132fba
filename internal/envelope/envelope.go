package envelope

// envelope.go defines the aggregate being edited: recipients, fields and
// send settings for one document's signing request or template.

import (
	"time"
)

// Step is the editing session's position in the three-step flow.
type Step int

const (
	StepRecipients Step = 1
	StepPlacement  Step = 2
	StepReview     Step = 3
)

// ViewMode controls what each signer sees while signing.
type ViewMode string

const (
	// ViewModeIsolated shows each recipient only their own fields.
	ViewModeIsolated ViewMode = "isolated"

	// ViewModeShared shows every recipient all fields.
	ViewModeShared ViewMode = "shared"
)

// SigningOrder controls how recipients are notified.
type SigningOrder string

const (
	// SigningOrderAny notifies all recipients at once.
	SigningOrderAny SigningOrder = "any"

	// SigningOrderSequential notifies recipients one at a time in list
	// order, each triggered by the prior recipient's completion.
	SigningOrderSequential SigningOrder = "sequential"
)

// AccessCodeType is how a required access code is delivered to the signer.
type AccessCodeType string

const (
	AccessCodeTypeSMS    AccessCodeType = "sms"
	AccessCodeTypeCustom AccessCodeType = "custom"
)

// Envelope is the in-progress, editable aggregate for one document.
//
// It is mutated exclusively through session.EnvelopeSession commands and is
// converted on successful finalization into either a saved template or
// issued signature requests.
type Envelope struct {
	DocumentID string `json:"documentId"`

	Recipients      []Recipient      `json:"recipients"`
	CCRecipients    []CCRecipient    `json:"ccRecipients"`
	SignatureFields []SignatureField `json:"signatureFields"`

	Message           string     `json:"message,omitempty"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	ScheduledSendDate *time.Time `json:"scheduledSendDate,omitempty"`

	ViewMode     ViewMode     `json:"viewMode"`
	SigningOrder SigningOrder `json:"signingOrder"`

	// ExpirationDays is kept as a string on the wire (the authoring UI
	// stores it that way); it is parsed once at finalization.
	ExpirationDays string `json:"expirationDays"`

	AccessCodeRequired bool           `json:"accessCodeRequired"`
	AccessCodeType     AccessCodeType `json:"accessCodeType,omitempty"`
	AccessCodeHint     string         `json:"accessCodeHint,omitempty"`
	AccessCode         string         `json:"accessCode,omitempty"`

	IntentVideoRequired bool `json:"intentVideoRequired"`

	// IsTemplate marks a reusable template being authored: recipients act as
	// named roles and email is optional. Drafts are never templates.
	IsTemplate bool `json:"isTemplate"`

	Step Step `json:"step"`
}

// New returns an envelope with the defaults a fresh authoring session
// starts from.
func New(documentID string) *Envelope {
	return &Envelope{
		DocumentID:      documentID,
		Recipients:      []Recipient{},
		CCRecipients:    []CCRecipient{},
		SignatureFields: []SignatureField{},
		ViewMode:        ViewModeShared,
		SigningOrder:    SigningOrderAny,
		ExpirationDays:  "30",
		Step:            StepRecipients,
	}
}

// Clone returns a deep copy of the envelope. Sessions hand out clones so
// callers can never mutate state behind the history manager's back.
func (e *Envelope) Clone() *Envelope {
	out := *e
	out.Recipients = append([]Recipient(nil), e.Recipients...)
	out.CCRecipients = append([]CCRecipient(nil), e.CCRecipients...)
	out.SignatureFields = CloneFields(e.SignatureFields)
	if e.DueDate != nil {
		d := *e.DueDate
		out.DueDate = &d
	}
	if e.ScheduledSendDate != nil {
		d := *e.ScheduledSendDate
		out.ScheduledSendDate = &d
	}
	return &out
}

// Draft is the serializable snapshot of an in-progress (non-template)
// request session, keyed by document identity.
//
// IsTemplate is deliberately absent: drafts only ever resume request
// sessions, never template authoring.
type Draft struct {
	DocumentID string `json:"documentId"`

	Recipients      []Recipient      `json:"recipients"`
	CCRecipients    []CCRecipient    `json:"ccRecipients"`
	SignatureFields []SignatureField `json:"signatureFields"`

	Message           string     `json:"message,omitempty"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	ScheduledSendDate *time.Time `json:"scheduledSendDate,omitempty"`

	ViewMode            ViewMode       `json:"viewMode"`
	SigningOrder        SigningOrder   `json:"signingOrder"`
	ExpirationDays      string         `json:"expirationDays"`
	AccessCodeRequired  bool           `json:"accessCodeRequired"`
	AccessCodeType      AccessCodeType `json:"accessCodeType,omitempty"`
	AccessCodeHint      string         `json:"accessCodeHint,omitempty"`
	AccessCode          string         `json:"accessCode,omitempty"`
	IntentVideoRequired bool           `json:"intentVideoRequired"`

	Step Step `json:"step"`

	// LastSaved is assigned by the draft store on write.
	LastSaved time.Time `json:"lastSaved,omitzero"`
}

// ToDraft extracts the serializable subset of the envelope.
func (e *Envelope) ToDraft() Draft {
	return Draft{
		DocumentID:          e.DocumentID,
		Recipients:          append([]Recipient(nil), e.Recipients...),
		CCRecipients:        append([]CCRecipient(nil), e.CCRecipients...),
		SignatureFields:     CloneFields(e.SignatureFields),
		Message:             e.Message,
		DueDate:             e.DueDate,
		ScheduledSendDate:   e.ScheduledSendDate,
		ViewMode:            e.ViewMode,
		SigningOrder:        e.SigningOrder,
		ExpirationDays:      e.ExpirationDays,
		AccessCodeRequired:  e.AccessCodeRequired,
		AccessCodeType:      e.AccessCodeType,
		AccessCodeHint:      e.AccessCodeHint,
		AccessCode:          e.AccessCode,
		IntentVideoRequired: e.IntentVideoRequired,
		Step:                e.Step,
	}
}

// ApplyDraft overwrites the envelope's editable state with a resumed draft.
func (e *Envelope) ApplyDraft(d Draft) {
	e.Recipients = append([]Recipient(nil), d.Recipients...)
	e.CCRecipients = append([]CCRecipient(nil), d.CCRecipients...)
	e.SignatureFields = CloneFields(d.SignatureFields)
	e.Message = d.Message
	e.DueDate = d.DueDate
	e.ScheduledSendDate = d.ScheduledSendDate
	if d.ViewMode != "" {
		e.ViewMode = d.ViewMode
	}
	if d.SigningOrder != "" {
		e.SigningOrder = d.SigningOrder
	}
	if d.ExpirationDays != "" {
		e.ExpirationDays = d.ExpirationDays
	}
	e.AccessCodeRequired = d.AccessCodeRequired
	e.AccessCodeType = d.AccessCodeType
	e.AccessCodeHint = d.AccessCodeHint
	e.AccessCode = d.AccessCode
	e.IntentVideoRequired = d.IntentVideoRequired
	if d.Step >= StepRecipients && d.Step <= StepReview {
		e.Step = d.Step
	}
}

// Template is the persisted form of a template definition: roles and field
// placements, without any per-send settings.
type Template struct {
	DocumentID      string           `json:"documentId"`
	Recipients      []Recipient      `json:"recipients"`
	SignatureFields []SignatureField `json:"signatureFields"`
	ViewMode        ViewMode         `json:"viewMode"`
}

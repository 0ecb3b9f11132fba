package session

// session.go is the step workflow controller: it owns the envelope
// aggregate, routes every mutation through typed commands, feeds field
// mutations into the undo/redo history, gates forward step transitions on
// validation, and arms the autosave debounce after each change.

import (
	"context"
	"log/slog"
	"sync"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/envelope"
)

// EnvelopeSession is one user's editing session over one document.
//
// All methods are safe for concurrent use; the session serializes commands
// with a single mutex, matching the one-editor-at-a-time model.
type EnvelopeSession struct {
	mode   envelope.Mode
	logger *slog.Logger

	drafts   *DraftClient
	pages    PageMetadataService
	issuance IssuanceService
	tpls     TemplateStore

	mu        sync.Mutex
	env       *envelope.Envelope
	history   *envelope.History
	finalized bool

	// draftLoaded guards the one-time draft load in ResumedDraft mode.
	draftLoaded bool

	// preview holds the page metadata fetched on first entry to the
	// placement step; released on Close.
	preview        *PagePreview
	previewFetched bool
}

// Options carries the session's collaborators.
type Options struct {
	Mode      envelope.Mode
	Drafts    *DraftClient
	Pages     PageMetadataService
	Issuance  IssuanceService
	Templates TemplateStore
	Logger    *slog.Logger
}

// NewEnvelopeSession opens an editing session for the document. In
// ResumedDraft mode the most recent draft is loaded once, here; a missing
// draft degrades to a fresh session rather than failing.
func NewEnvelopeSession(ctx context.Context, documentID string, opts Options) (*EnvelopeSession, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	env := envelope.New(documentID)
	env.IsTemplate = opts.Mode.ForTemplate()

	s := &EnvelopeSession{
		mode:     opts.Mode,
		logger:   logger,
		drafts:   opts.Drafts,
		pages:    opts.Pages,
		issuance: opts.Issuance,
		tpls:     opts.Templates,
		env:      env,
	}

	if opts.Mode == envelope.ResumedDraft && s.drafts != nil {
		draft, ok, err := s.drafts.Load(ctx, documentID)
		if err != nil {
			return nil, err
		}
		if ok {
			s.env.ApplyDraft(draft)
		} else {
			logger.Info("no draft to resume, starting fresh",
				slog.String("document_id", documentID))
		}
		s.draftLoaded = true
	}

	history, err := envelope.NewHistory(s.env.SignatureFields)
	if err != nil {
		return nil, err
	}
	s.history = history

	return s, nil
}

// Mode returns the session's workflow mode.
func (s *EnvelopeSession) Mode() envelope.Mode { return s.mode }

// Envelope returns a snapshot of the current envelope state. Mutating the
// snapshot has no effect on the session.
func (s *EnvelopeSession) Envelope() *envelope.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.Clone()
}

// Finalized reports whether the session completed a finalization.
func (s *EnvelopeSession) Finalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalized
}

// scheduleSaveLocked arms the autosave debounce. Caller holds s.mu.
func (s *EnvelopeSession) scheduleSaveLocked() {
	if s.drafts != nil {
		s.drafts.ScheduleSave(s.env, s.mode)
	}
}

// recordFieldsLocked snapshots the current field set into the history and
// arms the autosave. Caller holds s.mu.
func (s *EnvelopeSession) recordFieldsLocked() error {
	if err := s.history.Record(s.env.SignatureFields); err != nil {
		return err
	}
	s.scheduleSaveLocked()
	return nil
}

// --- recipient commands ---

// AddRecipient appends a recipient row. The color is assigned from the
// position in the list and is stable for that position.
func (s *EnvelopeSession) AddRecipient(name, email, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.env.Recipients = append(s.env.Recipients, envelope.Recipient{
		Name:  name,
		Email: email,
		Role:  role,
		Color: envelope.RecipientColor(len(s.env.Recipients)),
	})
	s.scheduleSaveLocked()
}

// UpdateRecipient replaces the name/email/role of the recipient at index.
func (s *EnvelopeSession) UpdateRecipient(index int, name, email, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.env.Recipients) {
		return envelope.NewReferenceError("no recipient at that position")
	}
	r := &s.env.Recipients[index]
	r.Name = name
	r.Email = email
	r.Role = role
	s.scheduleSaveLocked()
	return nil
}

// RemoveRecipient deletes the recipient at index. Fields owned by that
// recipient are removed and back-references above it shift down; colors are
// reassigned so they stay a function of list position. The field change is
// recorded as one history entry.
func (s *EnvelopeSession) RemoveRecipient(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.env.Recipients) {
		return envelope.NewReferenceError("no recipient at that position")
	}

	s.env.Recipients = append(s.env.Recipients[:index], s.env.Recipients[index+1:]...)
	for i := range s.env.Recipients {
		s.env.Recipients[i].Color = envelope.RecipientColor(i)
	}
	s.env.SignatureFields = envelope.ReconcileRemovedRecipient(s.env.SignatureFields, index)

	return s.recordFieldsLocked()
}

// AddCCRecipient appends a view-only CC recipient.
func (s *EnvelopeSession) AddCCRecipient(name, email string, notify envelope.CCNotify) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !envelope.ValidEmail(email) {
		return envelope.NewValidationError("cc recipient needs a valid email address")
	}
	s.env.CCRecipients = append(s.env.CCRecipients, envelope.CCRecipient{
		Name:       name,
		Email:      email,
		NotifyWhen: notify,
	})
	s.scheduleSaveLocked()
	return nil
}

// RemoveCCRecipient deletes the CC recipient at index.
func (s *EnvelopeSession) RemoveCCRecipient(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.env.CCRecipients) {
		return envelope.NewReferenceError("no cc recipient at that position")
	}
	s.env.CCRecipients = append(s.env.CCRecipients[:index], s.env.CCRecipients[index+1:]...)
	s.scheduleSaveLocked()
	return nil
}

// --- send settings commands ---

// SetMessage sets the message included in recipient notifications.
func (s *EnvelopeSession) SetMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env.Message = msg
	s.scheduleSaveLocked()
}

// SetSendSettings applies the review-step send settings in one command.
func (s *EnvelopeSession) SetSendSettings(apply func(*envelope.Envelope)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(s.env)
	s.scheduleSaveLocked()
}

// SetViewMode switches between isolated and shared signing views.
func (s *EnvelopeSession) SetViewMode(m envelope.ViewMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env.ViewMode = m
	s.scheduleSaveLocked()
}

// SetSigningOrder switches between any-order and sequential notification.
func (s *EnvelopeSession) SetSigningOrder(o envelope.SigningOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env.SigningOrder = o
	s.scheduleSaveLocked()
}

// --- field commands ---

// PlaceField drops a new field of the given type for the recipient at the
// canvas coordinate and records the change in the history.
func (s *EnvelopeSession) PlaceField(t envelope.FieldType, recipientIndex int, p envelope.DropPoint, geom envelope.ContainerGeometry) (envelope.SignatureField, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recipientIndex >= len(s.env.Recipients) {
		return envelope.SignatureField{}, envelope.NewReferenceError("no recipient at that position")
	}

	fields, placed, err := envelope.PlaceField(s.env.SignatureFields, t, recipientIndex, p, geom)
	if err != nil {
		return envelope.SignatureField{}, err
	}
	s.env.SignatureFields = fields
	if err := s.recordFieldsLocked(); err != nil {
		return envelope.SignatureField{}, err
	}
	return placed, nil
}

// MoveField repositions an existing field to a new drop point.
func (s *EnvelopeSession) MoveField(fieldID string, p envelope.DropPoint, geom envelope.ContainerGeometry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields, err := envelope.MoveField(s.env.SignatureFields, fieldID, p, geom)
	if err != nil {
		return err
	}
	s.env.SignatureFields = fields
	return s.recordFieldsLocked()
}

// DeleteField removes a placed field.
func (s *EnvelopeSession) DeleteField(fieldID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields, err := envelope.DeleteField(s.env.SignatureFields, fieldID)
	if err != nil {
		return err
	}
	s.env.SignatureFields = fields
	return s.recordFieldsLocked()
}

// UpdateField replaces the properties of the field with the given id. The
// id, position and page of the stored field win over whatever the caller
// passed in.
func (s *EnvelopeSession) UpdateField(fieldID string, updated envelope.SignatureField) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := envelope.CloneFields(s.env.SignatureFields)
	for i := range fields {
		if fields[i].ID != fieldID {
			continue
		}
		updated.ID = fields[i].ID
		updated.X = fields[i].X
		updated.Y = fields[i].Y
		updated.Page = fields[i].Page
		if err := envelope.ValidateField(updated); err != nil {
			return err
		}
		fields[i] = updated
		s.env.SignatureFields = fields
		return s.recordFieldsLocked()
	}
	return envelope.NewReferenceError("field not found: " + fieldID)
}

// ReassignFieldRecipient points a field at a different recipient.
func (s *EnvelopeSession) ReassignFieldRecipient(fieldID string, newIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newIndex >= len(s.env.Recipients) {
		return envelope.NewReferenceError("no recipient at that position")
	}
	fields, err := envelope.ReassignFieldRecipient(s.env.SignatureFields, fieldID, newIndex)
	if err != nil {
		return err
	}
	s.env.SignatureFields = fields
	return s.recordFieldsLocked()
}

// --- history commands ---

// Undo restores the previous field snapshot. Returns false at the oldest
// entry. The restored state is autosaved but not re-recorded.
func (s *EnvelopeSession) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.env.SignatureFields = fields
	s.scheduleSaveLocked()
	return true
}

// Redo restores the next field snapshot. Returns false at the newest entry.
func (s *EnvelopeSession) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.env.SignatureFields = fields
	s.scheduleSaveLocked()
	return true
}

// CanUndo reports whether an undo would change state.
func (s *EnvelopeSession) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether a redo would change state.
func (s *EnvelopeSession) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// --- step transitions ---

// Step returns the session's current step.
func (s *EnvelopeSession) Step() envelope.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.Step
}

// NextStep advances one step. The transition is gated: the current step's
// validation must pass. Entering the placement step fetches the document's
// page preview once per session.
func (s *EnvelopeSession) NextStep(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.env.Step >= envelope.StepReview {
		return envelope.NewValidationError("already at the last step")
	}
	if err := envelope.ValidateForStep(s.env, s.env.Step, s.mode); err != nil {
		return err
	}

	s.env.Step++
	if s.env.Step == envelope.StepPlacement {
		s.ensurePreviewLocked(ctx)
	}
	s.scheduleSaveLocked()
	return nil
}

// PrevStep moves one step back. Backward transitions are never gated and
// lose no state.
func (s *EnvelopeSession) PrevStep() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.env.Step <= envelope.StepRecipients {
		return envelope.NewValidationError("already at the first step")
	}
	s.env.Step--
	s.scheduleSaveLocked()
	return nil
}

// ensurePreviewLocked fetches the page preview on first use. Failures are
// logged; field placement still works against the default geometry.
func (s *EnvelopeSession) ensurePreviewLocked(ctx context.Context) {
	if s.previewFetched || s.pages == nil {
		return
	}
	s.previewFetched = true

	preview, err := s.pages.DocumentPages(ctx, s.env.DocumentID)
	if err != nil {
		s.logger.Warn("failed to fetch page preview",
			slog.String("document_id", s.env.DocumentID),
			slog.String("error", err.Error()),
		)
		return
	}
	s.preview = &preview
}

// Preview returns the fetched page preview, or ok=false when none was
// fetched (yet, or the fetch failed).
func (s *EnvelopeSession) Preview() (PagePreview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview == nil {
		return PagePreview{}, false
	}
	return *s.preview, true
}

// Close tears the session down: the autosave timer is cancelled and any
// acquired page preview is released. Closing twice is harmless.
func (s *EnvelopeSession) Close(ctx context.Context) {
	s.mu.Lock()
	documentID := s.env.DocumentID
	fetched := s.previewFetched
	s.preview = nil
	s.previewFetched = false
	s.mu.Unlock()

	if s.drafts != nil {
		s.drafts.Cancel()
	}
	if fetched && s.pages != nil {
		if err := s.pages.Release(ctx, documentID); err != nil {
			s.logger.Warn("failed to release page preview",
				slog.String("document_id", documentID),
				slog.String("error", err.Error()),
			)
		}
	}
}

package session

// finalize.go converts a validated envelope into its final form: a saved
// template in template mode, or issued per-recipient signing links in the
// request modes. On any failure the envelope is left untouched and the
// session stays in the review step so the operation can be retried.

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/envelope"
)

// SigningLink is one recipient's generated signing URL.
type SigningLink struct {
	Recipient string `json:"recipient"`
	Email     string `json:"email"`
	URL       string `json:"url"`

	// Status mirrors the issued record: "pending-notification" when the
	// recipient is notified now, "waiting" for sequential recipients whose
	// turn has not come.
	Status string `json:"status"`
}

// CCLink is one CC recipient's view-only URL.
type CCLink struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	URL   string `json:"url"`
}

// FinalizeResult describes a successful finalization.
type FinalizeResult struct {
	// Template is true when the session saved a template instead of issuing
	// signature requests; the link slices are empty in that case.
	Template bool `json:"template"`

	SigningLinks []SigningLink `json:"signingLinks,omitempty"`
	CCLinks      []CCLink      `json:"ccLinks,omitempty"`

	// ExpiresAt is the link expiration derived from the envelope's
	// expirationDays setting at issuance time.
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Finalize completes the session.
//
// Template mode validates the role list and field placements and saves the
// template. The request modes validate the recipient and field gates again,
// post one issuance request, and build the signing and CC links from the
// issued tokens. Both paths discard any autosaved draft for the document,
// and only after the save or issuance succeeded.
func (s *EnvelopeSession) Finalize(ctx context.Context, publicOrigin string) (FinalizeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return FinalizeResult{}, envelope.NewValidationError("session already finalized")
	}

	if s.mode.ForTemplate() {
		return s.finalizeTemplateLocked(ctx)
	}
	return s.finalizeRequestLocked(ctx, publicOrigin)
}

func (s *EnvelopeSession) finalizeTemplateLocked(ctx context.Context) (FinalizeResult, error) {
	if err := envelope.ValidateForStep(s.env, envelope.StepRecipients, s.mode); err != nil {
		return FinalizeResult{}, err
	}
	for _, f := range s.env.SignatureFields {
		if err := envelope.ValidateField(f); err != nil {
			return FinalizeResult{}, err
		}
	}
	if s.tpls == nil {
		return FinalizeResult{}, envelope.NewFinalizationError("no template store configured")
	}

	tpl := envelope.Template{
		DocumentID:      s.env.DocumentID,
		Recipients:      append([]envelope.Recipient(nil), s.env.Recipients...),
		SignatureFields: envelope.CloneFields(s.env.SignatureFields),
		ViewMode:        s.env.ViewMode,
	}
	if err := s.tpls.SaveTemplate(ctx, tpl); err != nil {
		return FinalizeResult{}, envelope.WrapFinalizationError(err, "failed to save template")
	}

	s.discardDraftLocked(ctx)
	s.finalized = true
	s.logger.Info("template saved",
		slog.String("document_id", s.env.DocumentID),
		slog.Int("roles", len(tpl.Recipients)),
		slog.Int("fields", len(tpl.SignatureFields)),
	)
	return FinalizeResult{Template: true}, nil
}

func (s *EnvelopeSession) finalizeRequestLocked(ctx context.Context, publicOrigin string) (FinalizeResult, error) {
	if err := envelope.ValidateForStep(s.env, envelope.StepRecipients, s.mode); err != nil {
		return FinalizeResult{}, err
	}
	if err := envelope.ValidateForStep(s.env, envelope.StepReview, s.mode); err != nil {
		return FinalizeResult{}, err
	}
	if s.issuance == nil {
		return FinalizeResult{}, envelope.NewFinalizationError("no issuance service configured")
	}

	expirationDays, err := strconv.Atoi(strings.TrimSpace(s.env.ExpirationDays))
	if err != nil || expirationDays <= 0 {
		return FinalizeResult{}, envelope.NewValidationError("expiration days must be a positive number")
	}

	checksum, err := s.env.Checksum()
	if err != nil {
		return FinalizeResult{}, envelope.WrapInternalError(err, "failed to compute envelope checksum")
	}

	req := IssuanceRequest{
		DocumentID:          s.env.DocumentID,
		Recipients:          append([]envelope.Recipient(nil), s.env.Recipients...),
		SignatureFields:     envelope.CloneFields(s.env.SignatureFields),
		CCRecipients:        append([]envelope.CCRecipient(nil), s.env.CCRecipients...),
		Message:             s.env.Message,
		DueDate:             s.env.DueDate,
		ViewMode:            s.env.ViewMode,
		SigningOrder:        s.env.SigningOrder,
		ExpirationDays:      s.env.ExpirationDays,
		AccessCodeRequired:  s.env.AccessCodeRequired,
		AccessCodeType:      s.env.AccessCodeType,
		AccessCodeHint:      s.env.AccessCodeHint,
		AccessCode:          s.env.AccessCode,
		ScheduledSendDate:   s.env.ScheduledSendDate,
		IntentVideoRequired: s.env.IntentVideoRequired,
		Checksum:            checksum,
	}

	result, err := s.issuance.Issue(ctx, req)
	if err != nil {
		return FinalizeResult{}, envelope.WrapFinalizationError(err, "failed to issue signature requests")
	}

	links := make([]SigningLink, 0, len(result.SignatureRequests))
	for _, issued := range result.SignatureRequests {
		links = append(links, SigningLink{
			Recipient: issued.Recipient,
			Email:     issued.Email,
			URL:       SigningURL(publicOrigin, issued.UniqueID, issued.Email),
			Status:    issued.Status,
		})
	}
	ccLinks := make([]CCLink, 0, len(result.CCRecipients))
	for _, cc := range result.CCRecipients {
		ccLinks = append(ccLinks, CCLink{
			Name:  cc.Name,
			Email: cc.Email,
			URL:   CCURL(publicOrigin, cc.UniqueID, cc.Email),
		})
	}

	expiresAt := time.Now().UTC().AddDate(0, 0, expirationDays)

	s.discardDraftLocked(ctx)
	s.finalized = true
	s.logger.Info("signature requests issued",
		slog.String("document_id", s.env.DocumentID),
		slog.Int("recipients", len(links)),
		slog.Int("cc_recipients", len(ccLinks)),
		slog.String("signing_order", string(s.env.SigningOrder)),
	)

	return FinalizeResult{
		SigningLinks: links,
		CCLinks:      ccLinks,
		ExpiresAt:    &expiresAt,
	}, nil
}

// discardDraftLocked deletes the autosaved draft once a finalization
// succeeded. A template save discards too: a stale draft from an earlier
// request session on the same document must not be resumable afterwards.
// Failures only log, the finalization result stands. Caller holds s.mu.
func (s *EnvelopeSession) discardDraftLocked(ctx context.Context) {
	if s.drafts == nil {
		return
	}
	if err := s.drafts.Discard(ctx, s.env.DocumentID); err != nil {
		s.logger.Warn("failed to discard draft after finalization",
			slog.String("document_id", s.env.DocumentID),
			slog.String("error", err.Error()),
		)
	}
}

// SigningURL builds a recipient's signing link from the issued token.
func SigningURL(origin, token, email string) string {
	return fmt.Sprintf("%s/sign/%s?recipient=%s",
		strings.TrimRight(origin, "/"), url.PathEscape(token), url.QueryEscape(email))
}

// CCURL builds a CC recipient's view-only link from the issued token.
func CCURL(origin, token, email string) string {
	return fmt.Sprintf("%s/cc/%s?email=%s",
		strings.TrimRight(origin, "/"), url.PathEscape(token), url.QueryEscape(email))
}

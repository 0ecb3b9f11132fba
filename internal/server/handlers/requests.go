package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/envelope"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/session"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/store"
)

// LinkResolver resolves issued link tokens to their stored records and
// advances envelope state when a request completes.
type LinkResolver interface {
	GetRequestByToken(ctx context.Context, uniqueID string) (store.RequestRecord, bool, error)
	GetCCByToken(ctx context.Context, uniqueID string) (store.CCRecord, bool, error)
	CompleteRequest(ctx context.Context, uniqueID string) error
}

// IssueResponse is the issuance endpoint's payload: the per-recipient
// records plus the ready-to-send links built from the public origin.
type IssueResponse struct {
	session.IssuanceResult
	SigningLinks []session.SigningLink `json:"signingLinks"`
	CCLinks      []session.CCLink      `json:"ccLinks"`
}

// HandleIssueRequests godoc
//
//	@Summary		Issue signature requests
//	@Description	Creates one signature-request record per recipient and one view-only record per CC recipient.
//	@Description
//	@Description	The envelope checksum is the idempotency key: re-posting identical envelope content returns the
//	@Description	records issued the first time. Sequential envelopes notify only the first recipient; the rest wait
//	@Description	until the prior recipient completes.
//	@Tags			SignatureRequests
//	@Accept			json
//	@Produce		json
//	@Param			request	body		session.IssuanceRequest	true	"Issuance request"
//	@Success		201		{object}	IssueResponse			"Issued records and links"
//	@Failure		400		{object}	ErrorResponse			"Invalid issuance request"
//	@Router			/api/v1/signature-requests [post]
func HandleIssueRequests(issuer session.IssuanceService, publicOrigin string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req session.IssuanceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, r, envelope.WrapValidationError(err, "malformed issuance payload"))
			return
		}
		if err := validateIssuance(req); err != nil {
			RespondWithError(w, r, err)
			return
		}

		result, err := issuer.Issue(r.Context(), req)
		if err != nil {
			RespondWithError(w, r, envelope.WrapFinalizationError(err, "failed to issue signature requests"))
			return
		}

		resp := IssueResponse{IssuanceResult: result}
		for _, issued := range result.SignatureRequests {
			resp.SigningLinks = append(resp.SigningLinks, session.SigningLink{
				Recipient: issued.Recipient,
				Email:     issued.Email,
				URL:       session.SigningURL(publicOrigin, issued.UniqueID, issued.Email),
				Status:    issued.Status,
			})
		}
		for _, cc := range result.CCRecipients {
			resp.CCLinks = append(resp.CCLinks, session.CCLink{
				Name:  cc.Name,
				Email: cc.Email,
				URL:   session.CCURL(publicOrigin, cc.UniqueID, cc.Email),
			})
		}

		RespondWithJSON(w, http.StatusCreated, resp)
	}
}

func validateIssuance(req session.IssuanceRequest) error {
	if req.DocumentID == "" {
		return envelope.NewValidationError("documentId is required")
	}
	if req.Checksum == "" {
		return envelope.NewValidationError("checksum is required")
	}
	if len(req.Recipients) == 0 {
		return envelope.NewValidationError("at least one recipient is required")
	}
	for _, r := range req.Recipients {
		if r.Name == "" || !envelope.ValidEmail(r.Email) {
			return envelope.NewValidationError("every recipient needs a name and a valid email")
		}
	}
	if len(req.SignatureFields) == 0 {
		return envelope.NewValidationError("at least one field is required")
	}
	for _, f := range req.SignatureFields {
		if err := envelope.ValidateField(f); err != nil {
			return err
		}
		if f.RecipientIndex >= len(req.Recipients) {
			return envelope.NewValidationError("field " + f.ID + " is assigned to a recipient that does not exist")
		}
	}
	return nil
}

// SignLinkResponse describes the request record behind a signing link.
type SignLinkResponse struct {
	DocumentID string    `json:"documentId"`
	Recipient  string    `json:"recipient"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	ExpiresAt  time.Time `json:"expiresAt"`

	// LinkToken carries the Ed25519-signed claims for offline verification
	// against /.well-known/jwks.json.
	LinkToken string `json:"linkToken,omitempty"`
}

// HandleResolveSignLink godoc
//
//	@Summary		Resolve signing link
//	@Description	Resolves a signing-link token to its request record.
//	@Description
//	@Description	Expired links are rejected. On a sequential envelope a recipient whose turn has not come gets 409
//	@Description	until the prior recipient completes.
//	@Tags			SignatureRequests
//	@Produce		json
//	@Param			token	path		string				true	"Signing link token"
//	@Success		200		{object}	SignLinkResponse	"Request record"
//	@Failure		404		{object}	ErrorResponse		"Unknown token"
//	@Failure		409		{object}	ErrorResponse		"Not this recipient's turn yet"
//	@Failure		410		{object}	ErrorResponse		"Link expired"
//	@Router			/sign/{token} [get]
func HandleResolveSignLink(resolver LinkResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")

		record, ok, err := resolver.GetRequestByToken(r.Context(), token)
		if err != nil {
			RespondWithError(w, r, envelope.WrapPersistenceError(err, "failed to resolve signing link"))
			return
		}
		if !ok {
			RespondWithError(w, r, envelope.NewReferenceError("unknown signing link"))
			return
		}
		if time.Now().After(record.ExpiresAt) {
			RespondWithJSON(w, http.StatusGone, &ErrorResponse{
				StatusCode:    http.StatusGone,
				Code:          string(envelope.ErrCodeValidation),
				Error:         "this signing link has expired",
				ErrorDateTime: time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
		if record.Status == session.StatusWaiting {
			RespondWithJSON(w, http.StatusConflict, &ErrorResponse{
				StatusCode:    http.StatusConflict,
				Code:          string(envelope.ErrCodeValidation),
				Error:         "waiting for earlier recipients to sign",
				ErrorDateTime: time.Now().UTC().Format(time.RFC3339),
			})
			return
		}

		RespondWithJSON(w, http.StatusOK, SignLinkResponse{
			DocumentID: record.DocumentID,
			Recipient:  record.RecipientName,
			Email:      record.RecipientEmail,
			Status:     record.Status,
			ExpiresAt:  record.ExpiresAt,
			LinkToken:  record.LinkToken,
		})
	}
}

// CCLinkResponse describes the view-only record behind a CC link.
type CCLinkResponse struct {
	DocumentID string `json:"documentId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	NotifyWhen string `json:"notifyWhen"`
	LinkToken  string `json:"linkToken,omitempty"`
}

// HandleResolveCCLink godoc
//
//	@Summary		Resolve CC link
//	@Description	Resolves a view-only CC link token to its record.
//	@Tags			SignatureRequests
//	@Produce		json
//	@Param			token	path		string			true	"CC link token"
//	@Success		200		{object}	CCLinkResponse	"CC record"
//	@Failure		404		{object}	ErrorResponse	"Unknown token"
//	@Router			/cc/{token} [get]
func HandleResolveCCLink(resolver LinkResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")

		record, ok, err := resolver.GetCCByToken(r.Context(), token)
		if err != nil {
			RespondWithError(w, r, envelope.WrapPersistenceError(err, "failed to resolve cc link"))
			return
		}
		if !ok {
			RespondWithError(w, r, envelope.NewReferenceError("unknown cc link"))
			return
		}

		RespondWithJSON(w, http.StatusOK, CCLinkResponse{
			DocumentID: record.DocumentID,
			Name:       record.Name,
			Email:      record.Email,
			NotifyWhen: record.NotifyWhen,
			LinkToken:  record.LinkToken,
		})
	}
}

// HandleCompleteRequest godoc
//
//	@Summary		Complete signature request
//	@Description	Marks a signature request completed. On a sequential envelope the next waiting recipient becomes pending.
//	@Tags			SignatureRequests
//	@Param			token	path	string	true	"Signing link token"
//	@Success		204		"Completed"
//	@Failure		404		{object}	ErrorResponse	"Unknown or already completed request"
//	@Router			/api/v1/signature-requests/{token}/complete [post]
func HandleCompleteRequest(resolver LinkResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")

		if err := resolver.CompleteRequest(r.Context(), token); err != nil {
			RespondWithError(w, r, envelope.NewReferenceError(err.Error()))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/envelope"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/session"
)

// HandleGetDraft godoc
//
//	@Summary		Get draft
//	@Description	Returns the most recent autosaved draft for a document.
//	@Tags			Drafts
//	@Produce		json
//	@Param			documentID	path		string			true	"Document ID"
//	@Success		200			{object}	envelope.Draft	"Draft snapshot"
//	@Failure		404			{object}	ErrorResponse	"No draft for this document"
//	@Router			/api/v1/drafts/{documentID} [get]
func HandleGetDraft(drafts session.DraftStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		documentID := chi.URLParam(r, "documentID")

		draft, ok, err := drafts.Load(r.Context(), documentID)
		if err != nil {
			RespondWithError(w, r, envelope.WrapPersistenceError(err, "failed to load draft"))
			return
		}
		if !ok {
			RespondWithError(w, r, envelope.NewReferenceError("no draft for document "+documentID))
			return
		}
		RespondWithJSON(w, http.StatusOK, draft)
	}
}

// HandleSaveDraft godoc
//
//	@Summary		Save draft
//	@Description	Upserts the draft snapshot for a document and returns it with the server-assigned lastSaved timestamp.
//	@Tags			Drafts
//	@Accept			json
//	@Produce		json
//	@Param			documentID	path		string			true	"Document ID"
//	@Param			draft		body		envelope.Draft	true	"Draft snapshot"
//	@Success		200			{object}	envelope.Draft	"Saved draft"
//	@Failure		400			{object}	ErrorResponse	"Malformed draft payload"
//	@Router			/api/v1/drafts/{documentID} [put]
func HandleSaveDraft(drafts session.DraftStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		documentID := chi.URLParam(r, "documentID")

		var draft envelope.Draft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			RespondWithError(w, r, envelope.WrapValidationError(err, "malformed draft payload"))
			return
		}
		if draft.DocumentID == "" {
			draft.DocumentID = documentID
		}
		if draft.DocumentID != documentID {
			RespondWithError(w, r, envelope.NewValidationError("draft documentId does not match the URL"))
			return
		}

		lastSaved, err := drafts.Save(r.Context(), draft)
		if err != nil {
			RespondWithError(w, r, envelope.WrapPersistenceError(err, "failed to save draft"))
			return
		}
		draft.LastSaved = lastSaved
		RespondWithJSON(w, http.StatusOK, draft)
	}
}

// HandleDiscardDraft godoc
//
//	@Summary		Discard draft
//	@Description	Deletes the draft for a document. Deleting a missing draft succeeds.
//	@Tags			Drafts
//	@Param			documentID	path	string	true	"Document ID"
//	@Success		204			"Draft discarded"
//	@Router			/api/v1/drafts/{documentID} [delete]
func HandleDiscardDraft(drafts session.DraftStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		documentID := chi.URLParam(r, "documentID")

		if err := drafts.Discard(r.Context(), documentID); err != nil {
			RespondWithError(w, r, envelope.WrapPersistenceError(err, "failed to discard draft"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

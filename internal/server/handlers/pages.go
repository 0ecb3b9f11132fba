package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/envelope"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/session"
)

// PageMetadataStore persists page metadata registered by the rendering
// pipeline and serves it to editing sessions.
type PageMetadataStore interface {
	SavePageMetadata(ctx context.Context, preview session.PagePreview) error
	GetPageMetadata(ctx context.Context, documentID string) (session.PagePreview, bool, error)
}

// HandleGetPageMetadata godoc
//
//	@Summary		Get page metadata
//	@Description	Returns the page count and preview URLs for a document. Editing sessions fetch this once on entering the placement step.
//	@Tags			Documents
//	@Produce		json
//	@Param			documentID	path		string				true	"Document ID"
//	@Success		200			{object}	session.PagePreview	"Page metadata"
//	@Failure		404			{object}	ErrorResponse		"No metadata for this document"
//	@Router			/api/v1/documents/{documentID}/pages [get]
func HandleGetPageMetadata(pages PageMetadataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		documentID := chi.URLParam(r, "documentID")

		preview, ok, err := pages.GetPageMetadata(r.Context(), documentID)
		if err != nil {
			RespondWithError(w, r, envelope.WrapPersistenceError(err, "failed to load page metadata"))
			return
		}
		if !ok {
			RespondWithError(w, r, envelope.NewReferenceError("no page metadata for document "+documentID))
			return
		}
		RespondWithJSON(w, http.StatusOK, preview)
	}
}

// HandleSavePageMetadata godoc
//
//	@Summary		Register page metadata
//	@Description	Records the page count and preview URLs for a rendered document. Called by the rendering pipeline; rendering itself is out of scope for this service.
//	@Tags			Documents
//	@Accept			json
//	@Param			documentID	path	string				true	"Document ID"
//	@Param			preview		body	session.PagePreview	true	"Page metadata"
//	@Success		204			"Metadata stored"
//	@Failure		400			{object}	ErrorResponse	"Malformed or invalid metadata"
//	@Router			/api/v1/documents/{documentID}/pages [put]
func HandleSavePageMetadata(pages PageMetadataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		documentID := chi.URLParam(r, "documentID")

		var preview session.PagePreview
		if err := json.NewDecoder(r.Body).Decode(&preview); err != nil {
			RespondWithError(w, r, envelope.WrapValidationError(err, "malformed page metadata payload"))
			return
		}
		if preview.DocumentID == "" {
			preview.DocumentID = documentID
		}
		if preview.DocumentID != documentID {
			RespondWithError(w, r, envelope.NewValidationError("documentId does not match the URL"))
			return
		}
		if preview.PageCount < 1 {
			RespondWithError(w, r, envelope.NewValidationError("pageCount must be at least 1"))
			return
		}

		if err := pages.SavePageMetadata(r.Context(), preview); err != nil {
			RespondWithError(w, r, envelope.WrapPersistenceError(err, "failed to save page metadata"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleReleasePageMetadata godoc
//
//	@Summary		Release page preview
//	@Description	Releases the preview resource acquired for an editing session. Releasing twice is harmless.
//	@Tags			Documents
//	@Param			documentID	path	string	true	"Document ID"
//	@Success		204			"Released"
//	@Router			/api/v1/documents/{documentID}/pages [delete]
func HandleReleasePageMetadata() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// metadata is cheap to keep; release only acknowledges the session
		// teardown so clients can fire and forget
		w.WriteHeader(http.StatusNoContent)
	}
}

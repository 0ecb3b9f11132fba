package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/envelope"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/session"
)

// HandleGetTemplate godoc
//
//	@Summary		Get template
//	@Description	Returns the reusable template saved for a document.
//	@Tags			Templates
//	@Produce		json
//	@Param			documentID	path		string				true	"Document ID"
//	@Success		200			{object}	envelope.Template	"Template definition"
//	@Failure		404			{object}	ErrorResponse		"No template for this document"
//	@Router			/api/v1/templates/{documentID} [get]
func HandleGetTemplate(templates session.TemplateStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		documentID := chi.URLParam(r, "documentID")

		tpl, ok, err := templates.LoadTemplate(r.Context(), documentID)
		if err != nil {
			RespondWithError(w, r, envelope.WrapPersistenceError(err, "failed to load template"))
			return
		}
		if !ok {
			RespondWithError(w, r, envelope.NewReferenceError("no template for document "+documentID))
			return
		}
		RespondWithJSON(w, http.StatusOK, tpl)
	}
}

// HandleSaveTemplate godoc
//
//	@Summary		Save template
//	@Description	Upserts the reusable template definition for a document. Template recipients are named roles; emails are optional.
//	@Tags			Templates
//	@Accept			json
//	@Produce		json
//	@Param			documentID	path		string				true	"Document ID"
//	@Param			template	body		envelope.Template	true	"Template definition"
//	@Success		200			{object}	envelope.Template	"Saved template"
//	@Failure		400			{object}	ErrorResponse		"Malformed or invalid template"
//	@Router			/api/v1/templates/{documentID} [put]
func HandleSaveTemplate(templates session.TemplateStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		documentID := chi.URLParam(r, "documentID")

		var tpl envelope.Template
		if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
			RespondWithError(w, r, envelope.WrapValidationError(err, "malformed template payload"))
			return
		}
		if tpl.DocumentID == "" {
			tpl.DocumentID = documentID
		}
		if tpl.DocumentID != documentID {
			RespondWithError(w, r, envelope.NewValidationError("template documentId does not match the URL"))
			return
		}

		named := false
		for _, role := range tpl.Recipients {
			if role.Name != "" {
				named = true
				break
			}
		}
		if !named {
			RespondWithError(w, r, envelope.NewValidationError("template needs at least one named role"))
			return
		}
		for _, f := range tpl.SignatureFields {
			if err := envelope.ValidateField(f); err != nil {
				RespondWithError(w, r, err)
				return
			}
		}

		if err := templates.SaveTemplate(r.Context(), tpl); err != nil {
			RespondWithError(w, r, envelope.WrapPersistenceError(err, "failed to save template"))
			return
		}
		RespondWithJSON(w, http.StatusOK, tpl)
	}
}

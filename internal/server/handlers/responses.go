package handlers

// responses.go maps engine errors to HTTP error responses and provides the
// JSON response helpers shared by the handlers and middleware.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/envelope"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/logger"
)

// ErrorResponse is the API error payload.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code"`
	Error      string `json:"error"`

	// RequestID correlates the response with the server-side request log.
	RequestID string `json:"requestId,omitempty"`

	ErrorDateTime string `json:"errorDateTime"`
}

// MapErrorToResponse converts an engine error into an API error response.
// Validation failures surface their message to the client; everything else
// is sanitized and the detail stays in the server log.
func MapErrorToResponse(err error, r *http.Request) *ErrorResponse {
	requestID := middleware.GetReqID(r.Context())

	statusCode := http.StatusInternalServerError
	code := string(envelope.ErrCodeInternal)
	message := "an internal error occurred"

	var envErr *envelope.EnvelopeError
	if errors.As(err, &envErr) {
		code = string(envErr.Code())
		switch envErr.Code() {
		case envelope.ErrCodeValidation:
			statusCode = http.StatusBadRequest
			message = err.Error()
		case envelope.ErrCodeReference:
			statusCode = http.StatusNotFound
			message = err.Error()
		case envelope.ErrCodePersistence:
			statusCode = http.StatusServiceUnavailable
			message = "storage temporarily unavailable"
		case envelope.ErrCodeFinalization:
			statusCode = http.StatusBadGateway
			message = "finalization failed"
		}
	}

	return &ErrorResponse{
		StatusCode:    statusCode,
		Code:          code,
		Error:         message,
		RequestID:     requestID,
		ErrorDateTime: time.Now().UTC().Format(time.RFC3339),
	}
}

// RespondWithError logs the full error server-side and sends the sanitized
// API error response.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	resp := MapErrorToResponse(err, r)

	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Warn("request failed",
		slog.String("error", err.Error()),
		slog.Int("status_code", resp.StatusCode),
		slog.String("error_code", resp.Code),
		slog.String("request_id", resp.RequestID),
	)

	RespondWithJSON(w, resp.StatusCode, resp)
}

// RespondWithJSON sends a JSON response with the given status code.
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			// headers are already written, just log
			slog.Error("failed to encode JSON response",
				slog.String("error", err.Error()),
			)
		}
	}
}

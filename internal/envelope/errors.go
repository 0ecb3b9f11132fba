package envelope

// errors.go defines the error taxonomy shared by the envelope and session packages.

import (
	"fmt"
)

// ErrorCode classifies envelope engine failures.
type ErrorCode string

const (
	// ErrCodeValidation indicates a step-gate or field validation failure.
	// These are recoverable locally: they block a step transition and are
	// surfaced as a user-facing message, never logged as a system fault.
	ErrCodeValidation ErrorCode = "VAL"

	// ErrCodePersistence indicates a draft save/load failure.
	// Recovered by retrying on the next debounce tick; never blocks editing.
	ErrCodePersistence ErrorCode = "PER"

	// ErrCodeFinalization indicates a network/server rejection while issuing
	// signature requests or saving a template. The session stays in the
	// review step so the operation can be retried.
	ErrCodeFinalization ErrorCode = "FIN"

	// ErrCodeReference indicates a dangling back-reference (a conditional
	// dependsOn or a field recipientIndex pointing at nothing). These degrade
	// gracefully rather than failing the operation.
	ErrCodeReference ErrorCode = "REF"

	// ErrCodeInternal indicates unexpected internal failures.
	ErrCodeInternal ErrorCode = "INT"
)

// EnvelopeError is the structured error type returned by the envelope engine.
type EnvelopeError struct {
	// code is the error code
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error
}

func (e *EnvelopeError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *EnvelopeError) Code() ErrorCode { return e.code }
func (e *EnvelopeError) Unwrap() error   { return e.wrapped }

// NewValidationError creates a step-gate validation error.
// Use this when an envelope fails the checks required to move forward a step
// or to finalize.
func NewValidationError(msg string) error {
	return &EnvelopeError{code: ErrCodeValidation, message: msg}
}

// WrapValidationError wraps an existing error as a validation error,
// adding context while preserving the original error for inspection.
func WrapValidationError(err error, msg string) error {
	return &EnvelopeError{code: ErrCodeValidation, message: msg, wrapped: err}
}

// NewPersistenceError creates a draft persistence error.
// Use this for draft save/load failures; they are surfaced as a transient
// state and never fatal to the editing session.
func NewPersistenceError(msg string) error {
	return &EnvelopeError{code: ErrCodePersistence, message: msg}
}

// WrapPersistenceError wraps an existing error as a persistence error.
func WrapPersistenceError(err error, msg string) error {
	return &EnvelopeError{code: ErrCodePersistence, message: msg, wrapped: err}
}

// NewFinalizationError creates a finalization error.
// Use this when signature-request issuance or a template save is rejected.
func NewFinalizationError(msg string) error {
	return &EnvelopeError{code: ErrCodeFinalization, message: msg}
}

// WrapFinalizationError wraps an existing error as a finalization error.
func WrapFinalizationError(err error, msg string) error {
	return &EnvelopeError{code: ErrCodeFinalization, message: msg, wrapped: err}
}

// NewReferenceError creates a dangling-reference error.
func NewReferenceError(msg string) error {
	return &EnvelopeError{code: ErrCodeReference, message: msg}
}

// NewInternalError creates an internal error for unexpected failures.
func NewInternalError(msg string) error {
	return &EnvelopeError{code: ErrCodeInternal, message: msg}
}

// WrapInternalError wraps an existing error as an internal error.
func WrapInternalError(err error, msg string) error {
	return &EnvelopeError{code: ErrCodeInternal, message: msg, wrapped: err}
}

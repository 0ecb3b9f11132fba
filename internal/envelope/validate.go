package envelope

// validate.go implements the step-gate validation rules. Forward step
// transitions and finalization are gated on these; backward transitions
// never are.

import (
	"fmt"
	"net/mail"
)

// ValidEmail reports whether addr parses as a bare RFC 5322 address.
func ValidEmail(addr string) bool {
	if addr == "" {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	return err == nil && parsed.Address == addr
}

// ValidateForStep checks whether the envelope satisfies the requirements to
// leave the given step. It returns a ValidationError describing the first
// failure, or nil.
//
// Rules:
//   - Step 1, request modes: at least one recipient with both a name and a
//     well-formed email; every named recipient must carry a valid email.
//   - Step 1, template mode: at least one recipient with a name (emails are
//     role placeholders and may be empty).
//   - Step 2: no gate.
//   - Step 3: at least one placed field, and every field individually valid.
func ValidateForStep(e *Envelope, step Step, mode Mode) error {
	switch step {
	case StepRecipients:
		return validateRecipients(e, mode)
	case StepPlacement:
		return nil
	case StepReview:
		return validateReview(e)
	default:
		return NewValidationError(fmt.Sprintf("unknown step: %d", step))
	}
}

func validateRecipients(e *Envelope, mode Mode) error {
	if len(e.Recipients) == 0 {
		return NewValidationError("add at least one recipient")
	}

	if mode.ForTemplate() {
		for _, r := range e.Recipients {
			if r.Name != "" {
				return nil
			}
		}
		return NewValidationError("add at least one named role")
	}

	complete := 0
	for i, r := range e.Recipients {
		if r.Name == "" && r.Email == "" {
			continue // blank rows are ignored, not errors
		}
		if r.Name == "" {
			return NewValidationError(fmt.Sprintf("recipient %d is missing a name", i+1))
		}
		if !ValidEmail(r.Email) {
			return NewValidationError(fmt.Sprintf("recipient %q needs a valid email address", r.Name))
		}
		complete++
	}
	if complete == 0 {
		return NewValidationError("add at least one recipient with a name and email")
	}
	return nil
}

func validateReview(e *Envelope) error {
	if len(e.SignatureFields) == 0 {
		return NewValidationError("place at least one field before sending")
	}
	for _, f := range e.SignatureFields {
		if err := ValidateField(f); err != nil {
			return err
		}
		if f.RecipientIndex >= len(e.Recipients) {
			return NewValidationError(fmt.Sprintf("field %s is assigned to a recipient that no longer exists", f.ID))
		}
	}
	return nil
}

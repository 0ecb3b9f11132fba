package envelope

import (
	"testing"
)

func TestValidateForStepRecipients(t *testing.T) {
	tests := []struct {
		name       string
		recipients []Recipient
		mode       Mode
		wantErr    bool
	}{
		{
			name:       "send mode with complete recipient",
			recipients: []Recipient{{Name: "Ana", Email: "ana@x.com"}},
			mode:       NewRequest,
			wantErr:    false,
		},
		{
			name:       "send mode with missing email",
			recipients: []Recipient{{Name: "Ana", Email: ""}},
			mode:       NewRequest,
			wantErr:    true,
		},
		{
			name:       "send mode with malformed email",
			recipients: []Recipient{{Name: "Ana", Email: "not-an-email"}},
			mode:       NewRequest,
			wantErr:    true,
		},
		{
			name:       "template mode accepts role without email",
			recipients: []Recipient{{Name: "Tenant", Email: ""}},
			mode:       TemplateAuthoring,
			wantErr:    false,
		},
		{
			name:       "template mode still needs a name",
			recipients: []Recipient{{Name: "", Email: ""}},
			mode:       TemplateAuthoring,
			wantErr:    true,
		},
		{
			name:       "no recipients at all",
			recipients: nil,
			mode:       NewRequest,
			wantErr:    true,
		},
		{
			name: "blank rows are skipped but one complete recipient suffices",
			recipients: []Recipient{
				{Name: "", Email: ""},
				{Name: "Ben", Email: "ben@x.com"},
			},
			mode:    NewRequest,
			wantErr: false,
		},
		{
			name:       "resumed draft validates like send",
			recipients: []Recipient{{Name: "Ana", Email: ""}},
			mode:       ResumedDraft,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := New("doc-1")
			env.Recipients = tt.recipients

			err := ValidateForStep(env, StepRecipients, tt.mode)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateForStepPlacementHasNoGate(t *testing.T) {
	env := New("doc-1")
	if err := ValidateForStep(env, StepPlacement, NewRequest); err != nil {
		t.Errorf("step 2 should never gate, got %v", err)
	}
}

func TestValidateForStepReview(t *testing.T) {
	env := New("doc-1")
	env.Recipients = []Recipient{{Name: "Ana", Email: "ana@x.com"}}

	// no fields placed
	if err := ValidateForStep(env, StepReview, NewRequest); err == nil {
		t.Error("expected error when no fields are placed")
	}

	env.SignatureFields = []SignatureField{
		{ID: "f1", Type: FieldTypeSignature, X: 10, Y: 10, Page: 1, RecipientIndex: 0},
	}
	if err := ValidateForStep(env, StepReview, NewRequest); err != nil {
		t.Errorf("unexpected error with a valid field: %v", err)
	}

	// dropdown with a single option is not a valid field
	env.SignatureFields = append(env.SignatureFields, SignatureField{
		ID: "f2", Type: FieldTypeDropdown, X: 5, Y: 5, Page: 1, RecipientIndex: 0,
		Options: []string{"only", ""},
	})
	if err := ValidateForStep(env, StepReview, NewRequest); err == nil {
		t.Error("expected error for dropdown with fewer than two non-empty options")
	}

	// field pointing past the recipient list
	env.SignatureFields = []SignatureField{
		{ID: "f3", Type: FieldTypeText, X: 5, Y: 5, Page: 1, RecipientIndex: 4},
	}
	if err := ValidateForStep(env, StepReview, NewRequest); err == nil {
		t.Error("expected error for out-of-range recipientIndex")
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"ana@x.com", "a.b+c@example.co.uk"}
	invalid := []string{"", "ana", "ana@", "Ana <ana@x.com>"}

	for _, addr := range valid {
		if !ValidEmail(addr) {
			t.Errorf("expected %q to be valid", addr)
		}
	}
	for _, addr := range invalid {
		if ValidEmail(addr) {
			t.Errorf("expected %q to be invalid", addr)
		}
	}
}

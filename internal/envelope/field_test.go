package envelope

import (
	"testing"
)

func TestNewFieldDefaults(t *testing.T) {
	tests := []struct {
		name  string
		ftype FieldType
		check func(t *testing.T, f SignatureField)
	}{
		{
			name:  "checkbox starts unchecked",
			ftype: FieldTypeCheckbox,
			check: func(t *testing.T, f SignatureField) {
				if f.DefaultChecked {
					t.Error("DefaultChecked should be false")
				}
			},
		},
		{
			name:  "attachment is required with a default type",
			ftype: FieldTypeAttachment,
			check: func(t *testing.T, f SignatureField) {
				if !f.IsRequired {
					t.Error("IsRequired should default to true")
				}
				if f.AttachmentType != defaultAttachmentType {
					t.Errorf("AttachmentType = %q", f.AttachmentType)
				}
			},
		},
		{
			name:  "radio gets placeholder options",
			ftype: FieldTypeRadio,
			check: func(t *testing.T, f SignatureField) {
				if len(f.Options) != 3 {
					t.Errorf("Options = %v", f.Options)
				}
			},
		},
		{
			name:  "signature gets signature dimensions",
			ftype: FieldTypeSignature,
			check: func(t *testing.T, f SignatureField) {
				if f.Width != defaultSignatureWidth || f.Height != defaultSignatureHeight {
					t.Errorf("dimensions = %vx%v", f.Width, f.Height)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewField(tt.ftype, 1)
			if f.ID == "" {
				t.Error("field id must be assigned")
			}
			if f.Type != tt.ftype {
				t.Errorf("Type = %s", f.Type)
			}
			if f.RecipientIndex != 1 {
				t.Errorf("RecipientIndex = %d", f.RecipientIndex)
			}
			tt.check(t, f)
		})
	}
}

func TestValidateField(t *testing.T) {
	valid := SignatureField{ID: "f1", Type: FieldTypeText, X: 10, Y: 20, Page: 1}

	tests := []struct {
		name    string
		mutate  func(f *SignatureField)
		wantErr bool
	}{
		{name: "valid field", mutate: func(f *SignatureField) {}, wantErr: false},
		{name: "missing id", mutate: func(f *SignatureField) { f.ID = "" }, wantErr: true},
		{name: "bad type", mutate: func(f *SignatureField) { f.Type = "hologram" }, wantErr: true},
		{name: "x out of range", mutate: func(f *SignatureField) { f.X = 101 }, wantErr: true},
		{name: "negative y", mutate: func(f *SignatureField) { f.Y = -1 }, wantErr: true},
		{name: "page zero", mutate: func(f *SignatureField) { f.Page = 0 }, wantErr: true},
		{
			name: "dropdown with two options is valid",
			mutate: func(f *SignatureField) {
				f.Type = FieldTypeDropdown
				f.Options = []string{"a", "b"}
			},
			wantErr: false,
		},
		{
			name: "dropdown with one non-empty option",
			mutate: func(f *SignatureField) {
				f.Type = FieldTypeDropdown
				f.Options = []string{"a", ""}
			},
			wantErr: true,
		},
		{
			name: "radio with no options",
			mutate: func(f *SignatureField) {
				f.Type = FieldTypeRadio
				f.Options = nil
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)

			err := ValidateField(f)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRecipientColorRotation(t *testing.T) {
	if RecipientColor(0) == "" {
		t.Fatal("color must not be empty")
	}
	if RecipientColor(0) != RecipientColor(len(recipientPalette)) {
		t.Error("palette should wrap around")
	}
	if RecipientColor(-3) != RecipientColor(0) {
		t.Error("negative positions clamp to the first color")
	}
}

func TestFieldsChecksumStable(t *testing.T) {
	a := fieldSet("a", "b")
	b := CloneFields(a)

	sumA, err := FieldsChecksum(a)
	if err != nil {
		t.Fatal(err)
	}
	sumB, err := FieldsChecksum(b)
	if err != nil {
		t.Fatal(err)
	}
	if sumA != sumB {
		t.Error("identical field sets must produce identical checksums")
	}

	b[0].X = 42
	sumC, err := FieldsChecksum(b)
	if err != nil {
		t.Fatal(err)
	}
	if sumC == sumA {
		t.Error("different field sets must produce different checksums")
	}

	empty, err := FieldsChecksum(nil)
	if err != nil {
		t.Fatal(err)
	}
	if empty == "" {
		t.Error("nil field set should still checksum")
	}
}

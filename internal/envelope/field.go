package envelope

// field.go defines the typed, positioned, recipient-owned interactive
// elements that get placed on a document page.

import (
	"slices"

	"github.com/google/uuid"
)

// FieldType identifies the kind of input a signature field collects.
type FieldType string

const (
	FieldTypeSignature  FieldType = "signature"
	FieldTypeDate       FieldType = "date"
	FieldTypeText       FieldType = "text"
	FieldTypeCheckbox   FieldType = "checkbox"
	FieldTypeAttachment FieldType = "attachment"
	FieldTypeDropdown   FieldType = "dropdown"
	FieldTypeRadio      FieldType = "radio"
)

var fieldTypes = []FieldType{
	FieldTypeSignature,
	FieldTypeDate,
	FieldTypeText,
	FieldTypeCheckbox,
	FieldTypeAttachment,
	FieldTypeDropdown,
	FieldTypeRadio,
}

// ValidFieldType reports whether t is one of the supported field types.
func ValidFieldType(t FieldType) bool {
	return slices.Contains(fieldTypes, t)
}

// ConditionOperator is the comparison applied when a field's conditional
// rule is evaluated against its dependency's current value.
type ConditionOperator string

const (
	// ConditionChecked / ConditionUnchecked apply only to checkbox dependencies.
	ConditionChecked   ConditionOperator = "checked"
	ConditionUnchecked ConditionOperator = "unchecked"

	// String comparisons are case-sensitive.
	ConditionEquals    ConditionOperator = "equals"
	ConditionNotEquals ConditionOperator = "not_equals"
	ConditionContains  ConditionOperator = "contains"
)

// Conditional makes a field's visibility depend on another field's value.
type Conditional struct {
	Enabled bool `json:"enabled"`

	// DependsOn is the id of the field whose value drives this rule.
	DependsOn string `json:"dependsOn"`

	Condition ConditionOperator `json:"condition"`

	// Value is the comparison operand for equals/not_equals/contains.
	Value string `json:"value,omitempty"`
}

// SignatureField is a typed interactive element placed at page-relative
// percentage coordinates and owned by one recipient.
type SignatureField struct {
	ID   string    `json:"id"`
	Type FieldType `json:"type"`

	// X and Y are percentages (0-100) of a single page's horizontal and
	// vertical extent. Y is relative to the page the field sits on, not to
	// the whole multi-page document.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Page is a 1-based page index derived at placement time.
	Page int `json:"page"`

	// RecipientIndex is a back-reference by position: it denotes the
	// recipient currently at this ordinal position in the recipient list.
	// RemoveRecipient reconciles these references when a recipient is
	// removed.
	RecipientIndex int `json:"recipientIndex"`

	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Label  string  `json:"label,omitempty"`

	// Checkbox fields only.
	DefaultChecked bool `json:"defaultChecked,omitempty"`

	// Attachment fields only.
	AttachmentLabel string `json:"attachmentLabel,omitempty"`
	AttachmentType  string `json:"attachmentType,omitempty"`
	IsRequired      bool   `json:"isRequired,omitempty"`

	// Dropdown and radio fields only. Must contain at least two non-empty
	// entries before the field is considered valid.
	Options []string `json:"options,omitempty"`

	DefaultValue string `json:"defaultValue,omitempty"`

	Conditional *Conditional `json:"conditional,omitempty"`
}

// default dimensions (percent width is derived at render time; these are px)
const (
	defaultSignatureWidth  = 160.0
	defaultSignatureHeight = 60.0
	defaultInputWidth      = 150.0
	defaultInputHeight     = 32.0
	defaultCheckboxSize    = 24.0
)

// defaultAttachmentType accepts any uploaded file unless the owner narrows it.
const defaultAttachmentType = "any"

// NewField creates a field of the given type with its type-specific
// defaults applied. Position is set separately by PlaceField.
func NewField(t FieldType, recipientIndex int) SignatureField {
	f := SignatureField{
		ID:             uuid.NewString(),
		Type:           t,
		RecipientIndex: recipientIndex,
	}

	switch t {
	case FieldTypeSignature:
		f.Width = defaultSignatureWidth
		f.Height = defaultSignatureHeight
	case FieldTypeCheckbox:
		f.Width = defaultCheckboxSize
		f.Height = defaultCheckboxSize
		f.DefaultChecked = false
	case FieldTypeAttachment:
		f.Width = defaultInputWidth
		f.Height = defaultInputHeight
		f.IsRequired = true
		f.AttachmentType = defaultAttachmentType
	case FieldTypeDropdown, FieldTypeRadio:
		f.Width = defaultInputWidth
		f.Height = defaultInputHeight
		f.Options = []string{"Option 1", "Option 2", "Option 3"}
	default:
		f.Width = defaultInputWidth
		f.Height = defaultInputHeight
	}

	return f
}

// ValidateField checks a single field's internal consistency (not its
// recipient back-reference, which depends on the envelope).
func ValidateField(f SignatureField) error {
	if f.ID == "" {
		return NewValidationError("field id is required")
	}
	if !ValidFieldType(f.Type) {
		return NewValidationError("unsupported field type: " + string(f.Type))
	}
	if f.X < 0 || f.X > 100 || f.Y < 0 || f.Y > 100 {
		return NewValidationError("field position must be a page-relative percentage (0-100)")
	}
	if f.Page < 1 {
		return NewValidationError("field page must be 1 or greater")
	}
	if f.Type == FieldTypeDropdown || f.Type == FieldTypeRadio {
		if countNonEmptyOptions(f.Options) < 2 {
			return NewValidationError(string(f.Type) + " field needs at least two non-empty options")
		}
	}
	return nil
}

func countNonEmptyOptions(options []string) int {
	n := 0
	for _, o := range options {
		if o != "" {
			n++
		}
	}
	return n
}

// FindField returns the field with the given id, or false when it is not in
// the slice.
func FindField(fields []SignatureField, id string) (SignatureField, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return SignatureField{}, false
}

// CloneFields returns a deep copy of the field slice. History snapshots and
// command results must never alias the caller's backing arrays.
func CloneFields(fields []SignatureField) []SignatureField {
	if fields == nil {
		return nil
	}
	out := make([]SignatureField, len(fields))
	for i, f := range fields {
		out[i] = f
		out[i].Options = slices.Clone(f.Options)
		if f.Conditional != nil {
			c := *f.Conditional
			out[i].Conditional = &c
		}
	}
	return out
}

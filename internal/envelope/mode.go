package envelope

// Mode is the tagged variant that replaces the original editor's implicit
// "edit"/"send"/"draft" string flag. It determines which sub-flows a session
// exposes and which validation rules apply.
type Mode int

const (
	// TemplateAuthoring edits a reusable template: recipients are named
	// roles, emails are optional, autosave is disabled.
	TemplateAuthoring Mode = iota + 1

	// NewRequest authors a fresh signing request. Autosave-to-draft is
	// enabled.
	NewRequest

	// ResumedDraft resumes a previously autosaved request session. Behaves
	// like NewRequest plus a single draft load on entry.
	ResumedDraft
)

func (m Mode) String() string {
	switch m {
	case TemplateAuthoring:
		return "template"
	case NewRequest:
		return "send"
	case ResumedDraft:
		return "draft"
	default:
		return "unknown"
	}
}

// ForTemplate reports whether the mode authors a template rather than a
// signing request.
func (m Mode) ForTemplate() bool { return m == TemplateAuthoring }

// Autosaves reports whether the draft client may arm its debounce timer in
// this mode. Template authoring never autosaves to the draft store.
func (m Mode) Autosaves() bool { return m == NewRequest || m == ResumedDraft }

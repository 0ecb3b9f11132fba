package envelope

// Recipient is a signing party on an envelope.
//
// Ordinal position in the recipient list is significant: it is the signing
// order when the envelope's signingOrder setting is "sequential", and it is
// what a field's recipientIndex refers back to.
type Recipient struct {
	// Name is required in every mode.
	Name string `json:"name"`

	// Email may be empty while the envelope is being authored as a reusable
	// template (the recipient is a role placeholder). It must be non-empty
	// and well-formed before the envelope is finalized for sending.
	Email string `json:"email"`

	// Role is an optional role label (e.g. "Tenant", "Landlord").
	Role string `json:"role,omitempty"`

	// Color is the display color used to tint this recipient's fields.
	Color string `json:"color"`
}

// CCNotify controls when a CC recipient receives their copy.
type CCNotify string

const (
	CCNotifyCompleted   CCNotify = "completed"
	CCNotifyImmediately CCNotify = "immediately"
)

// CCRecipient receives a view-only copy of the envelope. A CC recipient
// never signs.
type CCRecipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`

	// NotifyWhen is "completed" (after all signers finish) or "immediately".
	NotifyWhen CCNotify `json:"notifyWhen"`
}

// recipientPalette is the rotation of display colors assigned to recipients
// as they are added.
var recipientPalette = []string{
	"#4F46E5", // indigo
	"#059669", // emerald
	"#D97706", // amber
	"#DC2626", // red
	"#7C3AED", // violet
	"#0891B2", // cyan
}

// RecipientColor returns the display color for the recipient at the given
// list position.
func RecipientColor(position int) string {
	if position < 0 {
		position = 0
	}
	return recipientPalette[position%len(recipientPalette)]
}

package interaction

// Kind is the closed set of interaction payload shapes that [Router] supports.
type Kind int

const (
	KindBlockAction Kind = iota
	KindMessageAction
	KindShortcut
	KindViewClosed
	KindViewSubmission
)

func (k Kind) String() string {
	switch k {
	case KindBlockAction:
		return "BlockAction"
	case KindMessageAction:
		return "MessageAction"
	case KindShortcut:
		return "Shortcut"
	case KindViewClosed:
		return "ViewClosed"
	case KindViewSubmission:
		return "ViewSubmission"
	default:
		return "Unknown"
	}
}

// kinds maps the "type" field of interaction payloads to their [Kind].
// Interactive elements in blocks have the type "block_actions",
// and those in legacy message attachments have "interactive_message".
var kinds = map[string]Kind{
	"block_actions":       KindBlockAction,
	"interactive_message": KindBlockAction,
	"message_action":      KindMessageAction,
	"shortcut":            KindShortcut,
	"view_closed":         KindViewClosed,
	"view_submission":     KindViewSubmission,
}

// KindOf returns the [Kind] of a payload's "type" field.
func KindOf(payloadType string) (Kind, bool) {
	k, ok := kinds[payloadType]
	return k, ok
}

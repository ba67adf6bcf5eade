package conversation

import "errors"

// EventKind identifies what a guest did.
type EventKind int

const (
	EventStart  EventKind = iota // /start
	EventHelp                    // /help
	EventStats                   // /stats
	EventRating                  // rating button, Payload is "1".."5"
	EventSkip                    // skip-comment button
	EventText                    // free text, Payload is the message
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventHelp:
		return "help"
	case EventStats:
		return "stats"
	case EventRating:
		return "rating"
	case EventSkip:
		return "skip"
	case EventText:
		return "text"
	default:
		return "unknown"
	}
}

// Event is one inbound guest action, already decoded by the transport.
type Event struct {
	ID       string
	Kind     EventKind
	UserID   int64
	Username string
	Payload  string
}

// Keyboard names the buttons a reply carries.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardRating
	KeyboardSkip
)

// Reply is one message back to the guest.
type Reply struct {
	Text     string
	Keyboard Keyboard
	// Alert answers the pressed button with a popup instead of a chat message.
	Alert bool
	// ReplaceOriginal edits the message whose button was pressed.
	ReplaceOriginal bool
}

var (
	// ErrInvalidRating is a malformed rating selector. The state is not touched.
	ErrInvalidRating = errors.New("rating must be a whole number from 1 to 5")
	// ErrLostSession means completion was reached without a recorded rating.
	ErrLostSession = errors.New("conversation has no rating")
)

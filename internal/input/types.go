package input

import "github.com/dshills/snipstorm/internal/input/key"

// ActionSource indicates the origin of an action.
type ActionSource uint8

const (
	// SourceKeyboard indicates the action originated from keyboard input.
	SourceKeyboard ActionSource = iota
	// SourceAPI indicates the action was dispatched directly.
	SourceAPI
)

// String returns a string representation of the action source.
func (s ActionSource) String() string {
	switch s {
	case SourceKeyboard:
		return "keyboard"
	case SourceAPI:
		return "api"
	default:
		return "unknown"
	}
}

// Action is a bound command resolved from input.
type Action struct {
	// Name is the action identifier, e.g. "snippet.next".
	Name string

	// Args are the binding's fixed arguments.
	Args map[string]any

	// Event is the key that produced the action.
	Event key.Event

	// Mode is the input mode the key was resolved in.
	Mode string

	Source ActionSource
}

// ActionFunc runs an action. It reports whether the action consumed the
// key; an unconsumed key falls through to the host's default handling.
type ActionFunc func(action Action) bool

// Hook intercepts key events before they are resolved.
type Hook interface {
	// PreKeyEvent is called before processing a key event.
	// Return true to consume the event (stop further processing).
	PreKeyEvent(event key.Event, mode string) bool
}

package key

import (
	"time"
	"unicode"
)

// Event is a single key press.
type Event struct {
	Key       Key
	Rune      rune
	Modifiers Modifier
	Timestamp time.Time
}

// NewRuneEvent creates an event for a character key.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods, Timestamp: time.Now()}
}

// NewSpecialEvent creates an event for a non-character key.
func NewSpecialEvent(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods, Timestamp: time.Now()}
}

// IsChar reports whether the event types a printable character: a rune
// with no modifier other than Shift.
func (e Event) IsChar() bool {
	return e.Key == KeyRune && unicode.IsPrint(e.Rune) &&
		!e.Modifiers.Has(ModCtrl|ModAlt|ModMeta)
}

// String returns the event in the form Parse accepts, such as "Tab",
// "Shift+Tab", "Ctrl+Space" or "a".
func (e Event) String() string {
	name := e.Key.String()
	mods := e.Modifiers
	if e.Key == KeyRune {
		name = string(e.Rune)
		if e.Rune == ' ' {
			name = "Space"
		}
		// Shift is part of the character.
		mods &^= ModShift
	}
	if mods == ModNone {
		return name
	}
	return mods.String() + "+" + name
}

// Equals reports whether two events are the same key press, ignoring
// timestamps.
func (e Event) Equals(other Event) bool {
	if e.Key != other.Key || e.Rune != other.Rune {
		return false
	}
	if e.Key == KeyRune {
		return e.Modifiers&^ModShift == other.Modifiers&^ModShift
	}
	return e.Modifiers == other.Modifiers
}

// Matches reports whether the event equals the key spec.
func (e Event) Matches(spec string) bool {
	parsed, err := Parse(spec)
	return err == nil && e.Equals(parsed)
}

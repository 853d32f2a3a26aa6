package keymap

import "gitlab.com/tozd/go/errors"

var (
	// ErrNilKeymap is returned when registering a nil keymap.
	ErrNilKeymap = errors.New("nil keymap")

	// ErrEmptyAction is returned for a binding without an action.
	ErrEmptyAction = errors.New("empty action")

	// ErrUnknownFormat is returned when a keymap file's format cannot be
	// determined from its extension.
	ErrUnknownFormat = errors.New("unknown keymap format")
)

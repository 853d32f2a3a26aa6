package mode

import "gitlab.com/tozd/go/errors"

var (
	// ErrUnknownMode is returned for a mode name that was never registered.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrEmptyStack is returned by Pop when nothing was pushed.
	ErrEmptyStack = errors.New("mode stack is empty")
)

package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrRangeInvalid indicates an invalid range (e.g., end < start).
	ErrRangeInvalid = errors.New("invalid range")

	// ErrReadOnly indicates an operation was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")

	// ErrClosed indicates the engine has been closed.
	ErrClosed = errors.New("engine is closed")

	// ErrUnknownCommand indicates ExecCommand was called with an unregistered name.
	ErrUnknownCommand = errors.New("unknown command")
)

package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when an evaluation exceeds its deadline.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNoResult is returned when an expression evaluates to nothing.
	ErrNoResult = errors.New("lua expression returned no value")
)

package app

import "gitlab.com/tozd/go/errors"

// Application errors.
var (
	// ErrClosed indicates the application was already closed.
	ErrClosed = errors.New("application closed")

	// ErrNoSnippetDirs indicates watching was requested without any
	// snippet directory.
	ErrNoSnippetDirs = errors.New("no snippet directories")
)

// InitError reports which component failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

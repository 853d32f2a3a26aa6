package config

import "gitlab.com/tozd/go/errors"

// Errors returned by configuration loading and validation.
var (
	// ErrInvalidConfig wraps decode failures such as unknown keys or
	// mistyped values.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidTabWidth indicates a tab width below one.
	ErrInvalidTabWidth = errors.New("tab width must be positive")

	// ErrInvalidPattern indicates a malformed snippet file glob.
	ErrInvalidPattern = errors.New("invalid snippet pattern")

	// ErrInvalidLogLevel indicates an unknown log level name.
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidLogFormat indicates a log format other than console or json.
	ErrInvalidLogFormat = errors.New("invalid log format")
)

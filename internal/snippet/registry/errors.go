package registry

import "gitlab.com/tozd/go/errors"

var (
	// ErrInvalidPattern is returned for a snippet whose trigger or guard
	// regex does not compile. The snippet is not registered.
	ErrInvalidPattern = errors.New("invalid snippet pattern")

	// ErrWatcherClosed is returned when using a closed watcher.
	ErrWatcherClosed = errors.New("watcher is closed")
)

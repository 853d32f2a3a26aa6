package snippet

import "gitlab.com/tozd/go/errors"

var (
	// ErrUnknownSnippet is returned when no snippet has the requested name.
	ErrUnknownSnippet = errors.New("unknown snippet")

	// ErrNoChoices is returned when the choice prompt is opened without
	// candidates.
	ErrNoChoices = errors.New("no choices")
)

package engine

import (
	"github.com/dshills/snipstorm/internal/engine/buffer"
)

// Default configuration values.
const (
	DefaultTabWidth = 4
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial content of the engine.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.initContent = content
	}
}

// WithTabWidth sets the tab width for the engine.
func WithTabWidth(width int) Option {
	return func(e *Engine) {
		if width > 0 {
			e.tabWidth = width
		}
	}
}

// WithSoftTabs selects whether a tab is inserted as spaces.
func WithSoftTabs(soft bool) Option {
	return func(e *Engine) {
		e.softTabs = soft
	}
}

// WithLineEnding sets the line ending style for the engine.
func WithLineEnding(ending buffer.LineEnding) Option {
	return func(e *Engine) {
		e.lineEnding = ending
	}
}

// WithScope sets the syntax scope used for snippet lookup.
func WithScope(scope string) Option {
	return func(e *Engine) {
		e.scope = scope
	}
}

// WithFilePath sets the path of the file being edited.
func WithFilePath(path string) Option {
	return func(e *Engine) {
		e.filePath = path
	}
}

// WithClipboard seeds the clipboard contents.
func WithClipboard(text string) Option {
	return func(e *Engine) {
		e.clipboard = text
	}
}

// WithComments sets the comment tokens of the current syntax.
func WithComments(c CommentTokens) Option {
	return func(e *Engine) {
		e.comments = c
	}
}

// WithReadOnly creates a read-only engine.
// Write operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}

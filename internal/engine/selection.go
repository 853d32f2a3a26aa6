package engine

import (
	"github.com/dshills/snipstorm/internal/engine/cursor"
)

// Selections returns all selections with the primary first.
func (e *Engine) Selections() []Selection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursors.PrimaryFirst()
}

// PrimarySelection returns the primary selection.
func (e *Engine) PrimarySelection() Selection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursors.Primary()
}

// HasMultipleSelections returns true if there is more than one selection.
func (e *Engine) HasMultipleSelections() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursors.IsMulti()
}

// SetSelections replaces all selections; sels[0] becomes the primary.
// Selections are clamped to the document.
func (e *Engine) SetSelections(sels ...Selection) {
	e.mu.Lock()
	next := cursor.NewCursorSetFromSlice(sels)
	next.Clamp(e.buf.Len())
	changed := !next.Equals(e.cursors)
	e.cursors = next
	deferred := e.editDepth > 0
	if changed && deferred {
		e.selDirty = true
	}
	e.mu.Unlock()

	if changed && !deferred {
		e.notifySelection()
	}
}

// SetCursor collapses the selection to a single cursor at offset.
func (e *Engine) SetCursor(offset ByteOffset) {
	e.SetSelections(cursor.NewCursorSelection(offset))
}

// SelectedText returns the text covered by the primary selection.
func (e *Engine) SelectedText() string {
	sel := e.PrimarySelection()
	return e.TextRange(sel.Start(), sel.End())
}

// Package cursor provides selection management for the host document.
//
// Selections use an anchor/head model where:
//   - Anchor: the position where the selection started
//   - Head: the current cursor position (where typing would occur)
//
// CursorSet holds the multi-selection used both for ordinary multi-cursor
// editing and for selecting every range of a tabstop at once. Its
// selections are kept sorted and non-overlapping, but adjacent selections
// stay separate and the primary selection is tracked explicitly.
//
// Basic usage:
//
//	cs := cursor.NewCursorSetFromSlice([]cursor.Selection{
//	    cursor.NewSelection(10, 13),
//	    cursor.NewSelection(2, 5),
//	})
//	cs.Primary()       // Selection(10→13)
//	cs.PrimaryFirst()  // [Selection(10→13) Selection(2→5)]
//
//	edit := buffer.NewInsert(0, "xx")
//	cursor.TransformCursorSet(cs, edit)
//
// Selection is an immutable value type. CursorSet is not thread-safe and
// should be protected by external synchronization.
package cursor

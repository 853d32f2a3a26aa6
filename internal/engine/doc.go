// Package engine provides the in-memory host document used by the snippet
// engine.
//
// The engine package serves as the facade over its sub-packages and plays
// the role of the editor the snippet engine is embedded in:
//
//   - buffer: text storage with offset/point conversion
//   - cursor: multi-selection with an explicit primary
//   - tracking: document deltas and edit-aware range lists
//
// # Notifications
//
// Every write is broken into primitive deltas. A replacement is delivered
// as a removal followed by an insertion:
//
//	e := engine.New(engine.WithContent("foo(bar)"))
//	sub := e.OnChange(func(d engine.Delta) {
//	    fmt.Println(d) // Remove "bar" at [4:7), then Insert "baz" at 4
//	})
//	defer sub.Unsubscribe()
//	e.Replace(4, 7, "baz")
//
// Listeners registered with OnAfterEdit run once the outermost write has
// finished, so writes made from inside them are not observed half-way.
// Selection listeners run after that, and only when selections moved. Swap
// listeners run before Load replaces the document.
//
// All listeners are invoked with the engine's lock released, so they may
// call back into the engine.
//
// # Markers and Commands
//
// AddMarker decorates a live range owned by the caller; Markers reports
// the decorations at their current bounds. RegisterCommand and ExecCommand
// provide the named command hook used, for example, to open a completion
// prompt.
//
// # Selection Context
//
// View returns a SelectionView, the per-selection context (selected text,
// current word and line, indentation, clipboard, file path, comment tokens)
// that snippet variables are resolved against.
//
// # Error Handling
//
//   - ErrRangeInvalid: invalid range (e.g., end < start)
//   - ErrReadOnly: write operation on a read-only engine
//   - ErrClosed: write operation after Close
//   - ErrUnknownCommand: ExecCommand with an unregistered name
package engine

// Package input turns key events into snippet actions.
//
// The Handler looks up each key in the keymaps of the current mode (see
// packages mode and keymap) and runs the action registered under the
// binding's name. An action reports whether it consumed the key, so Tab
// can expand a snippet when a trigger matches and insert a tab otherwise.
//
//	handler := input.NewHandler()
//	handler.RegisterAction(keymap.ActionNext, func(input.Action) bool {
//	    session.TabNext(1)
//	    return true
//	})
//	consumed := handler.HandleKeyEvent(key.FromTcell(ev))
package input

// Package keymap maps key events to snippet actions.
//
// A Keymap is a named set of bindings for one input mode. The Registry
// holds every keymap and resolves an event for the current mode: bindings
// of the mode are consulted first, then global keymaps (empty Mode).
// Within a tier, higher keymap priority wins, then later registration.
//
// Default keymaps bind Tab, Shift+Tab and Esc for tabstop navigation and
// the arrow keys, Enter and Esc for the choice prompt. Users override them
// with TOML, YAML or JSON files:
//
//	name = "my-snippet-keys"
//	mode = "snippet"
//	priority = 10
//
//	[[bindings]]
//	keys = "Ctrl+J"
//	action = "snippet.next"
package keymap

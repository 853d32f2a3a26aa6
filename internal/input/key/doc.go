// Package key provides key events and key specification parsing.
//
// Specifications are written as a key name or character, optionally
// prefixed with modifiers:
//
//	"Tab"  "Shift+Tab"  "Ctrl+Space"  "a"
//	"<Esc>"  "<S-Tab>"  "<C-Space>"
//
// FromTcell converts terminal key events so they can be matched against
// parsed specifications.
package key

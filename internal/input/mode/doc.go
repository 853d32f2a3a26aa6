// Package mode tracks the input mode stack.
//
// The editor starts in insert mode. A tabstop session pushes the snippet
// mode and pops it on detach; the choice prompt pushes the choice mode on
// top of that. The current mode decides which keymap resolves a key.
//
// When switching modes:
//  1. Current mode's Exit() is called
//  2. New mode's Enter() is called
//  3. Mode change callbacks are notified
package mode

package keymap

import "github.com/dshills/snipstorm/internal/input/mode"

// Snippet actions.
const (
	ActionExpand = "snippet.expand"
	ActionNext   = "snippet.next"
	ActionPrev   = "snippet.prev"
	ActionCancel = "snippet.cancel"

	ActionChoiceNext    = "choice.next"
	ActionChoicePrev    = "choice.prev"
	ActionChoiceAccept  = "choice.accept"
	ActionChoiceDismiss = "choice.dismiss"
)

// LoadDefaults loads all default keymaps into the registry.
func LoadDefaults(r *Registry) error {
	keymaps := []*Keymap{
		DefaultInsertKeymap(),
		DefaultSnippetKeymap(),
		DefaultChoiceKeymap(),
	}

	for _, km := range keymaps {
		if err := r.Register(km); err != nil {
			return err
		}
	}

	return nil
}

// DefaultInsertKeymap returns default insert mode bindings.
func DefaultInsertKeymap() *Keymap {
	return &Keymap{
		Name:   "default-insert",
		Mode:   mode.ModeInsert,
		Source: "default",
		Bindings: []Binding{
			{Keys: "Tab", Action: ActionExpand, Description: "Expand the snippet before the cursor"},
		},
	}
}

// DefaultSnippetKeymap returns bindings active while a tabstop session runs.
func DefaultSnippetKeymap() *Keymap {
	return &Keymap{
		Name:   "default-snippet",
		Mode:   mode.ModeSnippet,
		Source: "default",
		Bindings: []Binding{
			{Keys: "Tab", Action: ActionNext, Description: "Expand or go to the next tabstop"},
			{Keys: "Shift+Tab", Action: ActionPrev, Description: "Go to the previous tabstop"},
			{Keys: "Esc", Action: ActionCancel, Description: "Leave the snippet"},
		},
	}
}

// DefaultChoiceKeymap returns bindings for the choice prompt.
func DefaultChoiceKeymap() *Keymap {
	return &Keymap{
		Name:   "default-choice",
		Mode:   mode.ModeChoice,
		Source: "default",
		Bindings: []Binding{
			{Keys: "Down", Action: ActionChoiceNext},
			{Keys: "Ctrl+N", Action: ActionChoiceNext},
			{Keys: "Up", Action: ActionChoicePrev},
			{Keys: "Ctrl+P", Action: ActionChoicePrev},
			{Keys: "Enter", Action: ActionChoiceAccept, Description: "Insert the highlighted choice"},
			{Keys: "Tab", Action: ActionChoiceAccept},
			{Keys: "Esc", Action: ActionChoiceDismiss, Description: "Close the prompt"},
		},
	}
}

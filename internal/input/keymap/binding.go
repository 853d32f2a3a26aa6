package keymap

import (
	"github.com/dshills/snipstorm/internal/input/key"
)

// Binding represents a single key-to-action mapping.
type Binding struct {
	// Keys is the key that triggers this binding.
	// Formats: "Tab", "Shift+Tab", "<C-space>", "Ctrl+N"
	Keys string `toml:"keys" yaml:"keys" json:"keys"`

	// Action is the command to execute.
	// Examples: "snippet.next", "choice.accept"
	Action string `toml:"action" yaml:"action" json:"action"`

	// Args are fixed arguments for the action.
	Args map[string]any `toml:"args,omitempty" yaml:"args,omitempty" json:"args,omitempty"`

	// Description provides documentation for the binding.
	Description string `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty"`

	// Priority determines precedence when multiple bindings match.
	// Higher priority wins. Default is 0.
	Priority int `toml:"priority,omitempty" yaml:"priority,omitempty" json:"priority,omitempty"`
}

// NewBinding creates a new binding with the given keys and action.
func NewBinding(keys, action string) Binding {
	return Binding{
		Keys:   keys,
		Action: action,
	}
}

// WithArgs sets arguments for this binding.
func (b Binding) WithArgs(args map[string]any) Binding {
	b.Args = args
	return b
}

// WithDescription sets the description for this binding.
func (b Binding) WithDescription(desc string) Binding {
	b.Description = desc
	return b
}

// WithPriority sets the priority for this binding.
func (b Binding) WithPriority(priority int) Binding {
	b.Priority = priority
	return b
}

// ParsedBinding is a binding with a pre-parsed key event.
type ParsedBinding struct {
	Binding
	Event key.Event
}

// Match checks if this binding's key matches the given event.
func (pb *ParsedBinding) Match(ev key.Event) bool {
	return pb.Event.Equals(ev)
}

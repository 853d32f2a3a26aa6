package keymap

import (
	"maps"

	"gitlab.com/tozd/go/errors"

	"github.com/dshills/snipstorm/internal/input/key"
)

// Keymap holds key bindings for a mode.
type Keymap struct {
	// Name is the keymap identifier.
	Name string `toml:"name" yaml:"name" json:"name"`

	// Mode is the mode this keymap applies to.
	// Empty string means global (all modes).
	Mode string `toml:"mode" yaml:"mode" json:"mode"`

	// Bindings are the key-to-action mappings.
	Bindings []Binding `toml:"bindings" yaml:"bindings" json:"bindings"`

	// Priority determines precedence when multiple keymaps match.
	// Higher priority wins. Default is 0.
	Priority int `toml:"priority,omitempty" yaml:"priority,omitempty" json:"priority,omitempty"`

	// Source indicates where this keymap was defined.
	// Examples: "default", "user"
	Source string `toml:"source,omitempty" yaml:"source,omitempty" json:"source,omitempty"`
}

// NewKeymap creates a new keymap with the given name.
func NewKeymap(name string) *Keymap {
	return &Keymap{
		Name:     name,
		Bindings: make([]Binding, 0),
	}
}

// ForMode sets the mode for this keymap.
func (k *Keymap) ForMode(mode string) *Keymap {
	k.Mode = mode
	return k
}

// WithPriority sets the priority for this keymap.
func (k *Keymap) WithPriority(priority int) *Keymap {
	k.Priority = priority
	return k
}

// WithSource sets the source for this keymap.
func (k *Keymap) WithSource(source string) *Keymap {
	k.Source = source
	return k
}

// Add adds a binding to this keymap.
func (k *Keymap) Add(keys, action string) *Keymap {
	k.Bindings = append(k.Bindings, Binding{
		Keys:   keys,
		Action: action,
	})
	return k
}

// AddBinding adds a fully configured binding to this keymap.
func (k *Keymap) AddBinding(binding Binding) *Keymap {
	k.Bindings = append(k.Bindings, binding)
	return k
}

// Validate checks that all bindings in the keymap are valid.
func (k *Keymap) Validate() error {
	_, err := k.Parse()
	return err
}

// ParsedKeymap is a keymap with pre-parsed keys.
type ParsedKeymap struct {
	*Keymap
	ParsedBindings []ParsedBinding
}

// Parse parses all bindings in the keymap.
func (k *Keymap) Parse() (*ParsedKeymap, error) {
	parsed := &ParsedKeymap{
		Keymap:         k,
		ParsedBindings: make([]ParsedBinding, 0, len(k.Bindings)),
	}

	for i, b := range k.Bindings {
		if b.Action == "" {
			return nil, errors.Errorf("%w: binding %d (%s)", ErrEmptyAction, i, b.Keys)
		}
		ev, err := key.Parse(b.Keys)
		if err != nil {
			return nil, errors.Errorf("binding %d (%q): %w", i, b.Keys, err)
		}
		parsed.ParsedBindings = append(parsed.ParsedBindings, ParsedBinding{
			Binding: b,
			Event:   ev,
		})
	}

	return parsed, nil
}

// Lookup returns the highest-priority binding matching ev. Among equal
// priorities the binding added last wins.
func (p *ParsedKeymap) Lookup(ev key.Event) (*ParsedBinding, bool) {
	var best *ParsedBinding
	for i := range p.ParsedBindings {
		pb := &p.ParsedBindings[i]
		if !pb.Match(ev) {
			continue
		}
		if best == nil || pb.Priority >= best.Priority {
			best = pb
		}
	}
	return best, best != nil
}

// Clone creates a deep copy of the keymap.
func (k *Keymap) Clone() *Keymap {
	clone := &Keymap{
		Name:     k.Name,
		Mode:     k.Mode,
		Priority: k.Priority,
		Source:   k.Source,
		Bindings: make([]Binding, len(k.Bindings)),
	}
	for i, b := range k.Bindings {
		clone.Bindings[i] = b
		if b.Args != nil {
			clone.Bindings[i].Args = maps.Clone(b.Args)
		}
	}
	return clone
}

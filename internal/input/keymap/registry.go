package keymap

import (
	"sort"
	"sync"

	"gitlab.com/tozd/go/errors"

	"github.com/dshills/snipstorm/internal/input/key"
)

// Registry manages all keymaps and provides binding lookup.
type Registry struct {
	mu sync.RWMutex

	// keymaps holds all registered keymaps by name.
	keymaps map[string]*ParsedKeymap

	// order records registration order; later registrations win ties.
	order []string
}

// NewRegistry creates a new keymap registry.
func NewRegistry() *Registry {
	return &Registry{
		keymaps: make(map[string]*ParsedKeymap),
	}
}

// Register adds a keymap to the registry.
// If a keymap with the same name already exists, it is replaced.
func (r *Registry) Register(km *Keymap) error {
	if km == nil {
		return ErrNilKeymap
	}

	parsed, err := km.Parse()
	if err != nil {
		return errors.Errorf("parsing keymap %q: %w", km.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.unregisterLocked(km.Name)
	r.keymaps[km.Name] = parsed
	r.order = append(r.order, km.Name)
	return nil
}

// Unregister removes a keymap from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unregisterLocked(name)
}

// unregisterLocked removes a keymap without acquiring the lock.
// Caller must hold the write lock.
func (r *Registry) unregisterLocked(name string) {
	if _, ok := r.keymaps[name]; !ok {
		return
	}
	delete(r.keymaps, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns a keymap by name.
func (r *Registry) Get(name string) *ParsedKeymap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keymaps[name]
}

// Lookup finds the binding for ev in the given mode.
//
// Keymaps for the mode are consulted before global keymaps. Within each
// tier the keymap with the higher priority wins, then the one registered
// last.
func (r *Registry) Lookup(mode string, ev key.Event) *Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tier := range [...]string{mode, ""} {
		for _, km := range r.ordered(tier) {
			if pb, ok := km.Lookup(ev); ok {
				b := pb.Binding
				return &b
			}
		}
		if mode == "" {
			break
		}
	}
	return nil
}

// ordered returns the keymaps for mode, best first.
func (r *Registry) ordered(mode string) []*ParsedKeymap {
	var out []*ParsedKeymap
	for i := len(r.order) - 1; i >= 0; i-- {
		if km := r.keymaps[r.order[i]]; km.Mode == mode {
			out = append(out, km)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// BindingsForMode returns every binding reachable in mode, best first.
func (r *Registry) BindingsForMode(mode string) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Binding
	seen := make(map[string]bool)
	for _, tier := range [...]string{mode, ""} {
		for _, km := range r.ordered(tier) {
			for i := len(km.ParsedBindings) - 1; i >= 0; i-- {
				pb := km.ParsedBindings[i]
				name := pb.Event.String()
				if seen[name] {
					continue
				}
				seen[name] = true
				out = append(out, pb.Binding)
			}
		}
		if mode == "" {
			break
		}
	}
	return out
}

// Names returns the names of all registered keymaps in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

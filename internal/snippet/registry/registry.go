package registry

import (
	"slices"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

type scopeEntry struct {
	// snippets is in registration order; lookups walk it backwards.
	snippets []*Snippet
	byName   map[string]*Snippet
	include  []string
}

// Registry indexes snippets by scope, then by name.
type Registry struct {
	mu     sync.RWMutex
	scopes map[string]*scopeEntry
	logger zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		scopes: make(map[string]*scopeEntry),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) entry(scope string) *scopeEntry {
	e, ok := r.scopes[scope]
	if !ok {
		e = &scopeEntry{byName: make(map[string]*Snippet)}
		r.scopes[scope] = e
	}
	return e
}

// Register adds defs under scope. A definition's own Scope takes
// precedence; with neither, the global scope is used. A named definition
// replaces the one registered under the same name in its scope.
//
// Definitions whose patterns do not compile are skipped and reported
// together in the returned error; the others are registered.
func (r *Registry) Register(defs []Definition, scope string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs error
	for _, d := range defs {
		if d.Scope == "" {
			d.Scope = scope
		}
		if d.Scope == "" {
			d.Scope = GlobalScope
		}

		s, err := compile(d)
		if err != nil {
			r.logger.Warn().Err(err).Str("snippet", d.Name).Str("scope", d.Scope).Msg("skipping snippet")
			errs = multierr.Append(errs, errors.Errorf("%w: %q in scope %q: %s", ErrInvalidPattern, d.Name, d.Scope, err))
			continue
		}
		r.addLocked(s)
	}
	return errs
}

func (r *Registry) addLocked(s *Snippet) {
	e := r.entry(s.Scope)
	if s.Name != "" {
		if old, ok := e.byName[s.Name]; ok {
			r.removeLocked(e, old)
		}
		e.byName[s.Name] = s
	}
	e.snippets = append(e.snippets, s)
}

func (r *Registry) removeLocked(e *scopeEntry, s *Snippet) {
	if i := slices.Index(e.snippets, s); i >= 0 {
		e.snippets = slices.Delete(e.snippets, i, i+1)
	}
	if e.byName[s.Name] == s {
		delete(e.byName, s.Name)
	}
}

// Unregister removes the snippets registered under the names of defs.
func (r *Registry) Unregister(defs []Definition, scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range defs {
		sc := d.Scope
		if sc == "" {
			sc = scope
		}
		if sc == "" {
			sc = GlobalScope
		}
		e, ok := r.scopes[sc]
		if !ok {
			continue
		}
		if s, ok := e.byName[d.Name]; ok {
			r.removeLocked(e, s)
		}
	}
}

// ReplaceSource removes every snippet loaded from source and registers
// defs in their place, each marked with source.
func (r *Registry) ReplaceSource(source string, defs []Definition, scope string) error {
	r.RemoveSource(source)
	for i := range defs {
		defs[i].Source = source
	}
	return r.Register(defs, scope)
}

// RemoveSource removes every snippet loaded from source and returns how
// many were removed.
func (r *Registry) RemoveSource(source string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.scopes {
		for _, s := range slices.Clone(e.snippets) {
			if s.Source == source {
				r.removeLocked(e, s)
				n++
			}
		}
	}
	return n
}

// SetIncludeScopes makes lookups in scope also search include.
func (r *Registry) SetIncludeScopes(scope string, include []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(scope).include = slices.Clone(include)
}

// ActiveScopes returns the scopes searched for scope: the scope itself,
// its include scopes and the global scope.
func (r *Registry) ActiveScopes(scope string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scopes := []string{scope}
	if e, ok := r.scopes[scope]; ok {
		scopes = append(scopes, e.include...)
	}
	if scope != GlobalScope {
		scopes = append(scopes, GlobalScope)
	}
	return scopes
}

// ByName returns the first snippet named name in scopes.
func (r *Registry) ByName(scopes []string, name string) (*Snippet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sc := range scopes {
		if e, ok := r.scopes[sc]; ok {
			if s, ok := e.byName[name]; ok {
				return s, true
			}
		}
	}
	return nil, false
}

// Snippets returns the snippets of scope in registration order.
func (r *Registry) Snippets(scope string) []*Snippet {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.scopes[scope]; ok {
		return slices.Clone(e.snippets)
	}
	return nil
}

// Scopes returns the names of scopes holding snippets, sorted.
func (r *Registry) Scopes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for name, e := range r.scopes {
		if len(e.snippets) > 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered snippets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, e := range r.scopes {
		n += len(e.snippets)
	}
	return n
}

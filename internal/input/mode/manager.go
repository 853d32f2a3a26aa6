package mode

import (
	"maps"
	"slices"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// ModeChangeCallback is called after the current mode changes.
type ModeChangeCallback func(from, to Mode)

// Manager holds the registered modes and a stack of modes covered by Push.
// A snippet session pushes snippet mode over insert mode, and the choice
// prompt pushes choice mode over snippet mode.
type Manager struct {
	mu sync.RWMutex

	modes   map[string]Mode
	current Mode
	stack   []Mode

	callbacks []ModeChangeCallback
	ctx       *Context
}

// NewDefaultManager creates a manager with the insert, snippet and choice
// modes registered and insert mode current.
func NewDefaultManager() *Manager {
	m := NewManager()
	m.Register(NewBasicMode(ModeInsert, "INSERT"))
	m.Register(NewBasicMode(ModeSnippet, "SNIPPET"))
	m.Register(NewBasicMode(ModeChoice, "CHOICE"))
	_ = m.SetInitialMode(ModeInsert)
	return m
}

// NewManager creates an empty mode manager.
func NewManager() *Manager {
	return &Manager{
		modes: make(map[string]Mode),
		ctx:   NewContext(),
	}
}

// Register adds mode, replacing a mode of the same name.
func (m *Manager) Register(mode Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes[mode.Name()] = mode
}

// Get returns the mode registered under name, or nil.
func (m *Manager) Get(name string) Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.modes[name]
}

// Modes returns the registered mode names, sorted.
func (m *Manager) Modes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.modes))
}

// Current returns the current mode, or nil before SetInitialMode.
func (m *Manager) Current() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// CurrentName returns the current mode's name, or "".
func (m *Manager) CurrentName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Name()
}

// IsMode reports whether name is the current mode.
func (m *Manager) IsMode(name string) bool {
	return m.CurrentName() == name
}

// StackDepth returns the number of covered modes.
func (m *Manager) StackDepth() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stack)
}

// SetInitialMode makes name current without running an exit hook.
func (m *Manager) SetInitialMode(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mode, ok := m.modes[name]
	if !ok {
		return errors.Errorf("%w: %s", ErrUnknownMode, name)
	}
	m.current = mode
	m.ctx.PreviousMode = ""
	return mode.Enter(m.ctx)
}

// Switch replaces the current mode without touching the stack.
func (m *Manager) Switch(name string) error {
	return m.change(name, func(Mode) {})
}

// Push covers the current mode with name. Pop restores it.
func (m *Manager) Push(name string) error {
	return m.change(name, func(covered Mode) {
		if covered != nil {
			m.stack = append(m.stack, covered)
		}
	})
}

// Pop restores the mode covered by the last Push.
func (m *Manager) Pop() error {
	m.mu.Lock()
	if len(m.stack) == 0 {
		m.mu.Unlock()
		return ErrEmptyStack
	}
	to := m.stack[len(m.stack)-1]
	from, callbacks, err := m.transitionLocked(to)
	if err == nil {
		m.stack = m.stack[:len(m.stack)-1]
	}
	m.mu.Unlock()

	if err != nil {
		return err
	}
	notify(callbacks, from, to)
	return nil
}

// change switches to name and, on success, hands the covered mode to
// onSuccess while the lock is held.
func (m *Manager) change(name string, onSuccess func(covered Mode)) error {
	m.mu.Lock()
	to, ok := m.modes[name]
	if !ok {
		m.mu.Unlock()
		return errors.Errorf("%w: %s", ErrUnknownMode, name)
	}
	from, callbacks, err := m.transitionLocked(to)
	if err == nil {
		onSuccess(from)
	}
	m.mu.Unlock()

	if err != nil {
		return err
	}
	notify(callbacks, from, to)
	return nil
}

// transitionLocked exits the current mode and enters to. The current mode
// is unchanged when either hook fails.
func (m *Manager) transitionLocked(to Mode) (Mode, []ModeChangeCallback, error) {
	from := m.current
	ctx := m.ctx

	ctx.PreviousMode = ""
	if from != nil {
		ctx.NextMode = to.Name()
		if err := from.Exit(ctx); err != nil {
			return nil, nil, errors.Errorf("exit %s: %w", from.Name(), err)
		}
		ctx.PreviousMode = from.Name()
	}
	ctx.NextMode = ""

	if err := to.Enter(ctx); err != nil {
		return nil, nil, errors.Errorf("enter %s: %w", to.Name(), err)
	}
	m.current = to
	return from, slices.Clone(m.callbacks), nil
}

func notify(callbacks []ModeChangeCallback, from, to Mode) {
	for _, cb := range callbacks {
		if cb != nil {
			cb(from, to)
		}
	}
}

// OnChange registers callback and returns a function removing it.
func (m *Manager) OnChange(callback ModeChangeCallback) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
	index := len(m.callbacks) - 1
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.callbacks[index] = nil
	}
}

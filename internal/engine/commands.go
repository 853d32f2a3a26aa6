package engine

import (
	"sort"

	"gitlab.com/tozd/go/errors"
)

// CommandFunc implements a named host command.
type CommandFunc func(e *Engine, args map[string]any) error

// RegisterCommand installs fn under name, replacing any previous command.
func (e *Engine) RegisterCommand(name string, fn CommandFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commands[name] = fn
}

// HasCommand reports whether a command is registered under name.
func (e *Engine) HasCommand(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.commands[name]
	return ok
}

// Commands returns the registered command names in sorted order.
func (e *Engine) Commands() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.commands))
	for name := range e.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExecCommand runs the command registered under name.
func (e *Engine) ExecCommand(name string, args map[string]any) error {
	e.mu.RLock()
	fn, ok := e.commands[name]
	e.mu.RUnlock()
	if !ok {
		return errors.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return fn(e, args)
}

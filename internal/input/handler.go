package input

import (
	"maps"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/snipstorm/internal/input/key"
	"github.com/dshills/snipstorm/internal/input/keymap"
	"github.com/dshills/snipstorm/internal/input/mode"
)

// Handler resolves key events to actions through the current mode's
// keymaps and runs them.
type Handler struct {
	mu sync.RWMutex

	modeManager    *mode.Manager
	keymapRegistry *keymap.Registry
	logger         zerolog.Logger

	actions map[string]ActionFunc
	hooks   []Hook
}

// Option configures a Handler.
type Option func(*Handler)

// WithModeManager sets the mode manager.
func WithModeManager(m *mode.Manager) Option {
	return func(h *Handler) {
		h.modeManager = m
	}
}

// WithKeymapRegistry sets the keymap registry.
func WithKeymapRegistry(r *keymap.Registry) Option {
	return func(h *Handler) {
		h.keymapRegistry = r
	}
}

// WithLogger sets the handler's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates a handler. Without options it uses the default modes
// and the default keymaps.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		logger:  zerolog.Nop(),
		actions: make(map[string]ActionFunc),
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.modeManager == nil {
		h.modeManager = mode.NewDefaultManager()
	}
	if h.keymapRegistry == nil {
		h.keymapRegistry = keymap.NewRegistry()
		if err := keymap.LoadDefaults(h.keymapRegistry); err != nil {
			h.logger.Error().Err(err).Msg("loading default keymaps")
		}
	}

	return h
}

// RegisterAction binds an action name to fn, replacing any previous one.
func (h *Handler) RegisterAction(name string, fn ActionFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions[name] = fn
}

// HandleKeyEvent processes a key event. It reports whether the event was
// consumed; the host handles unconsumed keys itself (typing a tab, say).
func (h *Handler) HandleKeyEvent(event key.Event) bool {
	current := h.modeManager.CurrentName()

	h.mu.RLock()
	hooks := append([]Hook(nil), h.hooks...)
	h.mu.RUnlock()

	for _, hook := range hooks {
		if hook.PreKeyEvent(event, current) {
			return true
		}
	}

	binding := h.keymapRegistry.Lookup(current, event)
	if binding == nil {
		return false
	}

	return h.Dispatch(Action{
		Name:   binding.Action,
		Args:   maps.Clone(binding.Args),
		Event:  event,
		Mode:   current,
		Source: SourceKeyboard,
	})
}

// Dispatch runs a registered action. Unknown actions are not consumed.
func (h *Handler) Dispatch(action Action) bool {
	h.mu.RLock()
	fn, ok := h.actions[action.Name]
	h.mu.RUnlock()

	if !ok {
		h.logger.Debug().Str("action", action.Name).Msg("no handler for action")
		return false
	}
	return fn(action)
}

// ModeManager returns the mode manager.
func (h *Handler) ModeManager() *mode.Manager {
	return h.modeManager
}

// KeymapRegistry returns the keymap registry.
func (h *Handler) KeymapRegistry() *keymap.Registry {
	return h.keymapRegistry
}

// CurrentMode returns the name of the current mode.
func (h *Handler) CurrentMode() string {
	return h.modeManager.CurrentName()
}

// AddHook adds an input hook.
func (h *Handler) AddHook(hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// RemoveHook removes an input hook.
func (h *Handler) RemoveHook(hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, hk := range h.hooks {
		if hk == hook {
			h.hooks = append(h.hooks[:i], h.hooks[i+1:]...)
			return
		}
	}
}

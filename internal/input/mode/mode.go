package mode

// Mode is an input mode. The current mode selects which keymap resolves
// key events.
type Mode interface {
	// Name returns the unique mode identifier (e.g., "insert", "snippet").
	Name() string

	// DisplayName returns a human-readable name for the status line.
	DisplayName() string

	// Enter is called when entering this mode.
	Enter(ctx *Context) error

	// Exit is called when leaving this mode.
	Exit(ctx *Context) error
}

// Context provides information during mode transitions.
type Context struct {
	// PreviousMode is the mode being transitioned from (for Enter).
	PreviousMode string

	// NextMode is the mode being transitioned to (for Exit).
	NextMode string

	// Extra holds mode-specific context data.
	Extra map[string]any
}

// NewContext creates a new mode context.
func NewContext() *Context {
	return &Context{
		Extra: make(map[string]any),
	}
}

// Standard mode names.
const (
	// ModeInsert is plain text entry.
	ModeInsert = "insert"

	// ModeSnippet is active while a tabstop session runs.
	ModeSnippet = "snippet"

	// ModeChoice is active while the choice prompt is open.
	ModeChoice = "choice"
)

// BasicMode is a Mode with optional transition hooks.
type BasicMode struct {
	name    string
	display string

	OnEnter func(ctx *Context) error
	OnExit  func(ctx *Context) error
}

// NewBasicMode creates a mode with the given name and display name.
func NewBasicMode(name, display string) *BasicMode {
	return &BasicMode{name: name, display: display}
}

// Name returns the mode identifier.
func (m *BasicMode) Name() string { return m.name }

// DisplayName returns the status line name.
func (m *BasicMode) DisplayName() string { return m.display }

// Enter runs the OnEnter hook, if any.
func (m *BasicMode) Enter(ctx *Context) error {
	if m.OnEnter == nil {
		return nil
	}
	return m.OnEnter(ctx)
}

// Exit runs the OnExit hook, if any.
func (m *BasicMode) Exit(ctx *Context) error {
	if m.OnExit == nil {
		return nil
	}
	return m.OnExit(ctx)
}

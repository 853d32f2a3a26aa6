package snippet

import (
	"slices"
	"sort"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/dshills/snipstorm/internal/engine"
	"github.com/dshills/snipstorm/internal/engine/cursor"
	"github.com/dshills/snipstorm/internal/input"
	"github.com/dshills/snipstorm/internal/input/key"
	"github.com/dshills/snipstorm/internal/input/keymap"
	"github.com/dshills/snipstorm/internal/snippet/expand"
	"github.com/dshills/snipstorm/internal/snippet/registry"
	"github.com/dshills/snipstorm/internal/snippet/tabstop"
	"github.com/dshills/snipstorm/internal/snippet/variable"
)

// Host is the document a Manager edits.
type Host interface {
	tabstop.Document

	Selections() []engine.Selection
	View(sel engine.Selection) *engine.SelectionView
	Scope() string

	OffsetToPoint(offset engine.ByteOffset) engine.Point
	LineStartOffset(line uint32) engine.ByteOffset
	LineText(line uint32) string

	RegisterCommand(name string, fn engine.CommandFunc)
}

// Manager inserts snippets into a host document and drives the tabstop
// session that follows.
type Manager struct {
	host     Host
	reg      *registry.Registry
	resolver *variable.Resolver
	expander *expand.Expander
	input    *input.Handler
	logger   zerolog.Logger
	nested   bool

	session *tabstop.Session
	prompt  *Prompt
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger. Sessions log through it too.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithResolver sets the variable resolver.
func WithResolver(r *variable.Resolver) Option {
	return func(m *Manager) {
		m.resolver = r
	}
}

// WithInputHandler sets the key handler. Its mode manager tracks the
// snippet and choice modes.
func WithInputHandler(h *input.Handler) Option {
	return func(m *Manager) {
		m.input = h
	}
}

// WithNesting makes an expansion inside an active session add its
// tabstops to that session instead of replacing it.
func WithNesting(nested bool) Option {
	return func(m *Manager) {
		m.nested = nested
	}
}

// NewManager creates a manager for host looking snippets up in reg.
// A nil reg is replaced by an empty registry.
func NewManager(host Host, reg *registry.Registry, opts ...Option) *Manager {
	m := &Manager{
		host:   host,
		reg:    reg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.reg == nil {
		m.reg = registry.New(registry.WithLogger(m.logger))
	}
	if m.resolver == nil {
		m.resolver = variable.NewResolver(variable.WithLogger(m.logger))
	}
	if m.input == nil {
		m.input = input.NewHandler(input.WithLogger(m.logger))
	}
	m.expander = expand.New(m.resolver, expand.WithLogger(m.logger))
	m.prompt = newPrompt(host, m.input.ModeManager(), m.logger)

	m.registerActions()
	host.RegisterCommand(tabstop.AutocompleteCommand, func(_ *engine.Engine, args map[string]any) error {
		choices, _ := args["matches"].([]string)
		return m.prompt.Open(m.session, choices)
	})
	return m
}

func (m *Manager) registerActions() {
	m.input.RegisterAction(keymap.ActionExpand, func(input.Action) bool {
		return m.ExpandWithTab()
	})
	m.input.RegisterAction(keymap.ActionNext, func(input.Action) bool {
		if m.ExpandWithTab() {
			return true
		}
		return m.tabNext(1)
	})
	m.input.RegisterAction(keymap.ActionPrev, func(input.Action) bool {
		return m.tabNext(-1)
	})
	m.input.RegisterAction(keymap.ActionCancel, func(input.Action) bool {
		if !m.Active() {
			return false
		}
		m.session.Detach(tabstop.ReasonCancel)
		return true
	})
	m.input.RegisterAction(keymap.ActionChoiceNext, func(input.Action) bool {
		return m.prompt.Move(1)
	})
	m.input.RegisterAction(keymap.ActionChoicePrev, func(input.Action) bool {
		return m.prompt.Move(-1)
	})
	m.input.RegisterAction(keymap.ActionChoiceAccept, func(input.Action) bool {
		return m.prompt.Accept()
	})
	m.input.RegisterAction(keymap.ActionChoiceDismiss, func(input.Action) bool {
		return m.prompt.Close()
	})
}

// Registry returns the snippet registry.
func (m *Manager) Registry() *registry.Registry {
	return m.reg
}

// Input returns the key handler.
func (m *Manager) Input() *input.Handler {
	return m.input
}

// Session returns the current tabstop session, or nil before the first
// expansion.
func (m *Manager) Session() *tabstop.Session {
	return m.session
}

// Prompt returns the choice prompt.
func (m *Manager) Prompt() *Prompt {
	return m.prompt
}

// Active reports whether a tabstop session is attached.
func (m *Manager) Active() bool {
	return m.session != nil && m.session.Active()
}

// HandleKey runs the action bound to ev in the current input mode and
// reports whether it consumed the key.
func (m *Manager) HandleKey(ev key.Event) bool {
	return m.input.HandleKeyEvent(ev)
}

func (m *Manager) tabNext(dir int) bool {
	if !m.Active() {
		return false
	}
	m.prompt.Close()
	m.session.TabNext(dir)
	return true
}

// ============================================================================
// Insertion
// ============================================================================

// site is one selection a snippet is inserted at.
type site struct {
	start, end engine.ByteOffset
	sel        engine.Selection
	template   string
	scope      *variable.Scope
}

// InsertSnippet expands template at every selection, replacing selected
// text, and starts a tabstop session over the result.
func (m *Manager) InsertSnippet(template string) error {
	var sites []site
	for _, sel := range m.host.Selections() {
		sites = append(sites, site{start: sel.Start(), end: sel.End(), sel: sel, template: template})
	}
	return m.insert(sites)
}

// InsertByName inserts the snippet named name from the host's active
// scopes.
func (m *Manager) InsertByName(name string) error {
	s, ok := m.reg.ByName(m.reg.ActiveScopes(m.host.Scope()), name)
	if !ok {
		return errors.Errorf("%w: %s", ErrUnknownSnippet, name)
	}
	return m.InsertSnippet(s.Content)
}

// ExpandWithTab expands the snippet whose trigger ends at each cursor.
// It reports whether any cursor had a matching trigger; cursors without
// one are left alone.
func (m *Manager) ExpandWithTab() bool {
	scopes := m.reg.ActiveScopes(m.host.Scope())

	var sites []site
	for _, sel := range m.host.Selections() {
		offset := sel.End()
		pt := m.host.OffsetToPoint(offset)
		line := m.host.LineText(pt.Line)
		col := min(int(offset-m.host.LineStartOffset(pt.Line)), len(line))

		match, ok := m.reg.FindMatching(scopes, line[:col], line[col:])
		if !ok {
			continue
		}
		start := offset - engine.ByteOffset(match.ReplaceBefore)
		sites = append(sites, site{
			start:    start,
			end:      offset + engine.ByteOffset(match.ReplaceAfter),
			sel:      cursor.NewCursorSelection(start),
			template: match.Snippet.Content,
			scope:    match.Scope(),
		})
		m.logger.Debug().Str("snippet", match.Snippet.Name).Str("scope", match.Snippet.Scope).Msg("trigger matched")
	}
	if len(sites) == 0 {
		return false
	}
	if err := m.insert(sites); err != nil {
		m.logger.Error().Err(err).Msg("expanding snippet")
	}
	return true
}

// insert replaces each site with its expansion, last site first, and
// attaches the resulting tabstops.
func (m *Manager) insert(sites []site) error {
	sort.Slice(sites, func(i, j int) bool { return sites[i].start < sites[j].start })

	nest := m.nested && m.Active()
	if !nest && m.session != nil {
		m.prompt.Close()
		m.session.Detach(tabstop.ReasonReplaced)
	}

	groups := make([]tabstop.Group, 0, len(sites))
	var ctx variable.Context
	for i := len(sites) - 1; i >= 0; i-- {
		st := sites[i]
		removed := st.end - st.start

		// Triggers are removed before expanding, so the context sees the
		// line as it will be.
		sel := st.sel
		if st.scope != nil {
			if _, err := m.host.Replace(st.start, st.end, ""); err != nil {
				return errors.Errorf("removing trigger: %w", err)
			}
			st.end = st.start
			sel = cursor.NewCursorSelection(st.start)
		}
		view := m.host.View(sel)
		out := m.expander.Expand(view, st.template, st.scope)

		if _, err := m.host.Replace(st.start, st.end, out.Text); err != nil {
			return errors.Errorf("inserting snippet: %w", err)
		}
		delta := engine.ByteOffset(len(out.Text)) - removed
		for j := range groups {
			groups[j].Start += delta
		}
		groups = append(groups, tabstop.Group{Start: st.start, Expansion: out})
		ctx = view
	}
	slices.Reverse(groups)

	if !nest {
		m.session = tabstop.NewSession(m.host,
			tabstop.WithLogger(m.logger),
			tabstop.WithResolver(m.resolver),
			tabstop.WithContext(ctx),
			tabstop.WithModeStack(m.input.ModeManager()),
			tabstop.OnDetach(func(tabstop.DetachReason) { m.prompt.Close() }),
		)
	}
	m.session.Attach(groups...)
	return nil
}

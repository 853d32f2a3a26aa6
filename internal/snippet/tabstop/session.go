package tabstop

import (
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/snipstorm/internal/engine"
	"github.com/dshills/snipstorm/internal/engine/cursor"
	"github.com/dshills/snipstorm/internal/engine/tracking"
	"github.com/dshills/snipstorm/internal/snippet/expand"
	"github.com/dshills/snipstorm/internal/snippet/variable"
)

// MarkerClass is the marker class of every tabstop range.
const MarkerClass = "snippet-marker"

// ModeName is the input mode pushed while a session is active.
const ModeName = "snippet"

// AutocompleteCommand is executed with {"matches": choices} when a tabstop
// with choices is selected.
const AutocompleteCommand = "startAutocomplete"

// Document is the host document a session edits.
type Document interface {
	Len() engine.ByteOffset
	TextRange(start, end engine.ByteOffset) string
	Replace(start, end engine.ByteOffset, text string) (engine.ByteOffset, error)

	PrimarySelection() engine.Selection
	Selections() []engine.Selection
	SetSelections(sels ...engine.Selection)

	AddMarker(span tracking.Tracked, class string) engine.MarkerID
	RemoveMarker(id engine.MarkerID)

	OnChange(fn engine.ChangeListener) *engine.Subscription
	OnAfterEdit(fn engine.Listener) *engine.Subscription
	OnSelectionChange(fn engine.Listener) *engine.Subscription
	OnSwap(fn engine.Listener) *engine.Subscription

	ExecCommand(name string, args map[string]any) error
}

// ModeStack is the input-mode stack a session pushes onto while active.
type ModeStack interface {
	Push(name string) error
	Pop() error
}

// Group is one expansion placed at a document offset. Attaching several
// groups at once merges tabstops with the same index, one group per cursor.
type Group struct {
	Start     engine.ByteOffset
	Expansion expand.Expansion
}

// DetachReason tells why a session ended.
type DetachReason uint8

const (
	// ReasonCancel is an explicit cancel, such as Escape.
	ReasonCancel DetachReason = iota

	// ReasonFinished means navigation reached the final stop.
	ReasonFinished

	// ReasonSelection means the selection left every tracked range.
	ReasonSelection

	// ReasonSwap means the document was replaced.
	ReasonSwap

	// ReasonEmptyDocument means a deletion emptied the document.
	ReasonEmptyDocument

	// ReasonNoTabstops means edits removed every tabstop.
	ReasonNoTabstops

	// ReasonReplaced means a new expansion took over the document.
	ReasonReplaced
)

// String returns the reason name.
func (r DetachReason) String() string {
	switch r {
	case ReasonCancel:
		return "cancel"
	case ReasonFinished:
		return "finished"
	case ReasonSelection:
		return "selection"
	case ReasonSwap:
		return "swap"
	case ReasonEmptyDocument:
		return "empty-document"
	case ReasonNoTabstops:
		return "no-tabstops"
	case ReasonReplaced:
		return "replaced"
	default:
		return fmt.Sprintf("DetachReason(%d)", r)
	}
}

// Session tracks the tabstops of one expansion while the user fills them
// in.
//
// A session is driven synchronously from the document's notifications and
// is not safe for concurrent use.
type Session struct {
	id       string
	doc      Document
	logger   zerolog.Logger
	resolver *variable.Resolver
	ctx      variable.Context
	modes    ModeStack

	active   bool
	pushed   bool
	inChange bool
	// rewriting is the mirror being replaced by updateLinkedFields.
	rewriting *Range

	// tabstops is the navigation order: the final stop first, then 1..N.
	tabstops []*Tabstop
	ranges   []*Range
	index    int
	selected *Tabstop

	subs     []*engine.Subscription
	onDetach []func(DetachReason)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithResolver sets the resolver used to format mirrors.
func WithResolver(r *variable.Resolver) Option {
	return func(s *Session) {
		s.resolver = r
	}
}

// WithContext sets the editor context mirror formats resolve variables
// against.
func WithContext(ctx variable.Context) Option {
	return func(s *Session) {
		s.ctx = ctx
	}
}

// WithModeStack makes the session push ModeName while active.
func WithModeStack(m ModeStack) Option {
	return func(s *Session) {
		s.modes = m
	}
}

// OnDetach registers fn to run when the session detaches.
func OnDetach(fn func(DetachReason)) Option {
	return func(s *Session) {
		s.onDetach = append(s.onDetach, fn)
	}
}

// NewSession creates an inactive session bound to doc.
func NewSession(doc Document, opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		doc:    doc,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = variable.NewResolver()
	}
	s.logger = s.logger.With().Str("session", s.id).Logger()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Active reports whether the session is attached.
func (s *Session) Active() bool {
	return s.active
}

// Index returns the navigation index of the selected tabstop.
func (s *Session) Index() int {
	return s.index
}

// Selected returns the selected tabstop, or nil.
func (s *Session) Selected() *Tabstop {
	return s.selected
}

// Tabstops returns the tabstops in navigation order.
func (s *Session) Tabstops() []*Tabstop {
	return slices.Clone(s.tabstops)
}

// ============================================================================
// Attachment
// ============================================================================

// Attach adds the groups' tabstops and selects the next one. An inactive
// session starts listening to the document; an active one nests the new
// tabstops after the selected tabstop.
func (s *Session) Attach(groups ...Group) {
	if !s.active {
		s.start()
	}
	s.AddTabstops(groups...)
	s.TabNext(1)
}

func (s *Session) start() {
	s.active = true
	s.index = 0
	s.subs = []*engine.Subscription{
		s.doc.OnChange(s.onChange),
		s.doc.OnAfterEdit(s.updateLinkedFields),
		s.doc.OnSelectionChange(s.onSelectionChange),
		s.doc.OnSwap(func() { s.Detach(ReasonSwap) }),
	}
	if s.modes != nil {
		if err := s.modes.Push(ModeName); err != nil {
			s.logger.Warn().Err(err).Msg("cannot enter snippet mode")
		} else {
			s.pushed = true
		}
	}
	s.logger.Debug().Msg("snippet session attached")
}

// AddTabstops registers the groups' ranges without changing the selection.
// New tabstops are placed after the selected one, with their final stop
// last when the session already has tabstops.
func (s *Session) AddTabstops(groups ...Group) {
	if !s.active {
		return
	}

	open := make(map[int]*Tabstop)
	var added []*Tabstop
	for _, g := range groups {
		for _, def := range g.Expansion.Tabstops {
			ts, ok := open[def.Index]
			if !ok {
				ts = newTabstop(def.Index, def.Choices)
				open[def.Index] = ts
				added = append(added, ts)
			}
			for _, rd := range def.Ranges {
				r := &Range{
					Range: tracking.Range{
						Start: g.Start + engine.ByteOffset(rd.StartOffset),
						End:   g.Start + engine.ByteOffset(rd.EndOffset),
					},
					Linked: rd.Linked || ts.primary != nil,
					Format: rd.Format,
				}
				ts.add(r)
				r.marker = s.doc.AddMarker(r, MarkerClass)
				s.ranges = append(s.ranges, r)
			}
		}
		for _, def := range g.Expansion.Tabstops {
			ts := open[def.Index]
			for _, p := range def.Parents {
				if parent := open[p]; parent != nil && !slices.Contains(ts.parents, parent) {
					ts.parents = append(ts.parents, parent)
				}
			}
		}
	}
	if len(added) == 0 {
		return
	}

	sort.SliceStable(added, func(i, j int) bool { return added[i].index < added[j].index })
	if len(s.tabstops) > 0 && added[0].index == 0 {
		added = append(added[1:], added[0])
	}
	at := min(s.index+1, len(s.tabstops))
	s.tabstops = slices.Insert(s.tabstops, at, added...)
	s.logger.Debug().Int("added", len(added)).Int("tabstops", len(s.tabstops)).Msg("tabstops added")
}

// ============================================================================
// Navigation
// ============================================================================

// TabNext moves to the next tabstop, or the previous one when dir is
// negative. Moving past the last tabstop selects the final stop and
// detaches.
func (s *Session) TabNext(dir int) {
	if !s.active {
		return
	}
	if dir == 0 {
		dir = 1
	}
	n := len(s.tabstops)
	i := min(max(s.index+dir, 1), n)
	if i == n {
		i = 0
	}
	s.selectTabstop(i)
	if i == 0 {
		s.Detach(ReasonFinished)
	}
}

// selectTabstop selects every range of tabstop i, primary first.
func (s *Session) selectTabstop(i int) {
	s.index = i
	if i < 0 || i >= len(s.tabstops) {
		return
	}
	ts := s.tabstops[i]
	if len(ts.ranges) == 0 {
		return
	}
	s.selected = ts

	bounds := ts.Ranges()
	sels := make([]engine.Selection, len(bounds))
	for j, r := range bounds {
		sels[j] = cursor.NewSelection(r.Start, r.End)
	}
	s.doc.SetSelections(sels...)

	if len(ts.choices) > 0 && s.active {
		err := s.doc.ExecCommand(AutocompleteCommand, map[string]any{"matches": slices.Clone(ts.choices)})
		if err != nil {
			s.logger.Debug().Err(err).Msg("choice prompt unavailable")
		}
	}
}

// ============================================================================
// Document Notifications
// ============================================================================

// onChange keeps every tabstop's ranges in step with the document. The
// selected tabstop and its parents absorb insertions at their boundaries;
// the others reject them. Ranges of other tabstops swallowed by a removal
// are dropped.
func (s *Session) onChange(d engine.Delta) {
	if !s.active {
		return
	}
	for _, ts := range slices.Clone(s.tabstops) {
		if ts == s.selected || ts.isParent(s.selected) {
			ts.list.SetBias(tracking.BiasGrow)
		} else {
			ts.list.SetBias(tracking.BiasReject)
		}
		var collapsed []*Range
		if s.rewriting != nil && s.rewriting.tabstop == ts {
			collapsed = ts.list.ApplyEditTo(d, s.rewriting)
		} else {
			collapsed = ts.list.ApplyEdit(d)
		}
		if !d.IsRemove() || ts == s.selected {
			continue
		}
		for _, r := range collapsed {
			s.removeRange(r)
			if !s.active {
				return
			}
		}
	}
	if !s.inChange && d.IsRemove() && s.doc.Len() == 0 {
		s.Detach(ReasonEmptyDocument)
	}
}

// updateLinkedFields copies the selected tabstop's primary text into its
// mirrors once an edit completes.
func (s *Session) updateLinkedFields() {
	ts := s.selected
	if !s.active || s.inChange || ts == nil || ts.primary == nil || !ts.hasLinked() {
		return
	}

	s.inChange = true
	defer func() {
		s.inChange = false
		s.rewriting = nil
	}()
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error().Interface("panic", rec).Msg("mirror update aborted")
		}
	}()

	sels := s.doc.Selections()
	rewritten := false
	defer func() {
		if rewritten && s.active {
			s.doc.SetSelections(sels...)
		}
	}()

	text := s.doc.TextRange(ts.primary.Start, ts.primary.End)
	for _, r := range slices.Clone(ts.ranges) {
		if !r.Linked {
			continue
		}
		want := text
		if r.Format != nil {
			want = s.resolver.Format(s.ctx, nil, text, r.Format)
		}
		if s.doc.TextRange(r.Start, r.End) == want {
			continue
		}
		start, end := r.Start, r.End
		s.rewriting = r
		_, err := s.doc.Replace(start, end, want)
		s.rewriting = nil
		if err != nil {
			s.logger.Error().Err(err).Msg("mirror update aborted")
			return
		}
		if !s.active {
			return
		}
		rewritten = true
		n := engine.ByteOffset(len(want))
		for i, sel := range sels {
			sels[i] = engine.Selection{
				Anchor: shiftOffset(sel.Anchor, start, end, n),
				Head:   shiftOffset(sel.Head, start, end, n),
			}
		}
	}
}

// shiftOffset maps x through the replacement of [start, end) by n bytes.
// An offset at start stays before the new text.
func shiftOffset(x, start, end, n engine.ByteOffset) engine.ByteOffset {
	switch {
	case x <= start:
		return x
	case x >= end:
		return x - (end - start) + n
	default:
		return start + n
	}
}

// onSelectionChange detaches once the primary selection leaves every
// primary range.
func (s *Session) onSelectionChange() {
	if !s.active || s.inChange {
		return
	}
	sel := s.doc.PrimarySelection()
	for _, r := range s.ranges {
		if r.Linked {
			continue
		}
		if r.Contains(sel.Head) && (sel.IsEmpty() || r.Contains(sel.Anchor)) {
			return
		}
	}
	s.Detach(ReasonSelection)
}

// removeRange forgets r. A tabstop left without ranges is removed, and a
// session left without tabstops detaches.
func (s *Session) removeRange(r *Range) {
	ts := r.tabstop
	ts.remove(r)
	if i := slices.Index(s.ranges, r); i >= 0 {
		s.ranges = slices.Delete(s.ranges, i, i+1)
	}
	s.doc.RemoveMarker(r.marker)

	if len(ts.ranges) > 0 {
		return
	}
	if i := slices.Index(s.tabstops, ts); i >= 0 {
		s.tabstops = slices.Delete(s.tabstops, i, i+1)
		if i < s.index {
			s.index--
		}
	}
	if len(s.tabstops) == 0 {
		s.Detach(ReasonNoTabstops)
	}
}

// ============================================================================
// Detach
// ============================================================================

// Detach ends the session: it stops listening to the document, removes
// every marker and leaves snippet mode. Detaching an inactive session does
// nothing.
func (s *Session) Detach(reason DetachReason) {
	if !s.active {
		return
	}
	s.active = false

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error().Interface("panic", rec).Msg("detach failed")
		}
	}()

	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil

	ranges := s.ranges
	s.ranges = nil
	s.tabstops = nil
	s.selected = nil
	s.index = 0
	for _, r := range ranges {
		s.doc.RemoveMarker(r.marker)
	}

	if s.pushed {
		s.pushed = false
		if err := s.modes.Pop(); err != nil {
			s.logger.Warn().Err(err).Msg("cannot leave snippet mode")
		}
	}

	s.logger.Debug().Stringer("reason", reason).Msg("snippet session detached")
	for _, fn := range s.onDetach {
		fn(reason)
	}
}

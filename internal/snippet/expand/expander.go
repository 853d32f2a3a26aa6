package expand

import (
	"slices"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dshills/snipstorm/internal/snippet/token"
	"github.com/dshills/snipstorm/internal/snippet/variable"
)

// Context is the editor state an expansion is computed against.
type Context interface {
	variable.Context

	// TabString is the text a template tab expands to.
	TabString() string

	// Indentation is the leading whitespace of the insertion line.
	Indentation() string
}

// Position is a row/column location relative to the insertion point.
// Columns are bytes; on row 0 they are relative to the insertion column.
type Position struct {
	Row    int
	Column int
}

// RangeDef is one occurrence of a tabstop in the expanded text.
type RangeDef struct {
	Start Position
	End   Position

	// StartOffset and EndOffset are byte offsets into Expansion.Text.
	StartOffset int
	EndOffset   int

	// Linked marks a mirror of the tabstop's primary range.
	Linked bool

	// Format is the transform a mirror applies to the primary's text.
	Format *token.Format
}

// Definition groups the occurrences of one tabstop.
type Definition struct {
	// Index is the renumbered id: 1..N in source order of ids, 0 for the
	// final stop.
	Index int

	// SourceID is the id as written in the template.
	SourceID int

	Ranges  []RangeDef
	Choices []string

	// Parents are the indexes of tabstops whose ranges enclose this one.
	Parents []int

	// Implicit is set on a final stop the template did not contain.
	Implicit bool
}

// Primary returns the definition's non-linked range.
func (d Definition) Primary() (RangeDef, bool) {
	for _, r := range d.Ranges {
		if !r.Linked {
			return r, true
		}
	}
	return RangeDef{}, false
}

// Expansion is the result of expanding one template.
type Expansion struct {
	Text string

	// Tabstops is sorted by Index and always contains index 0.
	Tabstops []Definition

	// End is the position just past Text.
	End Position
}

// Definition returns the tabstop with the given index.
func (e Expansion) Definition(index int) (Definition, bool) {
	for _, d := range e.Tabstops {
		if d.Index == index {
			return d, true
		}
	}
	return Definition{}, false
}

// HasFields reports whether the expansion has anything to navigate besides
// an implicit final stop.
func (e Expansion) HasFields() bool {
	for _, d := range e.Tabstops {
		if !d.Implicit {
			return true
		}
	}
	return false
}

// Expander turns templates into text and tabstop definitions.
type Expander struct {
	resolver *variable.Resolver
	logger   zerolog.Logger
}

// Option configures an Expander.
type Option func(*Expander)

// WithLogger sets the expander's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Expander) {
		e.logger = logger
	}
}

// New creates an expander resolving variables through resolver.
func New(resolver *variable.Resolver, opts ...Option) *Expander {
	if resolver == nil {
		resolver = variable.NewResolver()
	}
	e := &Expander{
		resolver: resolver,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolver returns the variable resolver.
func (e *Expander) Resolver() *variable.Resolver {
	return e.resolver
}

// Expand expands template for the editor state ctx. scope carries capture
// stores from trigger matching and may be nil. ctx may be nil, in which
// case context variables are empty and tabs are kept.
//
// Variables are resolved once, before any tabstop value is copied. Every
// occurrence of a tabstop id receives the id's canonical value: the first
// plain placeholder, or failing that the first placeholder with nested
// tabstops.
func (e *Expander) Expand(ctx Context, template string, scope *variable.Scope) Expansion {
	template = strings.ReplaceAll(template, "\r", "")

	x := &expansion{
		resolver:  e.resolver,
		scope:     scope,
		values:    make(map[int][]node),
		nested:    make(map[int]bool),
		choices:   make(map[int][]string),
		expanding: make(map[int]bool),
	}
	w := &writer{tab: "\t", record: true}
	if ctx != nil {
		x.ctx = ctx
		w.tab = ctx.TabString()
		w.indent = ctx.Indentation()
	}

	nodes := x.resolve(token.Tokenize(template))
	x.canonicalize(nodes)
	x.emit(w, nodes)

	out := x.finish(w)
	e.logger.Debug().
		Int("tabstops", len(out.Tabstops)).
		Int("bytes", len(out.Text)).
		Msg("snippet expanded")
	return out
}

// ============================================================================
// Resolution
// ============================================================================

type nodeKind uint8

const (
	nodeTemplate nodeKind = iota // template text
	nodeValue                    // resolved variable text
	nodeTabstop
)

type node struct {
	kind     nodeKind
	text     string
	id       int
	format   *token.Format
	choices  []string
	children []node
}

type occurrence struct {
	id          int
	format      *token.Format
	start, end  Position
	startOffset int
	endOffset   int
	parents     []int
}

type expansion struct {
	ctx      variable.Context
	resolver *variable.Resolver
	scope    *variable.Scope

	// line is the template text since the last template newline.
	line string

	values    map[int][]node
	nested    map[int]bool
	choices   map[int][]string
	expanding map[int]bool
	stack     []int

	occurrences []*occurrence
}

// resolve evaluates variables, leaving tabstops as nodes.
func (x *expansion) resolve(tokens []token.Token) []node {
	var out []node
	for _, t := range tokens {
		switch t := t.(type) {
		case token.Literal:
			x.track(t.Text)
			out = append(out, node{kind: nodeTemplate, text: t.Text})
		case *token.Variable:
			text, body, useBody := x.resolver.Evaluate(x.ctx, x.scope, t, x.indentation())
			if useBody {
				out = append(out, x.resolve(body)...)
			} else if text != "" {
				out = append(out, node{kind: nodeValue, text: text})
			}
		case *token.Tabstop:
			out = append(out, node{
				kind:     nodeTabstop,
				id:       t.ID,
				format:   t.Format,
				choices:  t.Choices,
				children: x.resolve(t.Placeholder),
			})
		}
	}
	return out
}

func (x *expansion) track(text string) {
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		x.line = text[i+1:]
		return
	}
	x.line += text
}

// indentation is the leading tabs of the current template line.
func (x *expansion) indentation() string {
	return x.line[:len(x.line)-len(strings.TrimLeft(x.line, "\t"))]
}

// canonicalize picks each id's value and choices in document order.
func (x *expansion) canonicalize(nodes []node) {
	for _, n := range nodes {
		if n.kind != nodeTabstop {
			continue
		}
		if n.choices != nil && x.choices[n.id] == nil {
			x.choices[n.id] = n.choices
		}
		if len(n.children) > 0 {
			_, set := x.values[n.id]
			nested := hasTabstop(n.children)
			switch {
			case nested && !set:
				x.values[n.id] = n.children
				x.nested[n.id] = true
			case !nested && (!set || x.nested[n.id]):
				x.values[n.id] = n.children
				x.nested[n.id] = false
			}
		}
		x.canonicalize(n.children)
	}
}

func hasTabstop(nodes []node) bool {
	return slices.ContainsFunc(nodes, func(n node) bool { return n.kind == nodeTabstop })
}

// ============================================================================
// Emission
// ============================================================================

func (x *expansion) emit(w *writer, nodes []node) {
	for _, n := range nodes {
		switch n.kind {
		case nodeTemplate:
			w.template(n.text)
		case nodeValue:
			w.value(n.text)
		case nodeTabstop:
			x.emitTabstop(w, n)
		}
	}
}

// emitTabstop writes the canonical value of n.id. An id already being
// expanded is dropped, which breaks self-referencing placeholders.
func (x *expansion) emitTabstop(w *writer, n node) {
	if x.expanding[n.id] {
		return
	}

	var occ *occurrence
	if w.record {
		occ = &occurrence{
			id:          n.id,
			format:      n.format,
			start:       w.pos(),
			startOffset: w.b.Len(),
			parents:     slices.Clone(x.stack),
		}
		x.occurrences = append(x.occurrences, occ)
	}

	x.expanding[n.id] = true
	x.stack = append(x.stack, n.id)

	value := x.values[n.id]
	if n.format != nil {
		sub := &writer{tab: w.tab, indent: w.indent}
		x.emit(sub, value)
		w.raw(x.resolver.Format(x.ctx, x.scope, sub.b.String(), n.format))
	} else {
		x.emit(w, value)
	}

	x.stack = x.stack[:len(x.stack)-1]
	delete(x.expanding, n.id)

	if occ != nil {
		occ.end = w.pos()
		occ.endOffset = w.b.Len()
	}
}

// finish renumbers ids and groups occurrences into definitions.
func (x *expansion) finish(w *writer) Expansion {
	var ids []int
	for _, occ := range x.occurrences {
		if occ.id != 0 && !slices.Contains(ids, occ.id) {
			ids = append(ids, occ.id)
		}
	}
	sort.Ints(ids)
	renumber := map[int]int{0: 0}
	for i, id := range ids {
		renumber[id] = i + 1
	}

	defs := make(map[int]*Definition)
	for _, occ := range x.occurrences {
		index := renumber[occ.id]
		d, ok := defs[index]
		if !ok {
			d = &Definition{Index: index, SourceID: occ.id, Choices: x.choices[occ.id]}
			defs[index] = d
		}
		d.Ranges = append(d.Ranges, RangeDef{
			Start:       occ.start,
			End:         occ.end,
			StartOffset: occ.startOffset,
			EndOffset:   occ.endOffset,
			Format:      occ.format,
		})
		for _, p := range occ.parents {
			if pi := renumber[p]; !slices.Contains(d.Parents, pi) {
				d.Parents = append(d.Parents, pi)
			}
		}
	}

	out := Expansion{Text: w.b.String(), End: w.pos()}
	if _, ok := defs[0]; !ok {
		defs[0] = &Definition{
			Implicit: true,
			Ranges: []RangeDef{{
				Start:       out.End,
				End:         out.End,
				StartOffset: len(out.Text),
				EndOffset:   len(out.Text),
			}},
		}
	}

	for _, d := range defs {
		markLinked(d)
		sort.Ints(d.Parents)
		out.Tabstops = append(out.Tabstops, *d)
	}
	sort.Slice(out.Tabstops, func(i, j int) bool {
		return out.Tabstops[i].Index < out.Tabstops[j].Index
	})
	return out
}

// markLinked makes the first unformatted range primary and every other
// range a mirror. When all ranges carry a format the first is primary: it
// shows its formatted text until edited, then holds what the user types.
func markLinked(d *Definition) {
	primary := slices.IndexFunc(d.Ranges, func(r RangeDef) bool { return r.Format == nil })
	if primary < 0 {
		primary = 0
	}
	for i := range d.Ranges {
		d.Ranges[i].Linked = i != primary
	}
}

// ============================================================================
// Writer
// ============================================================================

// writer accumulates expanded text and tracks the current position.
type writer struct {
	b        strings.Builder
	row, col int
	tab      string
	indent   string
	record   bool
}

// template writes template text: tabs become the tab string and newlines
// carry the insertion line's indentation.
func (w *writer) template(s string) {
	s = strings.ReplaceAll(s, "\t", w.tab)
	if w.indent != "" {
		s = strings.ReplaceAll(s, "\n", "\n"+w.indent)
	}
	w.raw(s)
}

// value writes resolved variable text.
func (w *writer) value(s string) {
	w.raw(strings.ReplaceAll(s, "\t", w.tab))
}

func (w *writer) raw(s string) {
	w.b.WriteString(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		w.row += strings.Count(s, "\n")
		w.col = len(s) - i - 1
		return
	}
	w.col += len(s)
}

func (w *writer) pos() Position {
	return Position{Row: w.row, Column: w.col}
}

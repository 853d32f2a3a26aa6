package tabstop

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/snipstorm/internal/engine"
	"github.com/dshills/snipstorm/internal/engine/cursor"
	"github.com/dshills/snipstorm/internal/snippet/expand"
)

func attach(t *testing.T, template string, opts ...Option) (*engine.Engine, *Session) {
	t.Helper()
	e := engine.New()
	out := expand.New(nil).Expand(e.PrimaryView(), template, nil)
	_, err := e.Insert(0, out.Text)
	require.NoError(t, err)

	s := NewSession(e, opts...)
	s.Attach(Group{Start: 0, Expansion: out})
	return e, s
}

func bounds(ts *Tabstop) [][2]engine.ByteOffset {
	var out [][2]engine.ByteOffset
	for _, r := range ts.Ranges() {
		out = append(out, [2]engine.ByteOffset{r.Start, r.End})
	}
	return out
}

type recordingStack struct {
	pushed []string
	pops   int
}

func (r *recordingStack) Push(name string) error {
	r.pushed = append(r.pushed, name)
	return nil
}

func (r *recordingStack) Pop() error {
	r.pops++
	return nil
}

// ============================================================================
// Mirroring
// ============================================================================

func TestTypingUpdatesFormattedMirror(t *testing.T) {
	e, s := attach(t, `foo(${1:bar}, ${1/.*/\U$0/})`)

	require.True(t, s.Active())
	assert.Equal(t, "foo(bar, BAR)", e.Text())
	assert.Equal(t, []engine.Selection{cursor.NewSelection(4, 7), cursor.NewSelection(9, 12)}, e.Selections())

	require.NoError(t, e.Type("baz"))

	assert.Equal(t, "foo(baz, BAZ)", e.Text())
	assert.True(t, s.Active())
	assert.Equal(t, [][2]engine.ByteOffset{{4, 7}, {9, 12}}, bounds(s.Selected()))
}

func TestMirrorFollowsPrimaryEdits(t *testing.T) {
	e, s := attach(t, "${1:ab} $1")
	assert.Equal(t, "ab ab", e.Text())

	// Typing at the end of the primary only; the mirror catches up after the edit.
	_, err := e.Insert(2, "c")
	require.NoError(t, err)

	assert.Equal(t, "abc abc", e.Text())
	assert.Equal(t, [][2]engine.ByteOffset{{0, 3}, {4, 7}}, bounds(s.Selected()))

	require.NoError(t, e.Delete(0, 1))
	assert.Equal(t, "bc bc", e.Text())
}

func TestAdjacentMirrorFollowsPrimary(t *testing.T) {
	type step struct {
		at     engine.ByteOffset
		text   string
		want   string
		bounds [][2]engine.ByteOffset
	}
	tests := []struct {
		name     string
		template string
		initial  string
		steps    []step
	}{
		{
			name:     "plain mirror",
			template: "${1:a}$1",
			initial:  "aa",
			steps: []step{
				{at: 1, text: "b", want: "abab", bounds: [][2]engine.ByteOffset{{0, 2}, {2, 4}}},
				{at: 2, text: "c", want: "abcabc", bounds: [][2]engine.ByteOffset{{0, 3}, {3, 6}}},
			},
		},
		{
			name:     "formatted mirror",
			template: `${1:a}${1/(.*)/\U$1/}`,
			initial:  "aA",
			steps: []step{
				{at: 1, text: "b", want: "abAB", bounds: [][2]engine.ByteOffset{{0, 2}, {2, 4}}},
				{at: 2, text: "c", want: "abcABC", bounds: [][2]engine.ByteOffset{{0, 3}, {3, 6}}},
			},
		},
		{
			name:     "empty primary",
			template: "${1}$1",
			initial:  "",
			steps: []step{
				{at: 0, text: "b", want: "bb", bounds: [][2]engine.ByteOffset{{0, 1}, {1, 2}}},
				{at: 1, text: "c", want: "bcbc", bounds: [][2]engine.ByteOffset{{0, 2}, {2, 4}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, s := attach(t, tt.template)
			require.True(t, s.Active())
			assert.Equal(t, tt.initial, e.Text())

			for _, st := range tt.steps {
				e.SetCursor(st.at)
				_, err := e.Insert(st.at, st.text)
				require.NoError(t, err)

				assert.Equal(t, st.want, e.Text())
				require.True(t, s.Active())
				assert.Equal(t, st.bounds, bounds(s.Selected()))
				assert.Equal(t, cursor.NewCursorSelection(st.at+engine.ByteOffset(len(st.text))), e.PrimarySelection())
			}
		})
	}
}

func TestAllFormattedTabstopEditsFirstRange(t *testing.T) {
	e, s := attach(t, "${1/(.*)/<$1>/} ${1/(.*)/[$1]/}")
	assert.Equal(t, "<> []", e.Text())

	p, ok := s.Selected().Primary()
	require.True(t, ok)
	assert.Equal(t, engine.ByteOffset(0), p.Start)
	assert.Equal(t, engine.ByteOffset(2), p.End)

	require.NoError(t, e.Type("ab"))
	assert.Equal(t, "ab [ab]", e.Text())
	assert.True(t, s.Active())
}

// Random edits inside the primary range must leave every mirror equal to
// its rendering of the primary text.
func TestMirrorsHoldUnderRandomEdits(t *testing.T) {
	upper := strings.ToUpper
	tests := []struct {
		name     string
		template string
		mirror   func(string) string
	}{
		{"separated", "${1:ab} x $1 y", nil},
		{"formatted", "(${1:ab}, ${1/(.*)/[$1]/}) ${2:z}", func(s string) string { return "[" + s + "]" }},
		{"adjacent", "${1:a}$1", nil},
		{"adjacent formatted", `${1:a}${1/(.*)/\U$1/}`, upper},
		{"empty adjacent", "<${1}$1>", nil},
		{"three copies", "$1-${1:q}-$1", nil},
	}

	const letters = "abcxyz"
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(int64(i + 1)))
			e, s := attach(t, tt.template)
			require.True(t, s.Active())

			for step := range 60 {
				ts := s.Selected()
				p, ok := ts.Primary()
				require.True(t, ok)

				if p.Len() > 0 && rng.Intn(3) == 0 {
					at := p.Start + engine.ByteOffset(rng.Intn(int(p.Len())))
					e.SetCursor(at)
					require.NoError(t, e.Delete(at, at+1))
				} else {
					at := p.Start + engine.ByteOffset(rng.Intn(int(p.Len())+1))
					e.SetCursor(at)
					_, err := e.Insert(at, string(letters[rng.Intn(len(letters))]))
					require.NoError(t, err)
				}

				require.True(t, s.Active(), "step %d: %q", step, e.Text())
				checkMirrors(t, e, ts, tt.mirror, step)
			}
		})
	}
}

func checkMirrors(t *testing.T, e *engine.Engine, ts *Tabstop, mirror func(string) string, step int) {
	t.Helper()
	for _, other := range ts.Ranges() {
		require.True(t, other.Start <= other.End, "step %d: %v", step, other)
		require.True(t, other.End <= e.Len(), "step %d: %v", step, other)
	}

	p, ok := ts.Primary()
	require.True(t, ok)
	want := e.TextRange(p.Start, p.End)
	if mirror != nil {
		want = mirror(want)
	}
	for _, r := range ts.Ranges() {
		if r == p {
			continue
		}
		assert.Equal(t, want, e.TextRange(r.Start, r.End), "step %d: %q", step, e.Text())
	}
}

func TestMultipleCursorsShareTabstops(t *testing.T) {
	e := engine.New(engine.WithContent("<>\n<>"))
	out := expand.New(nil).Expand(nil, "<$1>", nil)
	s := NewSession(e)
	s.Attach(Group{Start: 0, Expansion: out}, Group{Start: 3, Expansion: out})

	require.Len(t, s.Tabstops(), 2)
	assert.Equal(t, []engine.Selection{cursor.NewCursorSelection(1), cursor.NewCursorSelection(4)}, e.Selections())

	require.NoError(t, e.Type("x"))

	assert.Equal(t, "<x>\n<x>", e.Text())
	assert.Equal(t, [][2]engine.ByteOffset{{1, 2}, {5, 6}}, bounds(s.Selected()))
}

// ============================================================================
// Navigation
// ============================================================================

func TestTabNextVisitsTabstopsThenDetaches(t *testing.T) {
	var reasons []DetachReason
	e, s := attach(t, "${1:a}${2:b}$0", OnDetach(func(r DetachReason) { reasons = append(reasons, r) }))

	assert.Equal(t, 1, s.Index())
	assert.Equal(t, cursor.NewSelection(0, 1), e.PrimarySelection())

	s.TabNext(1)
	assert.Equal(t, 2, s.Index())
	assert.Equal(t, cursor.NewSelection(1, 2), e.PrimarySelection())

	s.TabNext(-1)
	assert.Equal(t, 1, s.Index())

	s.TabNext(1)
	s.TabNext(1)
	assert.False(t, s.Active())
	assert.Equal(t, cursor.NewCursorSelection(2), e.PrimarySelection())
	assert.Equal(t, []DetachReason{ReasonFinished}, reasons)
	assert.Empty(t, e.Markers())
}

func TestRenumberedNavigationOrder(t *testing.T) {
	_, s := attach(t, "$9 ${3:x} $9")

	var order []int
	for _, ts := range s.Tabstops() {
		order = append(order, ts.Index())
	}
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Equal(t, 1, s.Selected().Index())
}

func TestLiteralTemplateLeavesNoSession(t *testing.T) {
	e, s := attach(t, "plain")

	assert.False(t, s.Active())
	assert.Equal(t, cursor.NewCursorSelection(5), e.PrimarySelection())
}

func TestChoicesStartAutocomplete(t *testing.T) {
	e := engine.New()
	var matches any
	e.RegisterCommand(AutocompleteCommand, func(_ *engine.Engine, args map[string]any) error {
		matches = args["matches"]
		return nil
	})
	out := expand.New(nil).Expand(nil, "${1|one,two|}", nil)
	_, err := e.Insert(0, out.Text)
	require.NoError(t, err)

	NewSession(e).Attach(Group{Expansion: out})

	assert.Equal(t, []string{"one", "two"}, matches)
}

func TestNestedAttachInsertsAfterSelected(t *testing.T) {
	e, s := attach(t, "${1:a} ${2:b}")
	require.Equal(t, 1, s.Index())

	// Expand a nested snippet over the selected field.
	inner := expand.New(nil).Expand(nil, "[${1:x}]", nil)
	_, err := e.Replace(0, 1, inner.Text)
	require.NoError(t, err)
	s.Attach(Group{Start: 0, Expansion: inner})

	require.True(t, s.Active())
	assert.Equal(t, "[x] b", e.Text())
	assert.Equal(t, cursor.NewSelection(1, 2), e.PrimarySelection())

	s.TabNext(1) // nested final stop
	assert.Equal(t, cursor.NewCursorSelection(3), e.PrimarySelection())
	s.TabNext(1)
	assert.Equal(t, cursor.NewSelection(4, 5), e.PrimarySelection())
	assert.True(t, s.Active())
}

// ============================================================================
// Range Tracking
// ============================================================================

func TestActiveTabstopGrowsAtBoundary(t *testing.T) {
	e, s := attach(t, "${1:ab} ${2:cd}")

	ts := s.Selected()
	require.Equal(t, 1, ts.Index())
	_, err := e.Insert(2, "x")
	require.NoError(t, err)

	assert.Equal(t, [][2]engine.ByteOffset{{0, 3}}, bounds(ts))
}

func TestInactiveTabstopRejectsBoundaryInsert(t *testing.T) {
	e, s := attach(t, "${1:ab} ${2:cd}")
	first := s.Selected()
	s.TabNext(1)
	require.Equal(t, 2, s.Selected().Index())

	_, err := e.Insert(2, "x")
	require.NoError(t, err)

	assert.Equal(t, [][2]engine.ByteOffset{{0, 2}}, bounds(first))
	assert.Equal(t, [][2]engine.ByteOffset{{4, 6}}, bounds(s.Selected()))
}

func TestRemovalDropsSwallowedTabstops(t *testing.T) {
	e, s := attach(t, "${1:ab} ${2:cd}")

	require.NoError(t, e.Delete(2, 5))

	assert.Equal(t, "ab", e.Text())
	assert.True(t, s.Active())
	assert.Len(t, s.Tabstops(), 2)
	assert.Len(t, e.Markers(), 2)
	assert.Equal(t, [][2]engine.ByteOffset{{0, 2}}, bounds(s.Selected()))
}

// ============================================================================
// Detach
// ============================================================================

func TestDetachTriggers(t *testing.T) {
	tests := []struct {
		name     string
		template string
		trigger  func(e *engine.Engine, s *Session)
		want     DetachReason
	}{
		{
			name:     "cancel",
			template: "${1:a}",
			trigger:  func(_ *engine.Engine, s *Session) { s.Detach(ReasonCancel) },
			want:     ReasonCancel,
		},
		{
			name:     "selection leaves ranges",
			template: "x${1:a}x",
			trigger:  func(e *engine.Engine, _ *Session) { e.SetCursor(0) },
			want:     ReasonSelection,
		},
		{
			name:     "document swapped",
			template: "${1:a}",
			trigger:  func(e *engine.Engine, _ *Session) { _ = e.Load("other") },
			want:     ReasonSwap,
		},
		{
			name:     "document emptied",
			template: "${1:a}",
			trigger:  func(e *engine.Engine, _ *Session) { _ = e.Delete(0, 1) },
			want:     ReasonEmptyDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reasons []DetachReason
			stack := &recordingStack{}
			e, s := attach(t, tt.template,
				WithModeStack(stack),
				OnDetach(func(r DetachReason) { reasons = append(reasons, r) }),
			)
			require.True(t, s.Active())
			assert.Equal(t, []string{ModeName}, stack.pushed)

			tt.trigger(e, s)
			s.Detach(ReasonCancel)

			assert.False(t, s.Active())
			assert.Equal(t, []DetachReason{tt.want}, reasons)
			assert.Equal(t, 1, stack.pops)
			assert.Empty(t, e.Markers())
			assert.Nil(t, s.Selected())
		})
	}
}

func TestDetachOnClosedEngine(t *testing.T) {
	e, s := attach(t, "${1:a}")
	e.Close()

	assert.NotPanics(t, func() { s.Detach(ReasonCancel) })
	assert.False(t, s.Active())
}

func TestDetachReasonString(t *testing.T) {
	assert.Equal(t, "finished", ReasonFinished.String())
	assert.Equal(t, "empty-document", ReasonEmptyDocument.String())
	assert.Equal(t, "DetachReason(99)", DetachReason(99).String())
}

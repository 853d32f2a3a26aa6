package snippet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/snipstorm/internal/engine"
	"github.com/dshills/snipstorm/internal/engine/cursor"
	"github.com/dshills/snipstorm/internal/input/key"
	"github.com/dshills/snipstorm/internal/input/mode"
	"github.com/dshills/snipstorm/internal/snippet/registry"
)

var (
	tab   = key.NewSpecialEvent(key.KeyTab, key.ModNone)
	esc   = key.NewSpecialEvent(key.KeyEscape, key.ModNone)
	down  = key.NewSpecialEvent(key.KeyDown, key.ModNone)
	enter = key.NewSpecialEvent(key.KeyEnter, key.ModNone)
)

func goRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Register([]registry.Definition{
		{Name: "for", TabTrigger: "for", Content: "for ${1:i} {}"},
		{Name: "func", TabTrigger: "fn", Content: "func ${1:name}() {}"},
	}, "go"))
	return reg
}

func TestInsertSnippetAtEveryCursor(t *testing.T) {
	e := engine.New(engine.WithContent("a\nb"))
	e.SetSelections(cursor.NewCursorSelection(1), cursor.NewCursorSelection(3))
	m := NewManager(e, nil)

	require.NoError(t, m.InsertSnippet("(${1:x})"))

	assert.Equal(t, "a(x)\nb(x)", e.Text())
	assert.Equal(t, []engine.Selection{cursor.NewSelection(2, 3), cursor.NewSelection(7, 8)}, e.Selections())
	assert.True(t, m.Active())
	assert.Equal(t, mode.ModeSnippet, m.Input().CurrentMode())

	require.NoError(t, e.Type("yy"))
	assert.Equal(t, "a(yy)\nb(yy)", e.Text())

	assert.True(t, m.HandleKey(tab))
	assert.False(t, m.Active())
	assert.Equal(t, cursor.NewCursorSelection(5), e.PrimarySelection())
	assert.Equal(t, mode.ModeInsert, m.Input().CurrentMode())
}

func TestInsertSnippetWrapsSelection(t *testing.T) {
	e := engine.New(engine.WithContent("word"))
	e.SetSelections(cursor.NewSelection(0, 4))
	m := NewManager(e, nil)

	require.NoError(t, m.InsertSnippet("<${1:$TM_SELECTED_TEXT}>"))

	assert.Equal(t, "<word>", e.Text())
	assert.Equal(t, cursor.NewSelection(1, 5), e.PrimarySelection())
}

func TestInsertByName(t *testing.T) {
	e := engine.New(engine.WithScope("go"))
	m := NewManager(e, goRegistry(t))

	require.NoError(t, m.InsertByName("func"))
	assert.Equal(t, "func name() {}", e.Text())

	err := m.InsertByName("missing")
	assert.ErrorIs(t, err, ErrUnknownSnippet)
}

func TestTabExpandsTrigger(t *testing.T) {
	e := engine.New(engine.WithContent("  for"), engine.WithScope("go"))
	e.SetCursor(5)
	m := NewManager(e, goRegistry(t))

	require.True(t, m.HandleKey(tab))

	assert.Equal(t, "  for i {}", e.Text())
	assert.Equal(t, cursor.NewSelection(6, 7), e.PrimarySelection())
	assert.Equal(t, mode.ModeSnippet, m.Input().CurrentMode())
}

func TestTabWithoutTriggerFallsThrough(t *testing.T) {
	tests := []struct {
		name    string
		content string
		scope   string
	}{
		{name: "other scope", content: "for", scope: "css"},
		{name: "not at word start", content: "xfor", scope: "go"},
		{name: "no trigger", content: "nothing", scope: "go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := engine.New(engine.WithContent(tt.content), engine.WithScope(tt.scope))
			e.SetCursor(e.Len())
			m := NewManager(e, goRegistry(t))

			assert.False(t, m.HandleKey(tab))
			assert.Equal(t, tt.content, e.Text())
			assert.False(t, m.Active())
		})
	}
}

func TestTabInsideSessionExpandsTrigger(t *testing.T) {
	e := engine.New(engine.WithScope("go"))
	m := NewManager(e, goRegistry(t))
	require.NoError(t, m.InsertSnippet("${1:x} ${2:y}"))
	first := m.Session()

	require.NoError(t, e.Type("fn"))
	require.True(t, m.HandleKey(tab))

	assert.Equal(t, "func name() {} y", e.Text())
	assert.False(t, first.Active())
	assert.NotSame(t, first, m.Session())
	assert.Equal(t, cursor.NewSelection(5, 9), e.PrimarySelection())
}

func TestNestedExpansionExtendsSession(t *testing.T) {
	e := engine.New()
	m := NewManager(e, nil, WithNesting(true))
	require.NoError(t, m.InsertSnippet("${1:a} ${2:b}"))
	outer := m.Session()

	require.NoError(t, m.InsertSnippet("[${1:x}]"))

	assert.Same(t, outer, m.Session())
	assert.Equal(t, "[x] b", e.Text())
	assert.Equal(t, cursor.NewSelection(1, 2), e.PrimarySelection())

	m.HandleKey(tab)
	m.HandleKey(tab)
	assert.Equal(t, cursor.NewSelection(4, 5), e.PrimarySelection())
	assert.True(t, m.Active())
}

func TestEscapeCancelsSession(t *testing.T) {
	e := engine.New()
	m := NewManager(e, nil)
	require.NoError(t, m.InsertSnippet("${1:a}${2:b}"))

	assert.True(t, m.HandleKey(esc))
	assert.False(t, m.Active())
	assert.Equal(t, mode.ModeInsert, m.Input().CurrentMode())
	assert.False(t, m.HandleKey(esc))
}

func TestShiftTabMovesBack(t *testing.T) {
	e := engine.New()
	m := NewManager(e, nil)
	require.NoError(t, m.InsertSnippet("${1:a} ${2:b}"))

	require.True(t, m.HandleKey(tab))
	assert.Equal(t, 2, m.Session().Index())

	require.True(t, m.HandleKey(key.NewSpecialEvent(key.KeyTab, key.ModShift)))
	assert.Equal(t, 1, m.Session().Index())
	assert.Equal(t, cursor.NewSelection(0, 1), e.PrimarySelection())
}

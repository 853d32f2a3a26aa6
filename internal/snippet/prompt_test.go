package snippet

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/snipstorm/internal/engine"
	"github.com/dshills/snipstorm/internal/engine/cursor"
	"github.com/dshills/snipstorm/internal/input/mode"
	"github.com/dshills/snipstorm/internal/snippet/tabstop"
)

func choiceManager(t *testing.T) (*engine.Engine, *Manager) {
	t.Helper()
	e := engine.New()
	m := NewManager(e, nil)
	require.NoError(t, m.InsertSnippet("${1|one,two,three|}!"))
	require.Equal(t, "one!", e.Text())
	return e, m
}

func TestChoicePromptOpensOnSelection(t *testing.T) {
	_, m := choiceManager(t)

	p := m.Prompt()
	require.True(t, p.IsOpen())
	assert.Equal(t, []string{"one", "two", "three"}, p.Candidates())
	assert.Equal(t, mode.ModeChoice, m.Input().CurrentMode())

	got, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, "one", got)
}

func TestChoicePromptAccept(t *testing.T) {
	e, m := choiceManager(t)

	require.True(t, m.HandleKey(down))
	got, _ := m.Prompt().Selected()
	assert.Equal(t, "two", got)

	require.True(t, m.HandleKey(enter))

	assert.Equal(t, "two!", e.Text())
	assert.False(t, m.Prompt().IsOpen())
	assert.True(t, m.Active())
	assert.Equal(t, mode.ModeSnippet, m.Input().CurrentMode())
	assert.Equal(t, cursor.NewCursorSelection(3), e.PrimarySelection())
}

func TestChoicePromptWrapsAndDismisses(t *testing.T) {
	_, m := choiceManager(t)
	p := m.Prompt()

	assert.True(t, p.Move(-1))
	got, _ := p.Selected()
	assert.Equal(t, "three", got)

	assert.True(t, m.HandleKey(esc))
	assert.False(t, p.IsOpen())
	assert.True(t, m.Active())
	assert.Equal(t, mode.ModeSnippet, m.Input().CurrentMode())

	assert.False(t, p.Move(1))
	assert.False(t, p.Accept())
}

func TestChoicePromptFiltersOnTyping(t *testing.T) {
	e, m := choiceManager(t)

	require.NoError(t, e.Type("tw"))

	assert.Equal(t, "tw!", e.Text())
	assert.Equal(t, []string{"two"}, m.Prompt().Candidates())
}

func TestChoicePromptFilter(t *testing.T) {
	p := newPrompt(engine.New(), nil, zerolog.Nop())
	require.NoError(t, p.Open(nil, []string{"alpha", "beta", "alphabet"}))

	tests := []struct {
		text string
		want []string
	}{
		{text: "", want: []string{"alpha", "beta", "alphabet"}},
		{text: "alp", want: []string{"alpha", "alphabet"}},
		{text: "BET", want: []string{"beta", "alphabet"}},
		{text: "zzz", want: []string{"alpha", "beta", "alphabet"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			p.Filter(tt.text)
			assert.Equal(t, tt.want, p.Candidates())
		})
	}
}

func TestChoicePromptClosesWithSession(t *testing.T) {
	_, m := choiceManager(t)

	m.Session().Detach(tabstop.ReasonCancel)

	assert.False(t, m.Prompt().IsOpen())
	assert.ErrorIs(t, m.Prompt().Open(nil, nil), ErrNoChoices)
}

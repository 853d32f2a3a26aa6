package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/snipstorm/internal/app"
)

func newTestUI(t *testing.T, opts app.Options) (*tryUI, tcell.SimulationScreen) {
	t.Helper()
	opts.IgnoreEnv = true
	opts.LogOutput = new(bytes.Buffer)
	application, err := app.New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 5)
	t.Cleanup(screen.Fini)

	application.Engine().SetCursor(application.Engine().Len())
	return newTryUI(screen, application), screen
}

func press(ui *tryUI, k tcell.Key) {
	ui.handle(tcell.NewEventKey(k, 0, tcell.ModNone))
}

func typeText(ui *tryUI, s string) {
	for _, r := range s {
		ui.handle(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

// row returns the text drawn on screen row y.
func row(screen tcell.SimulationScreen, y int) string {
	cells, width, _ := screen.GetContents()
	var b strings.Builder
	for _, c := range cells[y*width : (y+1)*width] {
		if len(c.Runes) > 0 {
			b.WriteRune(c.Runes[0])
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func TestTryExpandsAndNavigates(t *testing.T) {
	ui, screen := newTestUI(t, app.Options{SnippetDirs: []string{snippetDir(t)}, Scope: "go"})

	typeText(ui, "fn")
	press(ui, tcell.KeyTab)
	ui.draw()

	assert.Equal(t, "func name() {}", row(screen, 0))
	assert.Equal(t, "SNIPPET  $1", row(screen, 4))

	typeText(ui, "run")
	press(ui, tcell.KeyTab)
	ui.draw()

	assert.Equal(t, "func run() {}", ui.app.Engine().Text())
	assert.Equal(t, "INSERT", row(screen, 4))
	assert.False(t, ui.quit)
}

func TestTryChoicePrompt(t *testing.T) {
	ui, screen := newTestUI(t, app.Options{})
	require.NoError(t, ui.app.Manager().InsertSnippet("${1|red,green|};"))
	ui.draw()

	assert.Equal(t, "CHOICE  $1  [red] green", row(screen, 4))

	press(ui, tcell.KeyDown)
	press(ui, tcell.KeyEnter)
	assert.Equal(t, "green;", ui.app.Engine().Text())
}

func TestTryEditing(t *testing.T) {
	ui, _ := newTestUI(t, app.Options{Content: "ab"})

	press(ui, tcell.KeyLeft)
	typeText(ui, "é")
	press(ui, tcell.KeyEnter)
	assert.Equal(t, "aé\nb", ui.app.Engine().Text())

	press(ui, tcell.KeyBackspace2)
	press(ui, tcell.KeyBackspace2)
	assert.Equal(t, "ab", ui.app.Engine().Text())

	press(ui, tcell.KeyTab)
	assert.Equal(t, "a    b", ui.app.Engine().Text())
}

func TestTryQuit(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
	}{
		{name: "escape", key: tcell.KeyEscape},
		{name: "ctrl+c", key: tcell.KeyCtrlC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui, _ := newTestUI(t, app.Options{})
			press(ui, tt.key)
			assert.True(t, ui.quit)
		})
	}
}

func TestTryEscapeLeavesSnippetFirst(t *testing.T) {
	ui, _ := newTestUI(t, app.Options{})
	require.NoError(t, ui.app.Manager().InsertSnippet("${1:a}${2:b}"))

	press(ui, tcell.KeyEscape)
	assert.False(t, ui.quit)
	assert.False(t, ui.app.Manager().Active())

	press(ui, tcell.KeyEscape)
	assert.True(t, ui.quit)
}

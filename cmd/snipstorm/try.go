package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/dshills/snipstorm/internal/app"
	"github.com/dshills/snipstorm/internal/engine"
	"github.com/dshills/snipstorm/internal/input/key"
)

type tryFlags struct {
	file  string
	scope string
}

// newTryCmd creates the try command.
func newTryCmd(g *globalFlags) *cobra.Command {
	flags := &tryFlags{}

	cmd := &cobra.Command{
		Use:   "try [TEMPLATE]",
		Short: "Edit a scratch document with live snippets",
		Long: `Edit a scratch document in the terminal with snippets and tabstops live.

Tab expands the trigger before the cursor and moves through tabstops,
Shift+Tab moves back and Esc leaves the snippet. When TEMPLATE is given it
is expanded first. Esc outside a snippet or Ctrl+C quits and prints the
document.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readDocument(flags.file)
			if err != nil {
				return err
			}
			opts := g.options(cmd)
			opts.FilePath = flags.file
			opts.Scope = flags.scope
			opts.Content = content
			application, err := app.New(opts)
			if err != nil {
				return err
			}
			defer func() { _ = application.Close() }()

			application.Engine().SetCursor(application.Engine().Len())
			if len(args) == 1 {
				if err := application.Manager().InsertSnippet(args[0]); err != nil {
					return err
				}
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return errors.Errorf("creating screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return errors.Errorf("initializing screen: %w", err)
			}
			ui := newTryUI(screen, application)
			ui.run()
			screen.Fini()

			fmt.Fprintln(cmd.OutOrStdout(), application.Engine().Text())
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Initial document content")
	cmd.Flags().StringVar(&flags.scope, "scope", "", "Snippet scope (default: derived from --file)")

	return cmd
}

// tryUI draws the document and feeds terminal keys to the snippet manager.
type tryUI struct {
	screen tcell.Screen
	app    *app.Application
	quit   bool
}

func newTryUI(screen tcell.Screen, application *app.Application) *tryUI {
	return &tryUI{screen: screen, app: application}
}

func (u *tryUI) run() {
	for !u.quit {
		u.draw()
		ev := u.screen.PollEvent()
		if ev == nil {
			return
		}
		u.handle(ev)
	}
}

func (u *tryUI) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		u.screen.Sync()
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			u.quit = true
			return
		}
		k := key.FromTcell(ev)
		if u.app.Manager().HandleKey(k) {
			return
		}
		u.edit(k)
	}
}

// edit applies keys no binding consumed.
func (u *tryUI) edit(k key.Event) {
	eng := u.app.Engine()
	var err error
	switch {
	case k.Key == key.KeyEscape:
		u.quit = true
	case k.Key == key.KeyEnter:
		err = eng.Type("\n")
	case k.Key == key.KeyTab:
		err = eng.Type(eng.TabString())
	case k.Key == key.KeyBackspace:
		err = backspace(eng)
	case k.Key == key.KeyLeft:
		moveCursor(eng, -1)
	case k.Key == key.KeyRight:
		moveCursor(eng, 1)
	case k.Key == key.KeyRune && k.Modifiers&^key.ModShift == 0:
		err = eng.Type(string(k.Rune))
	}
	if err != nil {
		logger := u.app.Logger()
		logger.Warn().Err(err).Msg("edit failed")
	}
}

// backspace deletes the selections, or the rune before each cursor.
func backspace(eng *engine.Engine) error {
	sels := eng.Selections()
	text := eng.Text()
	for i := len(sels) - 1; i >= 0; i-- {
		start, end := sels[i].Start(), sels[i].End()
		if start == end {
			if start == 0 {
				continue
			}
			_, size := utf8.DecodeLastRuneInString(text[:start])
			start -= engine.ByteOffset(size)
		}
		if err := eng.Delete(start, end); err != nil {
			return err
		}
	}
	return nil
}

// moveCursor moves the primary cursor one rune and drops the others.
func moveCursor(eng *engine.Engine, dir int) {
	text := eng.Text()
	off := eng.PrimarySelection().Head
	switch {
	case dir < 0 && off > 0:
		_, size := utf8.DecodeLastRuneInString(text[:off])
		off -= engine.ByteOffset(size)
	case dir > 0 && int(off) < len(text):
		_, size := utf8.DecodeRuneInString(text[off:])
		off += engine.ByteOffset(size)
	}
	eng.SetCursor(off)
}

func (u *tryUI) draw() {
	eng := u.app.Engine()
	m := u.app.Manager()
	text := eng.Text()

	const (
		plain = iota
		field
		active
	)
	class := make([]int, len(text))
	if m.Active() {
		s := m.Session()
		for _, ts := range s.Tabstops() {
			c := field
			if ts == s.Selected() {
				c = active
			}
			for _, r := range ts.Ranges() {
				for i := r.Start; i < r.End && int(i) < len(class); i++ {
					class[i] = max(class[i], c)
				}
			}
		}
	}
	styles := []tcell.Style{
		tcell.StyleDefault,
		tcell.StyleDefault.Underline(true),
		tcell.StyleDefault.Reverse(true),
	}

	u.screen.Clear()
	_, height := u.screen.Size()
	x, y := 0, 0
	for i, r := range text {
		if r == '\n' {
			x, y = 0, y+1
			continue
		}
		u.screen.SetContent(x, y, r, nil, styles[class[i]])
		x++
	}

	head := eng.PrimarySelection().Head
	p := eng.OffsetToPoint(head)
	line := eng.LineText(p.Line)
	col := utf8.RuneCountInString(line[:min(int(p.Column), len(line))])
	u.screen.ShowCursor(col, int(p.Line))

	u.drawString(0, height-1, u.status(), tcell.StyleDefault.Reverse(true))
	u.screen.Show()
}

// status describes the current mode, tabstop and choice prompt.
func (u *tryUI) status() string {
	m := u.app.Manager()
	parts := []string{strings.ToUpper(u.app.Input().CurrentMode())}
	if m.Active() {
		if ts := m.Session().Selected(); ts != nil {
			parts = append(parts, fmt.Sprintf("$%d", ts.Index()))
		}
	}
	if p := m.Prompt(); p.IsOpen() {
		candidates := p.Candidates()
		selected, _ := p.Selected()
		for i, c := range candidates {
			if c == selected {
				candidates[i] = "[" + c + "]"
			}
		}
		parts = append(parts, strings.Join(candidates, " "))
	}
	return strings.Join(parts, "  ")
}

func (u *tryUI) drawString(x, y int, s string, style tcell.Style) {
	width, _ := u.screen.Size()
	for _, r := range s {
		if x >= width {
			return
		}
		u.screen.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < width; x++ {
		u.screen.SetContent(x, y, ' ', nil, style)
	}
}

package snippet

import (
	"slices"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"

	"github.com/dshills/snipstorm/internal/engine"
	"github.com/dshills/snipstorm/internal/engine/cursor"
	"github.com/dshills/snipstorm/internal/input/mode"
	"github.com/dshills/snipstorm/internal/snippet/tabstop"
)

// Prompt offers the choices of the selected tabstop. Typing into the
// tabstop narrows the list by fuzzy match against the typed text.
type Prompt struct {
	doc    tabstop.Document
	modes  tabstop.ModeStack
	logger zerolog.Logger

	session  *tabstop.Session
	choices  []string
	visible  []string
	selected int
	sub      *engine.Subscription
}

func newPrompt(doc tabstop.Document, modes tabstop.ModeStack, logger zerolog.Logger) *Prompt {
	return &Prompt{doc: doc, modes: modes, logger: logger}
}

// Open shows choices for the selected tabstop of s.
func (p *Prompt) Open(s *tabstop.Session, choices []string) error {
	if len(choices) == 0 {
		return ErrNoChoices
	}
	p.Close()

	p.session = s
	p.choices = choices
	p.visible = choices
	p.selected = 0
	if p.modes != nil {
		if err := p.modes.Push(mode.ModeChoice); err != nil {
			p.logger.Warn().Err(err).Msg("entering choice mode")
		}
	}
	p.sub = p.doc.OnAfterEdit(p.refilter)
	p.logger.Debug().Int("choices", len(choices)).Msg("choice prompt opened")
	return nil
}

// IsOpen reports whether the prompt is showing.
func (p *Prompt) IsOpen() bool {
	return p.sub != nil
}

// Candidates returns the choices currently shown, best match first.
func (p *Prompt) Candidates() []string {
	return slices.Clone(p.visible)
}

// Selected returns the highlighted candidate.
func (p *Prompt) Selected() (string, bool) {
	if !p.IsOpen() || len(p.visible) == 0 {
		return "", false
	}
	return p.visible[p.selected], true
}

// Filter narrows the candidates to those fuzzily matching text. Every
// choice is shown when text is empty or nothing matches.
func (p *Prompt) Filter(text string) {
	p.selected = 0
	p.visible = p.choices
	if text == "" {
		return
	}
	ranks := fuzzy.RankFindFold(text, p.choices)
	if len(ranks) == 0 {
		return
	}
	sort.Stable(ranks)
	p.visible = make([]string, len(ranks))
	for i, r := range ranks {
		p.visible[i] = r.Target
	}
}

// Move highlights the next (dir > 0) or previous candidate, wrapping.
func (p *Prompt) Move(dir int) bool {
	if !p.IsOpen() || len(p.visible) == 0 {
		return false
	}
	n := len(p.visible)
	if dir < 0 {
		p.selected = (p.selected + n - 1) % n
	} else {
		p.selected = (p.selected + 1) % n
	}
	return true
}

// Accept replaces the tabstop's primary range with the highlighted
// candidate and closes the prompt.
func (p *Prompt) Accept() bool {
	choice, ok := p.Selected()
	if !ok {
		return false
	}
	s := p.session
	p.Close()
	if s == nil || !s.Active() {
		return true
	}
	ts := s.Selected()
	primary, ok := ts.Primary()
	if !ok {
		return true
	}
	if _, err := p.doc.Replace(primary.Start, primary.End, choice); err != nil {
		p.logger.Error().Err(err).Msg("accepting choice")
		return true
	}

	var sels []engine.Selection
	for _, r := range ts.Ranges() {
		sels = append(sels, cursor.NewCursorSelection(r.End))
	}
	if len(sels) > 0 {
		p.doc.SetSelections(sels...)
	}
	return true
}

// Close hides the prompt. It reports whether the prompt was open.
func (p *Prompt) Close() bool {
	if p.sub == nil {
		return false
	}
	p.sub.Unsubscribe()
	p.sub = nil
	p.session = nil
	p.choices = nil
	p.visible = nil
	if p.modes != nil {
		if err := p.modes.Pop(); err != nil {
			p.logger.Warn().Err(err).Msg("leaving choice mode")
		}
	}
	return true
}

func (p *Prompt) refilter() {
	if p.session == nil || !p.session.Active() {
		p.Close()
		return
	}
	ts := p.session.Selected()
	if ts == nil {
		p.Close()
		return
	}
	r, ok := ts.Primary()
	if !ok {
		return
	}
	p.Filter(p.doc.TextRange(r.Start, r.End))
}

package registry

import (
	"github.com/dlclark/regexp2"

	"github.com/dshills/snipstorm/internal/snippet/variable"
)

// Match is a snippet whose patterns matched around the cursor.
type Match struct {
	Snippet *Snippet

	// Before holds the groups of the opening match, group 0 first.
	Before []string

	// After holds the groups of the closing match.
	After []string

	// ReplaceBefore and ReplaceAfter are the byte lengths of trigger text
	// to remove before and after the cursor.
	ReplaceBefore int
	ReplaceAfter  int
}

// Scope returns a variable scope with the match groups in stores M and T.
func (m *Match) Scope() *variable.Scope {
	s := variable.NewScope()
	s.SetStore('M', m.Before)
	s.SetStore('T', m.After)
	return s
}

// FindMatching returns the newest matchable snippet in the first of
// scopes that has one, given the text before and after the cursor on the
// cursor's line.
func (r *Registry) FindMatching(scopes []string, before, after string) (*Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sc := range scopes {
		e, ok := r.scopes[sc]
		if !ok {
			continue
		}
		for i := len(e.snippets) - 1; i >= 0; i-- {
			if m, ok := match(e.snippets[i], before, after); ok {
				return m, true
			}
		}
	}
	return nil, false
}

func match(s *Snippet, before, after string) (*Match, bool) {
	if !s.Matchable() {
		return nil, false
	}

	m := &Match{Snippet: s, Before: []string{""}, After: []string{""}}
	if s.startRe != nil {
		groups, ok := find(s.startRe, before)
		if !ok {
			return nil, false
		}
		m.Before = groups
	}
	if s.endRe != nil {
		groups, ok := find(s.endRe, after)
		if !ok {
			return nil, false
		}
		m.After = groups
	}
	if s.triggerRe != nil {
		if groups, ok := find(s.triggerRe, before); ok {
			m.ReplaceBefore = len(groups[0])
		}
	}
	if s.endTriggerRe != nil {
		if groups, ok := find(s.endTriggerRe, after); ok {
			m.ReplaceAfter = len(groups[0])
		}
	}
	return m, true
}

// find returns the groups of re's first match in text. A match that
// times out counts as no match.
func find(re *regexp2.Regexp, text string) ([]string, bool) {
	m, err := re.FindStringMatch(text)
	if err != nil || m == nil {
		return nil, false
	}
	groups := m.Groups()
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.String()
	}
	return out, true
}

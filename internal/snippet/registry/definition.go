package registry

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/dshills/snipstorm/internal/snippet/variable"
)

// GlobalScope holds snippets that apply in every scope.
const GlobalScope = "_"

// Definition is a snippet as written in a snippet file.
type Definition struct {
	Name string `yaml:"name,omitempty"`

	// TabTrigger is the literal word that expands the snippet on Tab.
	TabTrigger string `yaml:"tabTrigger,omitempty"`

	// Trigger, Guard, EndTrigger and EndGuard are regexes matched against
	// the text before (Trigger, Guard) and after (EndTrigger, EndGuard)
	// the cursor. Trigger and EndTrigger text is removed on expansion.
	Trigger    string `yaml:"trigger,omitempty"`
	Guard      string `yaml:"guard,omitempty"`
	EndTrigger string `yaml:"endTrigger,omitempty"`
	EndGuard   string `yaml:"endGuard,omitempty"`

	Content string `yaml:"content"`
	Scope   string `yaml:"scope,omitempty"`

	// Meta holds stanza keys with no meaning to the engine.
	Meta map[string]string `yaml:"meta,omitempty"`

	// Source is the file the definition was loaded from.
	Source string `yaml:"source,omitempty"`
}

// Snippet is a registered definition with its compiled patterns.
type Snippet struct {
	Definition

	startRe      *regexp2.Regexp
	endRe        *regexp2.Regexp
	triggerRe    *regexp2.Regexp
	endTriggerRe *regexp2.Regexp
}

// Matchable reports whether the snippet can be expanded by trigger.
func (s *Snippet) Matchable() bool {
	return s.startRe != nil || s.endRe != nil
}

// compile builds a snippet from d. A word-character tab trigger gets a
// word-boundary guard.
func compile(d Definition) (*Snippet, error) {
	s := &Snippet{Definition: d}

	trigger, guard := d.Trigger, d.Guard
	if d.TabTrigger != "" && trigger == "" {
		if guard == "" && startsWithWord(d.TabTrigger) {
			guard = `\b`
		}
		trigger = escapeRegExp(d.TabTrigger)
	}
	s.Trigger, s.Guard = trigger, guard

	var err error
	if trigger != "" || guard != "" {
		if s.startRe, err = opening(trigger, guard); err != nil {
			return nil, err
		}
	}
	if trigger != "" {
		if s.triggerRe, err = variable.Compile(wrap(trigger)+"$", ""); err != nil {
			return nil, err
		}
	}
	if d.EndTrigger != "" || d.EndGuard != "" {
		if s.endRe, err = closing(d.EndTrigger, d.EndGuard); err != nil {
			return nil, err
		}
	}
	if d.EndTrigger != "" {
		if s.endTriggerRe, err = variable.Compile("^"+wrap(d.EndTrigger), ""); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// grouped matches patterns that need no wrapping: a single group,
// optionally anchored, or a bare word boundary.
var grouped = regexp2.MustCompile(`^\^?\(.*\)\$?$|^\\b$`, regexp2.ECMAScript)

func wrap(src string) string {
	if src == "" {
		return ""
	}
	if ok, _ := grouped.MatchString(src); ok {
		return src
	}
	return "(?:" + src + ")"
}

// opening matches guard then trigger at the end of the text before the
// cursor.
func opening(trigger, guard string) (*regexp2.Regexp, error) {
	re := wrap(guard) + wrap(trigger)
	if !strings.HasSuffix(re, "$") {
		re += "$"
	}
	return variable.Compile(re, "")
}

// closing matches end trigger then end guard at the start of the text
// after the cursor.
func closing(trigger, guard string) (*regexp2.Regexp, error) {
	re := wrap(trigger) + wrap(guard)
	if !strings.HasPrefix(re, "^") {
		re = "^" + re
	}
	return variable.Compile(re, "")
}

func startsWithWord(s string) bool {
	c := s[0]
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

const regexSpecial = `.*+?^${}()|[]/\`

func escapeRegExp(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(regexSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

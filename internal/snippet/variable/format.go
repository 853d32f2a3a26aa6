package variable

import (
	"strings"
	"time"

	"github.com/apparentlymart/go-textseg/v15/textseg"
	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/snipstorm/internal/snippet/token"
)

// MatchTimeout bounds a single regex evaluation.
const MatchTimeout = time.Second

// Compile compiles pattern with ECMAScript semantics. Of flags, i and m
// select case-insensitive and multi-line matching; other characters are
// ignored.
func Compile(pattern, flags string) (*regexp2.Regexp, error) {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	if strings.ContainsRune(flags, 'i') {
		opts |= regexp2.IgnoreCase
	}
	if strings.ContainsRune(flags, 'm') {
		opts |= regexp2.Multiline
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = MatchTimeout
	return re, nil
}

// Format applies f to value. A guard that does not compile leaves value
// unchanged.
func (r *Resolver) Format(ctx Context, scope *Scope, value string, f *token.Format) string {
	if f == nil {
		return value
	}
	re, err := r.compile(f.Guard, f.Flags)
	if err != nil {
		r.logger.Debug().Err(err).Str("guard", f.Guard).Msg("format guard does not compile")
		return value
	}

	count := 1
	if f.HasFlag('g') {
		count = -1
	}
	out, err := re.ReplaceFunc(value, func(m regexp2.Match) string {
		groups := m.Groups()
		captured := make([]string, len(groups))
		for i, g := range groups {
			captured[i] = g.String()
		}
		return r.Replace(ctx, scope.withGroups(captured), f.Replacement)
	}, -1, count)
	if err != nil {
		r.logger.Debug().Err(err).Str("guard", f.Guard).Msg("format replacement failed")
		return value
	}
	return out
}

// Replace renders replacement tokens against scope, applying case
// directives.
func (r *Resolver) Replace(ctx Context, scope *Scope, replacement []token.Token) string {
	var parts []part
	r.collect(ctx, scope, replacement, &parts)

	var b strings.Builder
	global := token.ResetCase
	for i := 0; i < len(parts); i++ {
		p := parts[i]
		if !p.directive {
			switch global {
			case token.UpperUntil:
				b.WriteString(upper(p.text))
			case token.LowerUntil:
				b.WriteString(lower(p.text))
			default:
				b.WriteString(p.text)
			}
			continue
		}
		if !p.kind.Local() {
			global = p.kind
			continue
		}
		// Empty parts emit nothing, so the directive waits for the next
		// character actually written. Another directive cancels it.
		j := i + 1
		for j < len(parts) && !parts[j].directive && parts[j].text == "" {
			j++
		}
		if j < len(parts) && !parts[j].directive {
			first, rest := splitGrapheme(parts[j].text)
			if p.kind == token.UpperNext {
				b.WriteString(upper(first))
			} else {
				b.WriteString(lower(first))
			}
			parts[j].text = rest
		}
	}
	return b.String()
}

type part struct {
	text      string
	directive bool
	kind      token.CaseKind
}

func (r *Resolver) collect(ctx Context, scope *Scope, tokens []token.Token, parts *[]part) {
	for _, t := range tokens {
		switch t := t.(type) {
		case token.Literal:
			*parts = append(*parts, part{text: t.Text})
		case token.CaseChange:
			*parts = append(*parts, part{directive: true, kind: t.Kind})
		case *token.Variable:
			text, body, useBody := r.Evaluate(ctx, scope, t, "")
			if useBody {
				r.collect(ctx, scope, body, parts)
				continue
			}
			*parts = append(*parts, part{text: text})
		case *token.Tabstop:
			r.collect(ctx, scope, t.Placeholder, parts)
		}
	}
}

func (r *Resolver) compile(guard, flags string) (*regexp2.Regexp, error) {
	key := flags + "/" + guard

	r.regexMu.Lock()
	defer r.regexMu.Unlock()

	if re, ok := r.regexes[key]; ok {
		return re, nil
	}
	re, err := Compile(guard, flags)
	if err != nil {
		return nil, err
	}
	r.regexes[key] = re
	return re, nil
}

// splitGrapheme splits s after its first grapheme cluster.
func splitGrapheme(s string) (string, string) {
	n, _, err := textseg.ScanGraphemeClusters([]byte(s), true)
	if err != nil || n <= 0 || n > len(s) {
		return s, ""
	}
	return s[:n], s[n:]
}

func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

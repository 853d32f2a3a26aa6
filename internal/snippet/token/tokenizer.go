package token

import (
	"strconv"
	"strings"
)

// mode selects the escape and reference rules in effect.
type mode uint8

const (
	modeTemplate mode = iota
	modeFormat
)

// stop is the terminator a sequence is waiting for.
type stop uint8

const (
	stopEOF    stop = iota
	stopBrace       // }
	stopFormat      // } or /flags}
	stopIfElse      // : or }
)

// Tokenize splits a snippet template into tokens. It never fails:
// malformed or unterminated markers are kept as literal text.
func Tokenize(template string) []Token {
	p := &parser{src: template}
	tokens, _ := p.sequence(modeTemplate, stopEOF)
	return tokens
}

// TokenizeFormat tokenizes a replacement string with the rules used
// between the second and third slash of ${1/guard/replacement/flags}.
func TokenizeFormat(replacement string) []Token {
	p := &parser{src: replacement}
	tokens, _ := p.sequence(modeFormat, stopEOF)
	return tokens
}

type parser struct {
	src string
	pos int
}

// sequence collects tokens until s is seen or input ends. The terminator
// is left unconsumed. It reports false when input ended first and a
// terminator was required.
func (p *parser) sequence(m mode, s stop) ([]Token, bool) {
	var b builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '}' && s != stopEOF:
			return b.tokens(), true
		case c == ':' && s == stopIfElse:
			return b.tokens(), true
		case c == '/' && s == stopFormat:
			if _, ok := p.flagsAhead(); ok {
				return b.tokens(), true
			}
			b.text("/")
			p.pos++
		case c == '\\':
			p.escape(&b, m, s != stopEOF)
		case c == '$':
			p.dollar(&b, m)
		default:
			b.text(p.src[p.pos : p.pos+1])
			p.pos++
		}
	}
	return b.tokens(), s == stopEOF
}

func (p *parser) escape(b *builder, m mode, inBrace bool) {
	if p.pos+1 >= len(p.src) {
		b.text(`\`)
		p.pos++
		return
	}
	c := p.src[p.pos+1]
	p.pos += 2
	switch {
	case c == '$' || c == '`' || c == '\\':
		b.text(string(c))
	case c == '}' && inBrace:
		b.text("}")
	case m == modeFormat && c == 'n':
		b.text("\n")
	case m == modeFormat && c == 't':
		b.text("\t")
	case m == modeFormat && c == '/':
		b.text("/")
	case m == modeFormat && strings.IndexByte("ulULE", c) >= 0:
		b.add(CaseChange{Kind: caseKinds[c]})
	default:
		b.text(p.src[p.pos-2 : p.pos])
	}
}

var caseKinds = map[byte]CaseKind{
	'u': UpperNext,
	'l': LowerNext,
	'U': UpperUntil,
	'L': LowerUntil,
	'E': ResetCase,
}

func (p *parser) dollar(b *builder, m mode) {
	i := p.pos + 1
	if i < len(p.src) && p.src[i] == '{' {
		p.marker(b, m)
		return
	}
	j := p.word(i)
	if j == i {
		b.text("$")
		p.pos++
		return
	}
	p.pos = j
	b.add(reference(p.src[i:j], m))
}

// marker parses a braced marker starting at "${".
func (p *parser) marker(b *builder, m mode) {
	start := p.pos
	i := p.pos + 2
	j := p.word(i)
	if j == i {
		b.text("${")
		p.pos = i
		return
	}
	p.pos = j
	ref := reference(p.src[i:j], m)

	switch p.peek() {
	case '}':
		p.pos++
		b.add(ref)
	case ':':
		if m == modeFormat {
			p.conditional(b, ref.(*Variable), start)
			return
		}
		if v, ok := ref.(*Variable); ok {
			if fn, ok := p.function(); ok {
				v.Func = fn
				b.add(v)
				return
			}
		}
		p.pos++
		opener := p.pos
		children, ok := p.sequence(modeTemplate, stopBrace)
		if !ok {
			b.text(p.src[start:opener])
			b.addAll(children)
			return
		}
		p.pos++
		switch t := ref.(type) {
		case *Tabstop:
			t.Placeholder = children
		case *Variable:
			t.Default = children
		}
		b.add(ref)
	case '|':
		ts, isTabstop := ref.(*Tabstop)
		if !isTabstop {
			b.text(p.src[start:p.pos])
			return
		}
		choices, ok := p.choices()
		if !ok {
			b.text(p.src[start:p.pos])
			return
		}
		ts.Choices = choices
		ts.Placeholder = []Token{Literal{Text: choices[0]}}
		b.add(ts)
	case '/':
		f, ok := p.format()
		if !ok {
			b.text(p.src[start:p.pos])
			return
		}
		switch t := ref.(type) {
		case *Tabstop:
			t.Format = f
		case *Variable:
			t.Format = f
		}
		b.add(ref)
	default:
		b.text(p.src[start:p.pos])
	}
}

// conditional parses the ":" forms of a reference inside a replacement.
func (p *parser) conditional(b *builder, v *Variable, start int) {
	if fn, ok := p.function(); ok {
		v.Func = fn
		b.add(v)
		return
	}

	p.pos++
	var (
		body []Token
		ok   bool
	)
	switch p.peek() {
	case '+':
		p.pos++
		v.Cond = CondIf
		body, ok = p.sequence(modeFormat, stopBrace)
		v.If = body
	case '?':
		p.pos++
		v.Cond = CondIfElse
		body, ok = p.sequence(modeFormat, stopIfElse)
		v.If = body
		if ok && p.peek() == ':' {
			p.pos++
			v.Else, ok = p.sequence(modeFormat, stopBrace)
		}
	case '-':
		p.pos++
		fallthrough
	default:
		v.Default, ok = p.sequence(modeFormat, stopBrace)
	}
	if !ok {
		b.text(p.src[start:p.pos])
		return
	}
	p.pos++
	b.add(v)
}

// format parses "/guard/replacement/flags}" starting at the first slash.
// When the guard is malformed the position is left unchanged.
func (p *parser) format() (*Format, bool) {
	i := p.pos + 1
	j := i
	for j < len(p.src) && p.src[j] != '/' {
		if p.src[j] == '\\' {
			j++
		}
		j++
	}
	if j >= len(p.src) || j == i {
		return nil, false
	}
	guard := p.src[i:j]
	p.pos = j + 1

	replacement, ok := p.sequence(modeFormat, stopFormat)
	if !ok {
		return nil, false
	}
	f := &Format{Guard: guard, Replacement: replacement}
	if p.src[p.pos] == '/' {
		f.Flags, _ = p.flagsAhead()
		p.pos += len(f.Flags) + 2
	} else {
		p.pos++
	}
	return f, true
}

// flagsAhead matches "/flags}" at the current position.
func (p *parser) flagsAhead() (string, bool) {
	i := p.word(p.pos + 1)
	if i < len(p.src) && p.src[i] == '}' {
		return p.src[p.pos+1 : i], true
	}
	return "", false
}

// function matches ":/name}" at the current position.
func (p *parser) function() (string, bool) {
	if !strings.HasPrefix(p.src[p.pos:], ":/") {
		return "", false
	}
	i := p.pos + 2
	j := p.word(i)
	if j == i || j >= len(p.src) || p.src[j] != '}' {
		return "", false
	}
	p.pos = j + 1
	return p.src[i:j], true
}

// choices parses "|a,b|}" starting at the first bar.
func (p *parser) choices() ([]string, bool) {
	var (
		list []string
		cur  strings.Builder
	)
	for i := p.pos + 1; i < len(p.src); i++ {
		c := p.src[i]
		switch {
		case c == '\\' && i+1 < len(p.src):
			n := p.src[i+1]
			if n == ',' || n == '|' || n == '\\' {
				cur.WriteByte(n)
			} else {
				cur.WriteString(p.src[i : i+2])
			}
			i++
		case c == ',':
			list = append(list, cur.String())
			cur.Reset()
		case c == '|':
			if i+1 >= len(p.src) || p.src[i+1] != '}' {
				return nil, false
			}
			p.pos = i + 2
			return append(list, cur.String()), true
		default:
			cur.WriteByte(c)
		}
	}
	return nil, false
}

func (p *parser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *parser) word(i int) int {
	for i < len(p.src) && isWord(p.src[i]) {
		i++
	}
	return i
}

func isWord(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// reference builds the token for a bare name. Numeric names are tabstops
// in a template and capture groups inside a replacement.
func reference(name string, m mode) Token {
	if m == modeTemplate {
		if id, ok := tabstopID(name); ok {
			return &Tabstop{ID: id}
		}
	}
	return &Variable{Name: name}
}

func tabstopID(name string) (int, bool) {
	for i := 0; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(name)
	return id, err == nil
}

// builder accumulates tokens, merging adjacent literal text.
type builder struct {
	toks []Token
	lit  strings.Builder
}

func (b *builder) text(s string) {
	b.lit.WriteString(s)
}

func (b *builder) add(t Token) {
	b.flush()
	b.toks = append(b.toks, t)
}

func (b *builder) addAll(tokens []Token) {
	for _, t := range tokens {
		if l, ok := t.(Literal); ok {
			b.text(l.Text)
			continue
		}
		b.add(t)
	}
}

func (b *builder) flush() {
	if b.lit.Len() > 0 {
		b.toks = append(b.toks, Literal{Text: b.lit.String()})
		b.lit.Reset()
	}
}

func (b *builder) tokens() []Token {
	b.flush()
	return b.toks
}

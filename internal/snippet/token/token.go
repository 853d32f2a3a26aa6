package token

import "strings"

// Token is one element of a tokenized template: a Literal, Tabstop,
// Variable or CaseChange.
type Token interface {
	isToken()
}

// Literal is verbatim template text.
type Literal struct {
	Text string
}

// Tabstop is a numbered field: $1, ${1}, ${1:placeholder}, ${1|a,b|} or
// ${1/guard/replacement/flags}.
type Tabstop struct {
	ID          int
	Placeholder []Token
	Choices     []string
	Format      *Format
}

// Variable references a named value: $NAME, ${NAME}, ${NAME:default},
// ${NAME/guard/replacement/flags} or ${NAME:/upcase}. Inside a replacement
// it also references capture groups and carries the conditional forms
// ${1:+if}, ${1:?if:else} and ${1:-else}.
type Variable struct {
	Name    string
	Default []Token
	If      []Token
	Else    []Token
	Cond    Cond
	Format  *Format
	Func    string
}

// CaseChange is a case directive inside a replacement.
type CaseChange struct {
	Kind CaseKind
}

func (Literal) isToken() {}
func (*Tabstop) isToken() {}
func (*Variable) isToken() {}
func (CaseChange) isToken() {}

// Cond selects how a Variable's value chooses between its bodies.
type Cond uint8

const (
	// CondNone emits the value, or Default when the value is empty.
	CondNone Cond = iota

	// CondIf emits If when the value is non-empty (${1:+if}).
	CondIf

	// CondIfElse emits If when the value is non-empty, Else otherwise (${1:?if:else}).
	CondIfElse
)

// CaseKind is a case-folding directive.
type CaseKind uint8

const (
	UpperNext  CaseKind = iota // \u
	LowerNext                  // \l
	UpperUntil                 // \U
	LowerUntil                 // \L
	ResetCase                  // \E
)

// Local reports whether the directive affects only the next character.
func (k CaseKind) Local() bool {
	return k == UpperNext || k == LowerNext
}

// String returns the escape that produced k.
func (k CaseKind) String() string {
	switch k {
	case UpperNext:
		return `\u`
	case LowerNext:
		return `\l`
	case UpperUntil:
		return `\U`
	case LowerUntil:
		return `\L`
	default:
		return `\E`
	}
}

// Format is a regex transform: the first match of Guard (every match with
// the g flag) is replaced by Replacement, resolved once per match.
type Format struct {
	Guard       string
	Flags       string
	Replacement []Token
}

// HasFlag reports whether flag appears in the format's flags.
func (f *Format) HasFlag(flag byte) bool {
	return f != nil && strings.IndexByte(f.Flags, flag) >= 0
}

// Literals concatenates the literal text of tokens in order, descending
// into placeholders and default values.
func Literals(tokens []Token) string {
	var b strings.Builder
	writeLiterals(&b, tokens)
	return b.String()
}

func writeLiterals(b *strings.Builder, tokens []Token) {
	for _, t := range tokens {
		switch t := t.(type) {
		case Literal:
			b.WriteString(t.Text)
		case *Tabstop:
			writeLiterals(b, t.Placeholder)
		case *Variable:
			writeLiterals(b, t.Default)
		}
	}
}

// TabstopIDs returns every tabstop id in tokens in order of appearance,
// including nested ones. Ids may repeat.
func TabstopIDs(tokens []Token) []int {
	var ids []int
	Walk(tokens, func(t Token) {
		if ts, ok := t.(*Tabstop); ok {
			ids = append(ids, ts.ID)
		}
	})
	return ids
}

// Walk calls fn for every token in pre-order, descending into tabstop
// placeholders and variable bodies. Replacement bodies are not visited.
func Walk(tokens []Token, fn func(Token)) {
	for _, t := range tokens {
		fn(t)
		switch t := t.(type) {
		case *Tabstop:
			Walk(t.Placeholder, fn)
		case *Variable:
			Walk(t.Default, fn)
			Walk(t.If, fn)
			Walk(t.Else, fn)
		}
	}
}

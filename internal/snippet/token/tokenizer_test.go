package token

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lit(s string) Literal { return Literal{Text: s} }

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []Token
	}{
		{
			name:     "plain text",
			template: "hello world",
			want:     []Token{lit("hello world")},
		},
		{
			name:     "bare tabstops and variables",
			template: "$1 $TM_SELECTED_TEXT $0",
			want: []Token{
				&Tabstop{ID: 1}, lit(" "),
				&Variable{Name: "TM_SELECTED_TEXT"}, lit(" "),
				&Tabstop{ID: 0},
			},
		},
		{
			name:     "placeholder",
			template: "foo(${1:bar})",
			want: []Token{
				lit("foo("),
				&Tabstop{ID: 1, Placeholder: []Token{lit("bar")}},
				lit(")"),
			},
		},
		{
			name:     "nested placeholder",
			template: "${1:a ${2:b} c}",
			want: []Token{
				&Tabstop{ID: 1, Placeholder: []Token{
					lit("a "),
					&Tabstop{ID: 2, Placeholder: []Token{lit("b")}},
					lit(" c"),
				}},
			},
		},
		{
			name:     "variable default",
			template: "${SELECTION:${1:none}}",
			want: []Token{
				&Variable{Name: "SELECTION", Default: []Token{
					&Tabstop{ID: 1, Placeholder: []Token{lit("none")}},
				}},
			},
		},
		{
			name:     "choices",
			template: `${1|one,t\,wo,th\|ree|}`,
			want: []Token{
				&Tabstop{
					ID:          1,
					Placeholder: []Token{lit("one")},
					Choices:     []string{"one", "t,wo", "th|ree"},
				},
			},
		},
		{
			name:     "function suffix",
			template: "${TM_FILENAME:/upcase}",
			want:     []Token{&Variable{Name: "TM_FILENAME", Func: "upcase"}},
		},
		{
			name:     "escapes",
			template: `\$1 \\ \{ \} ${1:\}}`,
			want: []Token{
				lit(`$1 \ \{ \} `),
				&Tabstop{ID: 1, Placeholder: []Token{lit("}")}},
			},
		},
		{
			name:     "dollar without name",
			template: "cost: $ 5 ${ x",
			want:     []Token{lit("cost: $ 5 ${ x")},
		},
		{
			name:     "closing brace at top level",
			template: "a}b",
			want:     []Token{lit("a}b")},
		},
		{
			name:     "unterminated placeholder",
			template: "x${1:foo $2",
			want: []Token{
				lit("x${1:foo "),
				&Tabstop{ID: 2},
			},
		},
		{
			name:     "unknown character after name",
			template: "${1 x}",
			want:     []Token{lit("${1 x}")},
		},
		{
			name:     "unterminated choices",
			template: "${1|a,b",
			want:     []Token{lit("${1|a,b")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.template)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.template, diff)
			}
		})
	}
}

func TestTokenizeFormat(t *testing.T) {
	got := Tokenize(`${1/(\w+) (\w+)/\u$1 ${2:/upcase}: ${2:+yes}${2:?a:b}${3:-none}\n/gi}`)

	want := []Token{
		&Tabstop{ID: 1, Format: &Format{
			Guard: `(\w+) (\w+)`,
			Flags: "gi",
			Replacement: []Token{
				CaseChange{Kind: UpperNext},
				&Variable{Name: "1"},
				lit(" "),
				&Variable{Name: "2", Func: "upcase"},
				lit(": "),
				&Variable{Name: "2", Cond: CondIf, If: []Token{lit("yes")}},
				&Variable{Name: "2", Cond: CondIfElse, If: []Token{lit("a")}, Else: []Token{lit("b")}},
				&Variable{Name: "3", Default: []Token{lit("none")}},
				lit("\n"),
			},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeFormatWithoutFlags(t *testing.T) {
	got := Tokenize("${TM_FILENAME/[.].*$/a\\/b/}${1/x/y}")

	require.Len(t, got, 2)
	v, ok := got[0].(*Variable)
	require.True(t, ok)
	assert.Equal(t, "TM_FILENAME", v.Name)
	assert.Equal(t, `[.].*$`, v.Format.Guard)
	assert.Equal(t, []Token{lit("a/b")}, v.Format.Replacement)
	assert.Empty(t, v.Format.Flags)

	ts, ok := got[1].(*Tabstop)
	require.True(t, ok)
	assert.Equal(t, "x", ts.Format.Guard)
	assert.Equal(t, []Token{lit("y")}, ts.Format.Replacement)
}

func TestTokenizeMalformedFormat(t *testing.T) {
	assert.Equal(t, []Token{lit("${1//x/}")}, Tokenize("${1//x/}"))
	assert.Equal(t, []Token{lit("a ${1/x/y")}, Tokenize("a ${1/x/y"))
}

func TestTokenizeFormatStandalone(t *testing.T) {
	got := TokenizeFormat(`\U$0\E-${1:?x}: \q`)

	want := []Token{
		CaseChange{Kind: UpperUntil},
		&Variable{Name: "0"},
		CaseChange{Kind: ResetCase},
		lit("-"),
		&Variable{Name: "1", Cond: CondIfElse, If: []Token{lit("x")}},
		lit(`: \q`),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLiterals(t *testing.T) {
	assert.Equal(t, "plain text only", Literals(Tokenize("plain text only")))
	assert.Equal(t, "foo(bar, baz)", Literals(Tokenize("foo(${1:bar}, ${2:baz})")))
	assert.Equal(t, "", Literals(nil))
}

func randomText(rng *rand.Rand, alphabet []string, n int) string {
	var b strings.Builder
	for range n {
		b.WriteString(alphabet[rng.Intn(len(alphabet))])
	}
	return b.String()
}

func TestLiteralsRoundTrip(t *testing.T) {
	plain := strings.Split("a b Z 0 9 { } : / | , ( ) - _ \n \t é 世", " ")
	plain = append(plain, " ")
	rng := rand.New(rand.NewSource(7))

	for range 500 {
		s := randomText(rng, plain, rng.Intn(24))
		toks := Tokenize(s)
		require.Equal(t, s, Literals(toks), "template %q", s)
		assert.Empty(t, TabstopIDs(toks), "template %q", s)
	}
}

func TestLiteralsRoundTripEscaped(t *testing.T) {
	alphabet := strings.Split("a { } : $ \\ ` 1 x", " ")
	escaper := strings.NewReplacer(`\`, `\\`, `$`, `\$`, "`", "\\`")
	rng := rand.New(rand.NewSource(11))

	for range 500 {
		s := randomText(rng, alphabet, rng.Intn(16))
		template := escaper.Replace(s)
		require.Equal(t, s, Literals(Tokenize(template)), "template %q", template)
	}
}

func TestTabstopIDs(t *testing.T) {
	ids := TabstopIDs(Tokenize("${2:a ${1:b}} $2 ${X:${3}} $0"))
	assert.Equal(t, []int{2, 1, 2, 3, 0}, ids)
}

func TestFormatHasFlag(t *testing.T) {
	f := &Format{Flags: "gi"}
	assert.True(t, f.HasFlag('g'))
	assert.False(t, f.HasFlag('m'))

	var none *Format
	assert.False(t, none.HasFlag('g'))
	assert.True(t, UpperNext.Local())
	assert.False(t, ResetCase.Local())
	assert.Equal(t, `\L`, LowerUntil.String())
}

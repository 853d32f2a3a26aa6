package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseFile(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Definition
	}{
		{
			name: "stanza with name",
			text: "snippet for forloop\n\tfor (${1:i}=0; $1<${2:10}; $1++) {\n\t\t$0\n\t}\n",
			want: []Definition{{
				Name:       "forloop",
				TabTrigger: "for",
				Content:    "for (${1:i}=0; $1<${2:10}; $1++) {\n\t$0\n}",
			}},
		},
		{
			name: "name defaults to trigger",
			text: "snippet if\n\tif $1 {\n\t}\nsnippet el\n\telse",
			want: []Definition{
				{Name: "if", TabTrigger: "if", Content: "if $1 {\n}"},
				{Name: "el", TabTrigger: "el", Content: "else"},
			},
		},
		{
			name: "comments and blank lines inside the body",
			text: "# header\nsnippet fn\n\tfunc $1() {\n\n\t}\n\n\n# trailing\n",
			want: []Definition{
				{Name: "fn", TabTrigger: "fn", Content: "func $1() {\n\n}"},
			},
		},
		{
			name: "metadata and regex",
			text: "regex /\\s/f\\/n/(/\nscope js\ndescription a function\nsnippet fn\n\tfunction",
			want: []Definition{{
				Name:       "fn",
				TabTrigger: "fn",
				Guard:      `\s`,
				Trigger:    `f\/n`,
				EndTrigger: "(",
				EndGuard:   "",
				Scope:      "js",
				Meta:       map[string]string{"description": "a function"},
				Content:    "function",
			}},
		},
		{
			name: "snippet line without body is dropped",
			text: "snippet a\nsnippet b\n\tB",
			want: []Definition{{Name: "b", TabTrigger: "b", Content: "B"}},
		},
		{
			name: "object literal",
			text: "{\n  \"name\": \"log\",\n  \"tabTrigger\": \"log\",\n  \"content\": \"console.log(${1})\"\n}\n",
			want: []Definition{{Name: "log", TabTrigger: "log", Content: "console.log(${1})"}},
		},
		{
			name: "object literal followed by a body",
			text: "{\"name\": \"x\", \"trigger\": \"x+\"}\n\tbody",
			want: []Definition{{Name: "x", Trigger: "x+", Content: "body"}},
		},
		{
			name: "malformed object literal is skipped",
			text: "{\"name\": [}\nsnippet ok\n\tok",
			want: []Definition{{Name: "ok", TabTrigger: "ok", Content: "ok"}},
		},
		{
			name: "carriage returns",
			text: "snippet w\r\n\ta\r\n\tb\r\n",
			want: []Definition{{Name: "w", TabTrigger: "w", Content: "a\nb"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFile(tt.text)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ParseFile() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRegexParts(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"/a/b/c/d/", []string{"a", "b", "c", "d", ""}},
		{"/a/b/", []string{"a", "b", ""}},
		{`/a\/b/c`, []string{`a\/b`, "c"}},
		{"none", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, regexParts(tt.in)); diff != "" {
			t.Errorf("regexParts(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/snipstorm/internal/app"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--ignore-env"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func snippetDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "snippets")
	writeFile(t, filepath.Join(dir, "go.snippets"),
		"snippet fn\n\tfunc ${1:name}() {}\nsnippet pick\n\t${1|one,two|}\n")
	writeFile(t, filepath.Join(dir, "_.snippets"), "snippet todo\n\tTODO($0)\n")
	return dir
}

func TestRootCommandVersion(t *testing.T) {
	version = "1.2.3"
	t.Cleanup(func() { version = "dev" })

	out, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "snipstorm")
}

func TestRootCommandHelp(t *testing.T) {
	out, err := execute(t, "", "--help")
	require.NoError(t, err)

	for _, want := range []string{"expand", "list", "parse", "watch", "--snippets", "--config"} {
		assert.Contains(t, out, want)
	}
}

func TestBuildVersion(t *testing.T) {
	assert.Equal(t, "dev", buildVersion())

	commit, date = "0123456789abcdef", "2026-01-01"
	t.Cleanup(func() { commit, date = "none", "unknown" })
	assert.Equal(t, "dev (0123456, 2026-01-01)", buildVersion())
}

func TestExpandTemplate(t *testing.T) {
	out, err := execute(t, "", "expand", "foo(${1:bar}, $1)")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "foo(bar, bar)", lines[0])
	assert.Equal(t, "tabstops", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "* $1"))
	assert.Contains(t, lines[2], "4-7,9-12")
	assert.Contains(t, lines[2], `"bar"`)
	assert.True(t, strings.HasPrefix(lines[3], "  $0"))
}

func TestExpandLiteralPrintsCursor(t *testing.T) {
	out, err := execute(t, "", "expand", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\ncursor 1:6\n", out)
}

func TestExpandFromStdin(t *testing.T) {
	out, err := execute(t, "<$1>\n", "expand", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<>\n"))
}

func TestExpandIntoFileAtCursor(t *testing.T) {
	file := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, file, "ab\ncd")

	out, err := execute(t, "", "expand", "--file", file, "--line", "2", "--col", "2", "[$0]")
	require.NoError(t, err)
	assert.Equal(t, "ab\nc[]d\ncursor 2:3\n", out)
}

func TestExpandTabTrigger(t *testing.T) {
	dir := snippetDir(t)
	file := filepath.Join(t.TempDir(), "main.go")
	writeFile(t, file, "fn")

	out, err := execute(t, "", "--snippets", dir, "expand", "--file", file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "func name() {}\n"))
	assert.Contains(t, out, `"name"`)
}

func TestExpandByNameShowsChoices(t *testing.T) {
	dir := snippetDir(t)

	out, err := execute(t, "", "--snippets", dir, "expand", "--scope", "go", "--name", "pick")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "one\n"))
	assert.Contains(t, out, "one|two")
}

func TestExpandErrors(t *testing.T) {
	dir := snippetDir(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{
			name: "no trigger",
			args: []string{"--snippets", dir, "expand", "--scope", "go"},
			want: errNoTrigger,
		},
		{
			name: "unknown name",
			args: []string{"--snippets", dir, "expand", "--name", "missing"},
		},
		{
			name: "name and template",
			args: []string{"expand", "--name", "fn", "$1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestParsePrintsYAML(t *testing.T) {
	dir := snippetDir(t)

	out, err := execute(t, "", "parse", filepath.Join(dir, "go.snippets"))
	require.NoError(t, err)
	assert.Contains(t, out, "name: fn")
	assert.Contains(t, out, "tabTrigger: fn")
	assert.Contains(t, out, "scope: go")
	assert.Contains(t, out, "name: pick")
}

func TestParseCheckReportsInvalidPatterns(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.snippets")
	writeFile(t, file, "snippet bad\ntrigger (\n\tx\n")

	_, err := execute(t, "", "parse", file)
	require.NoError(t, err)

	_, err = execute(t, "", "parse", "--check", file)
	require.Error(t, err)
}

func TestParseMissingFile(t *testing.T) {
	_, err := execute(t, "", "parse", filepath.Join(t.TempDir(), "none.snippets"))
	require.Error(t, err)
}

func TestListGroupsByScope(t *testing.T) {
	dir := snippetDir(t)

	out, err := execute(t, "", "list", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "_\n  todo")
	assert.Contains(t, out, "go\n  fn")
	assert.Contains(t, out, "pick")
	assert.Contains(t, out, filepath.Join(dir, "go.snippets"))
}

func TestListActiveScope(t *testing.T) {
	dir := snippetDir(t)

	out, err := execute(t, "", "list", "--scope", "python", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "todo")
	assert.NotContains(t, out, "fn")
}

func TestWatchWithoutDirectories(t *testing.T) {
	_, err := execute(t, "", "watch")
	require.ErrorIs(t, err, app.ErrNoSnippetDirs)
}

func TestHighlightMarksFieldsAndCursors(t *testing.T) {
	application, err := app.New(app.Options{IgnoreEnv: true, LogOutput: new(bytes.Buffer)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	m := application.Manager()
	require.NoError(t, m.InsertSnippet("a${1:x}b$0"))
	s := m.Session()

	text := application.Engine().Text()
	assert.Equal(t, "axb", highlight(text, s.Tabstops(), s.Selected(), styleSet{}))
	assert.Equal(t, "axb▏", highlight(text, s.Tabstops(), s.Selected(), styleSet{enabled: true}))
}

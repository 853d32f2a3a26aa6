package registry

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeForFile(t *testing.T) {
	assert.Equal(t, "go", ScopeForFile("/x/go.snippets"))
	assert.Equal(t, "_", ScopeForFile("_.snippets"))
	assert.Equal(t, "_", ScopeForFile("dir/global.snippets"))
	assert.Equal(t, "javascript", ScopeForFile("javascript"))
}

func TestLoaderLoadDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/snips/go.snippets", []byte("snippet fn\n\tfunc $1() {\n\t}\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/snips/web/html.snippets", []byte(
		"snippet div\n\t<div>$1</div>\n\n{\"name\": \"css\", \"tabTrigger\": \"css\", \"scope\": \"css\", \"content\": \"a {}\"}\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/snips/_.snippets", []byte("snippet bad\n\tx\nregex //(//\nsnippet worse\n\ty\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/snips/README.md", []byte("snippet no\n\tno\n"), 0o644))

	r := New()
	n, err := NewLoader(fs, "").LoadDir(r, "/snips")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.Equal(t, 4, n)
	assert.Equal(t, []string{"_", "css", "go", "html"}, r.Scopes())

	s, ok := r.ByName([]string{"go"}, "fn")
	require.True(t, ok)
	assert.Equal(t, "/snips/go.snippets", s.Source)
	assert.Equal(t, "func $1() {\n}", s.Content)
}

func TestLoaderReloadReplaces(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/snips/go.snippets"
	require.NoError(t, afero.WriteFile(fs, path, []byte("snippet a\n\ta\nsnippet b\n\tb\n"), 0o644))

	r := New()
	l := NewLoader(fs, "*.snippets")
	_, err := l.LoadFile(r, path)
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fs, path, []byte("snippet c\n\tc\n"), 0o644))
	n, err := l.LoadFile(r, path)
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"c"}, names(r.Snippets("go")))
}

func TestLoaderPattern(t *testing.T) {
	l := NewLoader(afero.NewMemMapFs(), "")

	assert.True(t, l.Matches("go.snippets"))
	assert.True(t, l.Matches("a/b/go.snippets"))
	assert.False(t, l.Matches("go.txt"))

	flat := NewLoader(afero.NewMemMapFs(), "*.snippets")
	assert.False(t, flat.Matches("a/go.snippets"))
}

func TestWatcherReloadsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "go.snippets")
	require.NoError(t, os.WriteFile(path, []byte("snippet a\n\ta\n"), 0o644))

	r := New()
	l := NewLoader(nil, "")
	_, err := l.LoadDir(r, dir)
	require.NoError(t, err)

	var (
		mu      sync.Mutex
		reloads []string
	)
	w, err := NewWatcher(l, r, WithDelay(10*time.Millisecond), OnReload(func(p string, _ int, _ error) {
		mu.Lock()
		defer mu.Unlock()
		reloads = append(reloads, p)
	}))
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(dir))

	require.NoError(t, os.WriteFile(path, []byte("snippet b\n\tb\n"), 0o644))
	require.Eventually(t, func() bool {
		_, ok := r.ByName([]string{"go"}, "b")
		return ok
	}, 5*time.Second, 10*time.Millisecond)
	_, ok := r.ByName([]string{"go"}, "a")
	assert.False(t, ok)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool {
		return len(r.Snippets("go")) == 0
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Contains(t, reloads, path)
	mu.Unlock()

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Watch(dir), ErrWatcherClosed)
}

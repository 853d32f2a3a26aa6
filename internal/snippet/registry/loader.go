package registry

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

// DefaultPattern selects snippet files below a directory.
const DefaultPattern = "**/*.snippets"

// Loader reads snippet files into a registry.
type Loader struct {
	fs      afero.Fs
	pattern string
	logger  zerolog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the loader's logger.
func WithLoaderLogger(logger zerolog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader reading files of fs whose path below the
// loaded directory matches the doublestar pattern. A nil fs reads the
// operating system's file system; an empty pattern is DefaultPattern.
func NewLoader(fsys afero.Fs, pattern string, opts ...LoaderOption) *Loader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if pattern == "" {
		pattern = DefaultPattern
	}
	l := &Loader{fs: fsys, pattern: pattern, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Matches reports whether path, relative to a loaded directory, is a
// snippet file.
func (l *Loader) Matches(rel string) bool {
	ok, _ := doublestar.Match(l.pattern, filepath.ToSlash(rel))
	return ok
}

// LoadDir loads every snippet file below dir and returns the number of
// snippets registered. Failures of single files are collected; the rest
// still load.
func (l *Loader) LoadDir(reg *Registry, dir string) (int, error) {
	var (
		total int
		errs  error
	)
	walkErr := afero.Walk(l.fs, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil || !l.Matches(rel) {
			return nil
		}
		n, err := l.LoadFile(reg, path)
		total += n
		errs = multierr.Append(errs, err)
		return nil
	})
	if walkErr != nil {
		errs = multierr.Append(errs, errors.Errorf("walking %s: %w", dir, walkErr))
	}
	return total, errs
}

// LoadFile parses path and replaces the snippets previously loaded from
// it. The file's scope is its base name without extension.
func (l *Loader) LoadFile(reg *Registry, path string) (int, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return 0, errors.Errorf("reading snippets: %w", err)
	}

	defs := ParseFile(string(data))
	err = reg.ReplaceSource(path, defs, ScopeForFile(path))
	n := len(defs) - len(multierr.Errors(err))
	l.logger.Info().Str("file", path).Int("snippets", n).Msg("snippets loaded")
	return n, err
}

// ScopeForFile maps "go.snippets" to "go". Files named "_" or
// "global" hold global snippets.
func ScopeForFile(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	switch name {
	case "", GlobalScope, "global":
		return GlobalScope
	}
	return name
}

package keymap

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// filePattern matches keymap file names.
const filePattern = "*.{toml,yaml,yml,json}"

// Loader loads keymaps from configuration files.
type Loader struct {
	fs afero.Fs

	// searchPaths are directories to search for keymap files.
	searchPaths []string
}

// NewLoader creates a keymap loader reading from fs.
// A nil fs reads the operating system's file system.
func NewLoader(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{fs: fs}
}

// AddSearchPath adds a directory to search for keymap files.
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// LoadFile loads a keymap from a TOML, YAML or JSON file.
func (l *Loader) LoadFile(path string) (*Keymap, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, errors.Errorf("reading keymap file: %w", err)
	}

	km, err := Decode(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, errors.Errorf("%s: %w", path, err)
	}
	if km.Name == "" {
		km.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if km.Source == "" {
		km.Source = "user"
	}
	return km, nil
}

// Decode decodes a keymap in the given format ("toml", "yaml", "yml" or
// "json").
func Decode(data []byte, format string) (*Keymap, error) {
	km := &Keymap{}
	var err error
	switch strings.ToLower(format) {
	case "toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(km)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, km)
	case "json":
		err = json.Unmarshal(data, km)
	default:
		return nil, errors.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, errors.Errorf("decoding keymap: %w", err)
	}
	return km, nil
}

// LoadAll loads all keymaps from the search paths. Files that fail to
// load are returned as errors alongside the keymaps that loaded.
func (l *Loader) LoadAll() ([]*Keymap, []error) {
	var (
		keymaps []*Keymap
		errs    []error
	)

	for _, dir := range l.searchPaths {
		entries, err := afero.ReadDir(l.fs, dir)
		if err != nil {
			errs = append(errs, errors.Errorf("reading keymap dir: %w", err))
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if ok, _ := doublestar.Match(filePattern, entry.Name()); !ok {
				continue
			}
			km, err := l.LoadFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				errs = append(errs, err)
				continue
			}
			keymaps = append(keymaps, km)
		}
	}

	return keymaps, errs
}

// LoadInto loads all keymaps and registers them.
func (l *Loader) LoadInto(r *Registry) []error {
	keymaps, errs := l.LoadAll()
	for _, km := range keymaps {
		if err := r.Register(km); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

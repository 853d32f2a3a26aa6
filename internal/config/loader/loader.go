// Package loader reads configuration files and environment variables into
// generic maps.
//
// Files are TOML or YAML, chosen by extension. A file may pull in others
// with a top-level "@include" key; included values rank below the
// including file's.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// ErrIncludeDepth is returned when "@include" directives nest too deeply.
var ErrIncludeDepth = errors.New("include depth exceeded")

// ErrUnknownFormat is returned for a file extension with no decoder.
var ErrUnknownFormat = errors.New("unknown config format")

// DefaultIncludeDepth bounds nested includes.
const DefaultIncludeDepth = 8

// Format is a configuration file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor returns the format implied by path's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.Errorf("%w: %s", ErrUnknownFormat, path)
}

// FileLoader loads configuration files from a file system.
type FileLoader struct {
	fs afero.Fs
}

// NewFileLoader creates a loader reading from fs. A nil fs reads the OS
// file system.
func NewFileLoader(fs afero.Fs) *FileLoader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileLoader{fs: fs}
}

// Load reads path and its includes. It returns nil, nil when path does
// not exist.
func (l *FileLoader) Load(path string) (map[string]any, error) {
	return l.load(path, DefaultIncludeDepth)
}

func (l *FileLoader) load(path string, depth int) (map[string]any, error) {
	if depth <= 0 {
		return nil, errors.Errorf("%w: %s", ErrIncludeDepth, path)
	}

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Errorf("reading config file %s: %w", path, err)
	}
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	config, err := Parse(path, format, data)
	if err != nil {
		return nil, err
	}

	includes, err := includeList(config)
	if err != nil {
		return nil, errors.Errorf("%s: %w", path, err)
	}
	delete(config, "@include")

	base := filepath.Dir(path)
	for _, inc := range includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(base, inc)
		}
		sub, err := l.load(inc, depth-1)
		if err != nil {
			return nil, errors.Errorf("loading include %s: %w", inc, err)
		}
		config = DeepMerge(sub, config)
	}
	return config, nil
}

func includeList(config map[string]any) ([]string, error) {
	switch v := config["@include"].(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.New("@include must be a string or an array of strings")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errors.Errorf("@include must be a string or an array of strings, got %T", v)
	}
}

// LoadFromReader parses configuration from r.
func LoadFromReader(r io.Reader, format Format) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Errorf("reading config: %w", err)
	}
	return Parse("<reader>", format, data)
}

// Parse decodes data in the given format. Empty input yields an empty map.
func Parse(source string, format Format, data []byte) (map[string]any, error) {
	config := make(map[string]any)
	if len(bytes.TrimSpace(data)) == 0 {
		return config, nil
	}

	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &config)
	case FormatYAML:
		err = yaml.Unmarshal(data, &config)
	default:
		return nil, errors.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, newParseError(source, err)
	}
	return config, nil
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func newParseError(path string, err error) *ParseError {
	pe := &ParseError{Path: path, Message: err.Error(), Err: err}
	var de *toml.DecodeError
	if errors.As(err, &de) {
		pe.Line, pe.Column = de.Position()
		pe.Message = de.Error()
	}
	return pe
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DeepMerge merges src into dst. Values in src win; nested maps merge.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = srcVal
	}
	return dst
}

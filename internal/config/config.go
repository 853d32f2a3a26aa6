package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"

	"github.com/dshills/snipstorm/internal/config/loader"
)

// Default values.
const (
	DefaultTabWidth  = 4
	DefaultPattern   = "**/*.snippets"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// Config is the complete snipstorm configuration.
type Config struct {
	Editor   EditorSection   `toml:"editor" yaml:"editor"`
	Snippets SnippetsSection `toml:"snippets" yaml:"snippets"`
	Keymaps  KeymapsSection  `toml:"keymaps" yaml:"keymaps"`
	User     UserSection     `toml:"user" yaml:"user"`
	Log      LogSection      `toml:"log" yaml:"log"`

	// Variables defines snippet variables. A value starting with "lua:"
	// is a Lua expression evaluated at expansion time.
	Variables map[string]string `toml:"variables" yaml:"variables"`

	path string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorSection{
			TabWidth: DefaultTabWidth,
			SoftTabs: true,
		},
		Snippets: SnippetsSection{
			Pattern: DefaultPattern,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs        afero.Fs
	envPrefix string
	env       bool
}

// WithFS reads configuration files from fs.
func WithFS(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithEnvPrefix changes the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithoutEnv ignores environment overrides.
func WithoutEnv() Option {
	return func(o *options) {
		o.env = false
	}
}

// Load builds a configuration from the defaults, the file at path and
// environment overrides, in increasing priority. An empty or missing path
// leaves the defaults in place.
func Load(path string, opts ...Option) (*Config, error) {
	o := &options{fs: afero.NewOsFs(), envPrefix: loader.DefaultEnvPrefix, env: true}
	for _, opt := range opts {
		opt(o)
	}

	values := make(map[string]any)
	if path != "" {
		file, err := loader.NewFileLoader(o.fs).Load(path)
		if err != nil {
			return nil, err
		}
		values = loader.DeepMerge(values, file)
	}
	if o.env {
		env, err := loader.NewEnvLoader(o.envPrefix).Load()
		if err != nil {
			return nil, err
		}
		values = loader.DeepMerge(values, env)
	}

	c := Default()
	if err := c.decode(values); err != nil {
		return nil, errors.Errorf("%s: %w", path, err)
	}
	c.path = path
	c.expandPaths()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// decode applies values over c. Keys absent from values keep their
// current setting; unknown keys are an error.
func (c *Config) decode(values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	data, err := toml.Marshal(values)
	if err != nil {
		return errors.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return errors.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	return nil
}

// expandPaths expands environment references and "~" in directory
// settings and resolves them against the config file's directory.
func (c *Config) expandPaths() {
	base := ""
	if c.path != "" {
		base = filepath.Dir(c.path)
	}
	expand := func(dirs []string) {
		for i, dir := range dirs {
			dir = os.ExpandEnv(dir)
			if home, err := os.UserHomeDir(); err == nil && (dir == "~" || len(dir) > 1 && dir[:2] == "~/") {
				dir = filepath.Join(home, dir[1:])
			}
			if base != "" && !filepath.IsAbs(dir) {
				dir = filepath.Join(base, dir)
			}
			dirs[i] = dir
		}
	}
	expand(c.Snippets.Dirs)
	expand(c.Keymaps.Dirs)
	if c.Log.File != "" {
		c.Log.File = os.ExpandEnv(c.Log.File)
	}
}

// Path returns the file the configuration was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var err error
	if c.Editor.TabWidth < 1 {
		err = multierr.Append(err, errors.Errorf("%w: %d", ErrInvalidTabWidth, c.Editor.TabWidth))
	}
	if !doublestar.ValidatePattern(c.Snippets.Pattern) {
		err = multierr.Append(err, errors.Errorf("%w: %q", ErrInvalidPattern, c.Snippets.Pattern))
	}
	if _, lerr := zerolog.ParseLevel(c.Log.Level); lerr != nil || c.Log.Level == "" {
		err = multierr.Append(err, errors.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		err = multierr.Append(err, errors.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format))
	}
	return err
}

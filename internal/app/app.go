// Package app wires snipstorm together: configuration, logging, the host
// document, the snippet registry and its loaders, key bindings and the
// snippet manager.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/dshills/snipstorm/internal/config"
	"github.com/dshills/snipstorm/internal/engine"
	"github.com/dshills/snipstorm/internal/input"
	"github.com/dshills/snipstorm/internal/plugin/lua"
	"github.com/dshills/snipstorm/internal/snippet"
	"github.com/dshills/snipstorm/internal/snippet/registry"
	"github.com/dshills/snipstorm/internal/snippet/variable"
)

// Application owns every component of a snipstorm session.
type Application struct {
	mu sync.Mutex

	config   *config.Config
	logger   zerolog.Logger
	logClose io.Closer

	lua      *lua.State
	resolver *variable.Resolver
	engine   *engine.Engine
	registry *registry.Registry
	loader   *registry.Loader
	watcher  *registry.Watcher
	input    *input.Handler
	manager  *snippet.Manager

	dirs   []string
	closed bool
	opts   Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty uses the defaults.
	ConfigPath string

	// FilePath is the path of the document being edited. It selects the
	// snippet scope and the .editorconfig rules.
	FilePath string

	// Scope overrides the scope derived from FilePath.
	Scope string

	// Content is the initial document text.
	Content string

	// SnippetDirs are loaded in addition to the configured directories.
	SnippetDirs []string

	// Watch reloads snippet files on change even when the configuration
	// does not ask for it.
	Watch bool

	// FS is the file system configuration, snippets and keymaps are read
	// from. Defaults to the OS file system.
	FS afero.Fs

	// LogOutput receives log output. Defaults to stderr.
	LogOutput io.Writer

	// LogLevel overrides the configured log level.
	LogLevel string

	// IgnoreEnv skips SNIPSTORM_* environment overrides.
	IgnoreEnv bool

	// OnReload is called after the watcher reloads a snippet file.
	OnReload registry.ReloadFunc
}

// New creates an Application with the given options.
func New(opts Options) (*Application, error) {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	app := &Application{
		opts:   opts,
		logger: zerolog.Nop(),
	}
	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Config returns the loaded configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the root logger.
func (app *Application) Logger() zerolog.Logger {
	return app.logger
}

// Engine returns the host document.
func (app *Application) Engine() *engine.Engine {
	return app.engine
}

// Registry returns the snippet registry.
func (app *Application) Registry() *registry.Registry {
	return app.registry
}

// Resolver returns the variable resolver.
func (app *Application) Resolver() *variable.Resolver {
	return app.resolver
}

// Input returns the key handler.
func (app *Application) Input() *input.Handler {
	return app.input
}

// Manager returns the snippet manager.
func (app *Application) Manager() *snippet.Manager {
	return app.manager
}

// SnippetDirs returns the directories snippets are loaded from.
func (app *Application) SnippetDirs() []string {
	return app.dirs
}

// Reload loads every snippet directory again and returns the number of
// snippets registered.
func (app *Application) Reload() (int, error) {
	var (
		total int
		err   error
	)
	for _, dir := range app.dirs {
		n, lerr := app.loader.LoadDir(app.registry, dir)
		total += n
		err = multierr.Append(err, lerr)
	}
	return total, err
}

// Run watches the snippet directories until ctx is done.
func (app *Application) Run(ctx context.Context) error {
	app.mu.Lock()
	if app.closed {
		app.mu.Unlock()
		return ErrClosed
	}
	if app.watcher == nil {
		if err := app.startWatcher(); err != nil {
			app.mu.Unlock()
			return err
		}
	}
	app.mu.Unlock()

	app.logger.Info().Strs("dirs", app.dirs).Msg("watching snippet directories")
	<-ctx.Done()
	return nil
}

// Close stops the watcher and releases the Lua state and log file.
func (app *Application) Close() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.closed {
		return nil
	}
	app.closed = true

	var err error
	if app.watcher != nil {
		err = multierr.Append(err, app.watcher.Close())
	}
	if app.engine != nil {
		app.engine.Close()
	}
	if app.lua != nil {
		err = multierr.Append(err, app.lua.Close())
	}
	if app.logClose != nil {
		err = multierr.Append(err, app.logClose.Close())
	}
	return err
}

package app

import (
	"slices"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/dshills/snipstorm/internal/config"
	"github.com/dshills/snipstorm/internal/engine"
	"github.com/dshills/snipstorm/internal/input"
	"github.com/dshills/snipstorm/internal/input/keymap"
	"github.com/dshills/snipstorm/internal/plugin/lua"
	"github.com/dshills/snipstorm/internal/snippet"
	"github.com/dshills/snipstorm/internal/snippet/registry"
	"github.com/dshills/snipstorm/internal/snippet/variable"
)

// bootstrapper initializes components in dependency order and cleans up
// the ones already started when a later step fails.
type bootstrapper struct {
	app       *Application
	initOrder []string
}

func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{app: app}
}

func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"config", b.initConfig},
		{"logger", b.initLogger},
		{"variables", b.initVariables},
		{"engine", b.initEngine},
		{"registry", b.initRegistry},
		{"input", b.initInput},
		{"manager", b.initManager},
		{"watcher", b.initWatcher},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			b.cleanup()
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	b.app.logger.Debug().Strs("components", b.initOrder).Msg("application started")
	return nil
}

func (b *bootstrapper) initConfig() error {
	opts := []config.Option{config.WithFS(b.app.opts.FS)}
	if b.app.opts.IgnoreEnv {
		opts = append(opts, config.WithoutEnv())
	}
	cfg, err := config.Load(b.app.opts.ConfigPath, opts...)
	if err != nil {
		return err
	}
	b.app.config = cfg
	return nil
}

func (b *bootstrapper) initLogger() error {
	cfg := b.app.config.Log
	if b.app.opts.LogLevel != "" {
		cfg.Level = b.app.opts.LogLevel
	}

	lc := DefaultLoggerConfig()
	if b.app.opts.LogOutput != nil {
		lc.Output = b.app.opts.LogOutput
	}
	out, closer, err := openLogOutput(cfg, lc.Output)
	if err != nil {
		return err
	}
	lc.Output = out
	lc.Level = cfg.Level
	lc.Format = cfg.Format

	b.app.logClose = closer
	b.app.logger = NewLogger(lc)
	return nil
}

func (b *bootstrapper) initVariables() error {
	app := b.app
	app.resolver = variable.NewResolver(variable.WithLogger(app.logger.With().Str("component", "variables").Logger()))

	if app.config.HasLuaVariables() {
		state, err := lua.NewState()
		if err != nil {
			return err
		}
		app.lua = state
	}
	for _, name := range app.config.DefineVariables(app.resolver, app.lua) {
		app.logger.Warn().Str("variable", name).Msg("lua variable skipped")
	}
	return nil
}

func (b *bootstrapper) initEngine() error {
	app := b.app
	editor, err := app.config.EditorFor(app.opts.FilePath)
	if err != nil {
		app.logger.Warn().Err(err).Msg("editorconfig ignored")
	}

	scope := app.opts.Scope
	if scope == "" {
		scope = ScopeForPath(app.opts.FilePath)
	}
	app.engine = engine.New(
		engine.WithContent(app.opts.Content),
		engine.WithTabWidth(editor.TabWidth),
		engine.WithSoftTabs(editor.SoftTabs),
		engine.WithScope(scope),
		engine.WithFilePath(app.opts.FilePath),
	)
	return nil
}

func (b *bootstrapper) initRegistry() error {
	app := b.app
	logger := app.logger.With().Str("component", "registry").Logger()
	app.registry = registry.New(registry.WithLogger(logger))
	for scope, include := range app.config.Snippets.Include {
		app.registry.SetIncludeScopes(scope, include)
	}
	app.loader = registry.NewLoader(app.opts.FS, app.config.Snippets.Pattern, registry.WithLoaderLogger(logger))

	for _, dir := range slices.Concat(app.config.Snippets.Dirs, app.opts.SnippetDirs) {
		if !slices.Contains(app.dirs, dir) {
			app.dirs = append(app.dirs, dir)
		}
	}

	// Broken snippet files are reported and skipped.
	n, err := app.Reload()
	for _, e := range multierr.Errors(err) {
		app.logger.Warn().Err(e).Msg("snippet load failed")
	}
	app.logger.Info().Int("snippets", n).Int("dirs", len(app.dirs)).Msg("snippets loaded")
	return nil
}

func (b *bootstrapper) initInput() error {
	app := b.app
	keymaps := keymap.NewRegistry()
	if err := keymap.LoadDefaults(keymaps); err != nil {
		return err
	}

	loader := keymap.NewLoader(app.opts.FS)
	for _, dir := range app.config.Keymaps.Dirs {
		if ok, _ := afero.DirExists(app.opts.FS, dir); ok {
			loader.AddSearchPath(dir)
		}
	}
	for _, err := range loader.LoadInto(keymaps) {
		app.logger.Warn().Err(err).Msg("keymap load failed")
	}

	app.input = input.NewHandler(
		input.WithKeymapRegistry(keymaps),
		input.WithLogger(app.logger.With().Str("component", "input").Logger()),
	)
	return nil
}

func (b *bootstrapper) initManager() error {
	app := b.app
	app.manager = snippet.NewManager(app.engine, app.registry,
		snippet.WithLogger(app.logger.With().Str("component", "snippet").Logger()),
		snippet.WithResolver(app.resolver),
		snippet.WithInputHandler(app.input),
		snippet.WithNesting(app.config.Snippets.Nested),
	)
	return nil
}

func (b *bootstrapper) initWatcher() error {
	if !b.app.opts.Watch && !b.app.config.Snippets.Watch {
		return nil
	}
	return b.app.startWatcher()
}

// startWatcher watches every snippet directory that exists.
func (app *Application) startWatcher() error {
	if len(app.dirs) == 0 {
		return ErrNoSnippetDirs
	}
	opts := []registry.WatcherOption{
		registry.WithWatcherLogger(app.logger.With().Str("component", "watcher").Logger()),
	}
	if app.opts.OnReload != nil {
		opts = append(opts, registry.OnReload(app.opts.OnReload))
	}
	w, err := registry.NewWatcher(app.loader, app.registry, opts...)
	if err != nil {
		return err
	}
	for _, dir := range app.dirs {
		if err := w.Watch(dir); err != nil {
			app.logger.Warn().Err(err).Str("dir", dir).Msg("cannot watch snippet directory")
		}
	}
	app.watcher = w
	return nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	app := b.app
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "watcher":
			if app.watcher != nil {
				_ = app.watcher.Close()
				app.watcher = nil
			}
		case "engine":
			app.engine.Close()
		case "variables":
			if app.lua != nil {
				_ = app.lua.Close()
				app.lua = nil
			}
		case "logger":
			if app.logClose != nil {
				_ = app.logClose.Close()
				app.logClose = nil
			}
		}
	}
}

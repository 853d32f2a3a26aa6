package registry

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// ReloadFunc is called after a watched snippet file was reloaded or
// removed. n is the number of snippets now registered from path.
type ReloadFunc func(path string, n int, err error)

// Watcher re-registers snippet files when they change on disk.
// Rapid changes to one file are coalesced into a single reload.
type Watcher struct {
	mu sync.Mutex

	fsw    *fsnotify.Watcher
	loader *Loader
	reg    *Registry
	delay  time.Duration
	logger zerolog.Logger

	roots    []string
	pending  map[string]*time.Timer
	onReload ReloadFunc

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDelay sets how long a file must stay unchanged before it is
// reloaded.
func WithDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.delay = d
	}
}

// WithWatcherLogger sets the watcher's logger.
func WithWatcherLogger(logger zerolog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// OnReload sets a callback run after every reload.
func OnReload(fn ReloadFunc) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// NewWatcher creates a watcher loading changed files with loader into
// reg. Call Watch to add directories and Close to stop.
func NewWatcher(loader *Loader, reg *Registry, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fsw:     fsw,
		loader:  loader,
		reg:     reg,
		delay:   100 * time.Millisecond,
		logger:  zerolog.Nop(),
		pending: make(map[string]*time.Timer),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Watch watches dir and its subdirectories.
func (w *Watcher) Watch(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	err = afero.Walk(w.loader.fs, abs, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		return errors.Errorf("watching %s: %w", dir, err)
	}
	w.roots = append(w.roots, abs)
	return nil
}

// Close stops the watcher. Pending reloads are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.closedWg.Wait()
	return err
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("snippet watcher")
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := w.loader.fs.Stat(ev.Name); err == nil && info.IsDir() {
			w.mu.Lock()
			if !w.closed {
				_ = w.fsw.Add(ev.Name)
			}
			w.mu.Unlock()
			return
		}
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	if !w.tracked(ev.Name) {
		return
	}
	w.schedule(ev.Name)
}

// tracked reports whether path is a snippet file below a watched root.
func (w *Watcher) tracked(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if w.loader.Matches(rel) {
			return true
		}
	}
	return false
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.delay)
		return
	}
	w.pending[path] = time.AfterFunc(w.delay, func() {
		w.reload(path)
	})
}

func (w *Watcher) reload(path string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.mu.Unlock()

	var (
		n   int
		err error
	)
	if ok, _ := afero.Exists(w.loader.fs, path); ok {
		n, err = w.loader.LoadFile(w.reg, path)
	} else {
		removed := w.reg.RemoveSource(path)
		w.logger.Info().Str("file", path).Int("snippets", removed).Msg("snippets removed")
	}
	if err != nil {
		w.logger.Warn().Err(err).Str("file", path).Msg("reloading snippets")
	}
	if w.onReload != nil {
		w.onReload(path, n, err)
	}
}

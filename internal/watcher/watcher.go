// Package watcher reloads the catalog when its file changes on disk.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/hyperjump/aidex/internal/debounce"
)

const defaultDebounce = 400 * time.Millisecond

// Reloader is satisfied by catalog.Store.
type Reloader interface {
	Path() string
	Reload() error
}

// Watcher watches a single file and invokes a callback after writes settle.
// It watches the parent directory so editors that save by rename are seen too.
type Watcher struct {
	path     string
	dir      string
	onChange func(path string)
	onRemove func(path string)
	delay    time.Duration
	clock    clockwork.Clock

	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	debouncer *debounce.Debouncer
	done      chan struct{}
	started   bool
	stopOnce  sync.Once
	logger    *zap.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long writes must be quiet before onChange runs.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithClock sets the clock driving the debounce timer.
func WithClock(c clockwork.Clock) WatcherOption {
	return func(w *Watcher) {
		if c != nil {
			w.clock = c
		}
	}
}

// WithOnRemove sets a callback for when the watched file is removed.
func WithOnRemove(fn func(path string)) WatcherOption {
	return func(w *Watcher) { w.onRemove = fn }
}

// NewWatcher creates a watcher for path. onChange is called, debounced, after
// the file is created or written.
func NewWatcher(path string, onChange func(path string), opts ...WatcherOption) *Watcher {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	path = filepath.Clean(path)
	w := &Watcher{
		path:     path,
		dir:      filepath.Dir(path),
		onChange: onChange,
		delay:    defaultDebounce,
		clock:    clockwork.NewRealClock(),
		done:     make(chan struct{}),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = debounce.New(w.delay, debounce.WithClock(w.clock))
	return w
}

// ForCatalog returns a watcher that reloads r whenever its file changes.
// Reload errors are logged; the previous catalog stays active.
func ForCatalog(r Reloader, opts ...WatcherOption) *Watcher {
	var w *Watcher
	w = NewWatcher(r.Path(), func(path string) {
		if err := r.Reload(); err != nil {
			w.logger.Warn("catalog reload failed", zap.String("path", path), zap.Error(err))
		}
	}, opts...)
	return w
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string { return w.path }

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	if _, err := os.Stat(w.dir); err != nil {
		w.mu.Unlock()
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.logger.Debug("watcher starting", zap.String("path", w.path), zap.Duration("debounce", w.delay))
	w.mu.Unlock()
	go w.run(ctx, watcher)
	return nil
}

func (w *Watcher) run(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		w.debouncer.Schedule(func() {
			w.logger.Debug("watcher reloading file (debounced)", zap.String("path", w.path))
			if w.onChange != nil {
				w.onChange(w.path)
			}
		})
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.debouncer.Cancel()
		if w.onRemove != nil {
			w.onRemove(w.path)
		}
	}
}

// Stop stops the watcher and releases resources. Pending reloads are dropped.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	w.debouncer.Stop()
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}

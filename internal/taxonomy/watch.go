package taxonomy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"botanize/internal/logging"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads a Store whenever its reference files change on disk.
type Watcher struct {
	store    *Store
	sources  Sources
	logger   *slog.Logger
	debounce time.Duration
	onReload func(error)

	fsw     *fsnotify.Watcher
	names   map[string]struct{}
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce overrides the quiet period before a reload.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReloadHook registers fn to run after every reload attempt.
func WithReloadHook(fn func(error)) WatchOption {
	return func(w *Watcher) { w.onReload = fn }
}

// NewWatcher prepares a watcher over the directories holding src.
func NewWatcher(store *Store, src Sources, logger *slog.Logger, opts ...WatchOption) (*Watcher, error) {
	if store == nil {
		return nil, fmt.Errorf("taxonomy watcher requires a store")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	w := &Watcher{
		store:    store,
		sources:  src,
		logger:   logging.NewComponentLogger(logger, "taxonomy-watch"),
		debounce: defaultDebounce,
		fsw:      fsw,
		names:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. It is non-blocking and idempotent.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	dirs := make(map[string]struct{})
	for _, path := range []string{w.sources.SpeciesPath, w.sources.VocabularyPath} {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}
		w.names[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.logger.Debug("watching taxonomy directory", logging.String("dir", dir))
	}

	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	go w.loop(ctx)
	return nil
}

// Stop halts the watcher and releases the underlying file descriptors.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.fsw.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.fsw.Close(); err != nil {
		w.logger.Debug("close file watcher", logging.Error(err))
	}
}

// Run starts the watcher and blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.WarnWithContext(w.logger, "taxonomy watch error", "taxonomy_watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "reference file changes may be missed"))
		case <-timer.C:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.names[abs]
	return ok
}

func (w *Watcher) reload(ctx context.Context) {
	err := Reload(ctx, w.store, w.sources)
	if err != nil {
		logging.WarnWithContext(w.logger, "taxonomy reload failed", "taxonomy_reload_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the reference file; the previous data stays active"),
			logging.String(logging.FieldImpact, "matching continues on the last good taxonomy"))
	} else {
		w.logger.Info("taxonomy reloaded",
			logging.Int("species", w.store.Len()),
			logging.Int("terms", w.store.Vocabulary().Len()))
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}

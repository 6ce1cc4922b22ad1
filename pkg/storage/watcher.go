package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher notifies a host when files under a policies directory change, so
// it can drop its repository instance and request a fresh one from the
// Manager. Repository decode caches are per-instance and are never mutated
// by the watcher.
//
// Events are debounced: a burst of writes produces one notification after a
// quiet period.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	dir      string
	exts     []string
	debounce *debouncer

	mu      sync.Mutex
	running bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// DefaultDebounceInterval is the quiet period before a change notification
// fires.
const DefaultDebounceInterval = 100 * time.Millisecond

// NewWatcher creates a watcher over dir for files with the given extensions
// (without the dot). Empty extensions watch everything.
func NewWatcher(dir string, extensions []string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsw,
		logger:   logger.With("component", "storage.watcher"),
		dir:      dir,
		exts:     extensions,
		debounce: newDebouncer(DefaultDebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks, invoking onChange after each debounced burst of changes,
// until the context is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context, onChange func()) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.addTree(w.dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", w.dir, err)
	}

	w.logger.Info("storage watcher started", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("storage watcher stopped", "reason", "context cancelled")
			return nil

		case <-w.stopCh:
			w.logger.Info("storage watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}

			w.logger.Debug("storage change detected", "path", event.Name, "op", event.Op.String())
			w.debounce.trigger(func() {
				w.logger.Info("storage changed, notifying", "dir", w.dir)
				onChange()
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			// Keep watching despite transient errors.
			w.logger.Error("storage watcher error", "error", err)
		}
	}
}

// Stop halts the watcher and cancels any pending notification. Calling Stop
// more than once is safe; later calls return nil.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running || w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != dir {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		// Covers the atomic-write temp files as well as hidden files.
		return false
	}

	if len(w.exts) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(event.Name)), ".")
	for _, valid := range w.exts {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

// debouncer collapses rapid event bursts into one callback after a quiet
// period.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool
	stopCh   chan struct{}
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}

		d.mu.Lock()
		cb := d.callback
		d.mu.Unlock()

		if cb != nil {
			cb()
		}
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	close(d.stopCh)

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}

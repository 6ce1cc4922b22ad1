package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestDebouncerCollapsesBursts(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	defer d.stop()

	var fired atomic.Int32
	for i := 0; i < 10; i++ {
		d.trigger(func() { fired.Add(1) })
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if got := fired.Load(); got != 1 {
		t.Errorf("debounced callbacks fired = %d, want 1", got)
	}
}

func TestDebouncerFiresAgainAfterQuietPeriod(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	defer d.stop()

	var fired atomic.Int32
	d.trigger(func() { fired.Add(1) })
	time.Sleep(50 * time.Millisecond)
	d.trigger(func() { fired.Add(1) })
	time.Sleep(50 * time.Millisecond)

	if got := fired.Load(); got != 2 {
		t.Errorf("debounced callbacks fired = %d, want 2", got)
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)

	var fired atomic.Int32
	d.trigger(func() { fired.Add(1) })
	d.stop()

	time.Sleep(80 * time.Millisecond)

	if got := fired.Load(); got != 0 {
		t.Errorf("debounced callbacks fired after stop = %d, want 0", got)
	}
}

func TestWatcherRelevant(t *testing.T) {
	w := &Watcher{exts: []string{"json", "yaml"}}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"matching extension", fsnotify.Event{Name: "/data/policies.json", Op: fsnotify.Write}, true},
		{"matching extension, create", fsnotify.Event{Name: "/data/extra.yaml", Op: fsnotify.Create}, true},
		{"case-insensitive extension", fsnotify.Event{Name: "/data/policies.JSON", Op: fsnotify.Write}, true},
		{"wrong extension", fsnotify.Event{Name: "/data/notes.txt", Op: fsnotify.Write}, false},
		{"chmod ignored", fsnotify.Event{Name: "/data/policies.json", Op: fsnotify.Chmod}, false},
		{"hidden file ignored", fsnotify.Event{Name: "/data/.policies.json.tmp-123", Op: fsnotify.Create}, false},
	}

	for _, tt := range tests {
		if got := w.relevant(tt.event); got != tt.want {
			t.Errorf("relevant(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWatcherRelevantNoExtensionFilter(t *testing.T) {
	w := &Watcher{}

	if !w.relevant(fsnotify.Event{Name: "/data/anything.xyz", Op: fsnotify.Write}) {
		t.Error("relevant() = false with no extension filter, want true")
	}
}

func TestDebouncerStopTwice(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)

	d.trigger(func() {})
	d.stop()
	d.stop()
}

func TestWatcherConcurrentStop(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- w.Watch(context.Background(), func() {})
	}()

	// Let the watch loop start before stopping it.
	time.Sleep(20 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Stop(); err != nil {
				t.Errorf("Stop() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if err := <-watchErr; err != nil {
		t.Errorf("Watch() error = %v, want nil", err)
	}

	// A stop after shutdown stays a no-op.
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() after shutdown error = %v, want nil", err)
	}
}

func TestWatcherStopBeforeWatch(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() before Watch() error = %v, want nil", err)
	}
}

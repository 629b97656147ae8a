// Package watch re-runs the sync pipeline whenever the staging directory
// changes. It exists for generator development loops; a normal sync run
// never watches anything.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long events must settle before the callback
// fires. Generators write many files in quick succession; one run per
// burst is enough.
const DefaultDebounce = 500 * time.Millisecond

// Func is invoked after a settled burst of changes.
type Func func(ctx context.Context)

// Watcher watches a directory tree and invokes a callback after changes
// settle.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration
	fn       Func
	pending  time.Time
	dirty    bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// New creates a Watcher over dir. A zero debounce means DefaultDebounce.
func New(dir string, debounce time.Duration, fn Func) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		watcher:  fsw,
		dir:      filepath.Clean(dir),
		debounce: debounce,
		fn:       fn,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It is non-blocking; the event loop runs in a
// goroutine until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the parent as well. The watched directory can be removed and
	// recreated between runs, and the old watch would stay bound to the
	// dead inode; a Create event for the directory itself rebinds it.
	if err := w.watcher.Add(filepath.Dir(w.dir)); err != nil {
		w.abortStart()
		return err
	}
	if err := w.watcher.Add(w.dir); err != nil {
		w.abortStart()
		return err
	}

	go w.run(ctx)
	return nil
}

// abortStart unwinds a failed Start so a later Stop is a no-op and the
// fsnotify handle does not leak.
func (w *Watcher) abortStart() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	_ = w.watcher.Close()
}

// Stop stops the watcher and waits for the event loop to drain.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	_ = w.watcher.Close()
}

// run is the main event loop.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

		case <-ticker.C:
			w.fireIfSettled(ctx)
		}
	}
}

// handleEvent records write-like events for debounced processing. Events
// for siblings of the watched directory are dropped; a Create of the
// directory itself re-adds the watch, since a recreated directory is a
// new inode the previous watch does not cover.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return // Ignore chmod, etc.
	}

	name := filepath.Clean(event.Name)
	switch {
	case name == w.dir:
		if event.Op&fsnotify.Create != 0 {
			_ = w.watcher.Add(w.dir)
		}
	case !strings.HasPrefix(name, w.dir+string(os.PathSeparator)):
		return
	}

	w.mu.Lock()
	w.dirty = true
	w.pending = time.Now()
	w.mu.Unlock()
}

// fireIfSettled invokes the callback once events stop arriving for the
// debounce window.
func (w *Watcher) fireIfSettled(ctx context.Context) {
	w.mu.Lock()
	ready := w.dirty && time.Since(w.pending) >= w.debounce
	if ready {
		w.dirty = false
	}
	w.mu.Unlock()

	if ready {
		w.fn(ctx)
	}
}

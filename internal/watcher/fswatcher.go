package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	lferrors "github.com/Aman-CERP/localfiles/internal/errors"
	"github.com/Aman-CERP/localfiles/internal/fswalk"
)

// FSWatcher watches registered files and directory trees with fsnotify.
type FSWatcher struct {
	fsWatcher *fsnotify.Watcher
	events    chan FileEvent
	errors    chan error
	stopCh    chan struct{}
	done      chan struct{}

	mu      sync.Mutex
	roots   map[string]struct{}
	stopped bool
}

// New creates a watcher and starts its event loop.
func New(opts Options) (*FSWatcher, error) {
	opts = opts.WithDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, lferrors.WatchError("", err)
	}

	w := &FSWatcher{
		fsWatcher: fsw,
		events:    make(chan FileEvent, opts.EventBufferSize),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
		roots:     make(map[string]struct{}),
	}
	go w.run()
	return w, nil
}

// Watch registers path. A directory is watched recursively, following
// symlinks; directories created later are picked up as they appear.
// Registering the same path twice is a no-op.
func (w *FSWatcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return lferrors.WatchError(path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return lferrors.WatchError(abs, fsnotify.ErrClosed)
	}
	if _, ok := w.roots[abs]; ok {
		return nil
	}

	info, err := os.Stat(abs)
	if err != nil {
		return lferrors.WatchError(abs, err)
	}
	if !info.IsDir() {
		if err := w.fsWatcher.Add(abs); err != nil {
			return lferrors.WatchError(abs, err)
		}
	} else if err := w.addRecursive(abs); err != nil {
		return err
	}

	w.roots[abs] = struct{}{}
	slog.Debug("watching path", slog.String("path", abs))
	return nil
}

// addRecursive adds root and every directory below it. Failing to add
// root is an error; failures below it are logged.
func (w *FSWatcher) addRecursive(root string) error {
	for _, dir := range fswalk.Dirs(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			if dir == root {
				return lferrors.WatchError(root, err)
			}
			slog.Warn("cannot watch directory", slog.String("path", dir), slog.String("error", err.Error()))
		}
	}
	return nil
}

func (w *FSWatcher) run() {
	defer close(w.done)
	defer close(w.events)
	defer close(w.errors)

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.handle(event) {
				return
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.emitError(err)
		}
	}
}

// handle converts one fsnotify event. It returns false once the watcher
// is stopping.
func (w *FSWatcher) handle(event fsnotify.Event) bool {
	switch {
	case event.Op&fsnotify.Create != 0:
		info, err := os.Stat(event.Name)
		if err != nil {
			// Gone again before we looked; a Remove follows.
			return true
		}
		if info.IsDir() {
			return w.handleNewDir(event.Name)
		}
		if info.Mode().IsRegular() {
			return w.emit(event.Name, OpCreate)
		}
		return true
	case event.Op&fsnotify.Write != 0:
		return w.emit(event.Name, OpModify)
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		// The new name of a rename arrives as its own Create.
		return w.emit(event.Name, OpRemove)
	default:
		// Chmod
		return true
	}
}

// handleNewDir watches a directory that appeared after registration and
// reports the files it already contains, since their own Create events
// happened before the watch existed.
func (w *FSWatcher) handleNewDir(dir string) bool {
	w.mu.Lock()
	if err := w.addRecursive(dir); err != nil {
		w.mu.Unlock()
		w.emitError(err)
		return true
	}
	w.mu.Unlock()

	for _, f := range fswalk.Files(dir) {
		if !w.emit(f, OpCreate) {
			return false
		}
	}
	return true
}

// emit blocks until the event is buffered or the watcher stops.
func (w *FSWatcher) emit(path string, op Operation) bool {
	select {
	case w.events <- FileEvent{Path: path, Operation: op, Timestamp: time.Now()}:
		return true
	case <-w.stopCh:
		return false
	}
}

// emitError sends an error without blocking; errors nobody reads are
// logged and dropped.
func (w *FSWatcher) emitError(err error) {
	select {
	case w.errors <- err:
	default:
		slog.Warn("watcher error", slog.String("error", err.Error()))
	}
}

// Events returns the event channel. It is closed after Close.
func (w *FSWatcher) Events() <-chan FileEvent {
	return w.events
}

// Errors returns non-fatal watcher errors. It is closed after Close.
func (w *FSWatcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and waits for the event loop to exit. Safe to
// call multiple times.
func (w *FSWatcher) Close() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		<-w.done
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.mu.Unlock()

	err := w.fsWatcher.Close()
	<-w.done
	return err
}

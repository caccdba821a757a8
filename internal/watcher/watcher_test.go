package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lferrors "github.com/Aman-CERP/localfiles/internal/errors"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want string
	}{
		{"create", OpCreate, "CREATE"},
		{"modify", OpModify, "MODIFY"},
		{"remove", OpRemove, "REMOVE"},
		{"unknown", Operation(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	assert.Equal(t, 256, Options{}.WithDefaults().EventBufferSize)
	assert.Equal(t, 8, Options{EventBufferSize: 8}.WithDefaults().EventBufferSize)
}

func newWatcher(t *testing.T) *FSWatcher {
	t.Helper()
	w, err := New(DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

// waitFor reads events until one matches path and op.
func waitFor(t *testing.T, w *FSWatcher, path string, op Operation) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e, ok := <-w.Events():
			require.True(t, ok, "events closed before %s %s", op, path)
			if e.Path == path && e.Operation == op {
				return
			}
		case <-timeout:
			t.Fatalf("no %s event for %s", op, path)
		}
	}
}

func TestFSWatcher_ReportsCreateModifyRemove(t *testing.T) {
	// Given: a watched directory
	dir := t.TempDir()
	w := newWatcher(t)
	require.NoError(t, w.Watch(dir))
	file := filepath.Join(dir, "note.md")

	// When/Then: each change is reported with its operation
	require.NoError(t, os.WriteFile(file, []byte("one"), 0o644))
	waitFor(t, w, file, OpCreate)

	require.NoError(t, os.WriteFile(file, []byte("two"), 0o644))
	waitFor(t, w, file, OpModify)

	require.NoError(t, os.Remove(file))
	waitFor(t, w, file, OpRemove)
}

func TestFSWatcher_RenameIsRemoveThenCreate(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.txt")
	newPath := filepath.Join(dir, "new.txt")
	require.NoError(t, os.WriteFile(oldPath, []byte("x"), 0o644))

	w := newWatcher(t)
	require.NoError(t, w.Watch(dir))

	require.NoError(t, os.Rename(oldPath, newPath))

	waitFor(t, w, oldPath, OpRemove)
	waitFor(t, w, newPath, OpCreate)
}

func TestFSWatcher_WatchesNestedAndNewDirectories(t *testing.T) {
	// Given: a watched tree with an existing subdirectory
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	w := newWatcher(t)
	require.NoError(t, w.Watch(dir))

	// When: files appear in the existing and in a new subdirectory
	nested := filepath.Join(sub, "a.txt")
	require.NoError(t, os.WriteFile(nested, []byte("a"), 0o644))
	waitFor(t, w, nested, OpCreate)

	fresh := filepath.Join(dir, "fresh")
	require.NoError(t, os.Mkdir(fresh, 0o755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)
	later := filepath.Join(fresh, "b.txt")
	require.NoError(t, os.WriteFile(later, []byte("b"), 0o644))

	// Then: both are reported
	waitFor(t, w, later, OpCreate)
}

func TestFSWatcher_WatchMissingPathFails(t *testing.T) {
	w := newWatcher(t)

	err := w.Watch(filepath.Join(t.TempDir(), "missing"))

	require.Error(t, err)
	assert.True(t, lferrors.HasCode(err, lferrors.ErrCodeWatchRegister))
}

func TestFSWatcher_WatchIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t)

	require.NoError(t, w.Watch(dir))
	require.NoError(t, w.Watch(dir))

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Len(t, w.roots, 1)
}

func TestFSWatcher_CloseClosesEvents(t *testing.T) {
	// Given: a watcher
	w, err := New(DefaultOptions())
	require.NoError(t, err)

	// When: closing it twice
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	// Then: the event channel is closed and Watch is refused
	_, ok := <-w.Events()
	assert.False(t, ok)
	assert.Error(t, w.Watch(t.TempDir()))
}

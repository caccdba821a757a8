package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	lferrors "github.com/Aman-CERP/localfiles/internal/errors"
	"github.com/Aman-CERP/localfiles/internal/watcher"
)

// Registrar registers a path for change notification.
type Registrar interface {
	Watch(path string) error
}

// IndexPathsResult reports an IndexPaths call. Errors holds one message
// per failed path; a failed path does not stop the others.
type IndexPathsResult struct {
	IndexedCount int      `json:"indexed_count"`
	Errors       []string `json:"errors"`
}

// Coordinator serializes access to a FileIndex with a single RWMutex:
// Search, ReadFile, ListFiles and Status share it, every mutation and
// Commit hold it exclusively.
type Coordinator struct {
	mu       sync.RWMutex
	index    *FileIndex
	watching bool
}

// NewCoordinator wraps fi.
func NewCoordinator(fi *FileIndex) *Coordinator {
	return &Coordinator{index: fi}
}

// Search runs a query against the committed index.
func (c *Coordinator) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index.Search(ctx, req)
}

// ReadFile returns the live content of an indexed file.
func (c *Coordinator) ReadFile(path string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index.ReadFile(path)
}

// ListFiles returns sorted indexed paths matching the filters.
func (c *Coordinator) ListFiles(ext, substring string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index.ListFiles(ext, substring)
}

// CoordinatorStatus is Status plus whether a watcher feeds the index.
type CoordinatorStatus struct {
	Status
	Watching bool `json:"watching"`
}

// Status reports index counts and location.
func (c *Coordinator) Status() CoordinatorStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CoordinatorStatus{Status: c.index.Status(), Watching: c.watching}
}

// SetWatching records whether change ingestion is running.
func (c *Coordinator) SetWatching(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watching = on
}

// IndexFile indexes one file without committing.
func (c *Coordinator) IndexFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.IndexFile(path)
}

// RemoveFile removes one file without committing.
func (c *Coordinator) RemoveFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.RemoveFile(path)
}

// Commit makes pending mutations durable and visible.
func (c *Coordinator) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.Commit()
}

// Reconcile refreshes entries changed while nothing was watching.
func (c *Coordinator) Reconcile(ctx context.Context) (ReconcileStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.Reconcile(ctx)
}

// IndexPaths indexes each path (directories recursively), registers it
// with w when w is non-nil, and commits once. Per-path failures are
// collected in the result. Cancelling ctx does not interrupt the call.
func (c *Coordinator) IndexPaths(ctx context.Context, paths []string, w Registrar) IndexPathsResult {
	return c.IndexPathsWithProgress(ctx, paths, w, nil)
}

// IndexPathsWithProgress is IndexPaths reporting directory progress to
// progress, which is called with the exclusive lock held.
func (c *Coordinator) IndexPathsWithProgress(ctx context.Context, paths []string, w Registrar, progress ProgressFunc) IndexPathsResult {
	ctx = context.WithoutCancel(ctx)
	result := IndexPathsResult{Errors: []string{}}
	var registered []string

	c.mu.Lock()
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("path does not exist: %s", p))
			continue
		}

		if info.IsDir() {
			n, err := c.index.IndexDirectory(ctx, p, progress)
			result.IndexedCount += n
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to index %s: %v", p, err))
				continue
			}
		} else {
			if err := c.index.IndexFile(p); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to index %s: %v", p, err))
				continue
			}
			result.IndexedCount++
		}
		registered = append(registered, p)
	}
	c.mu.Unlock()

	if w != nil {
		for _, p := range registered {
			if err := w.Watch(p); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to watch %s: %v", p, err))
			}
		}
	}

	if err := c.Commit(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to commit: %v", err))
	}

	slog.Info("paths indexed",
		slog.Int("paths", len(paths)),
		slog.Int("indexed", result.IndexedCount),
		slog.Int("errors", len(result.Errors)))
	return result
}

// ApplyBatch applies watcher events in order under exclusive access and
// commits once. A failed event is logged and skipped; a failed commit is
// logged and returned, leaving the mutations pending for the next commit.
func (c *Coordinator) ApplyBatch(_ context.Context, events []watcher.FileEvent) (watcher.BatchStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stats watcher.BatchStats
	for _, event := range events {
		var err error
		switch event.Operation {
		case watcher.OpCreate, watcher.OpModify:
			err = c.index.IndexFile(event.Path)
		case watcher.OpRemove:
			err = c.index.RemoveFile(event.Path)
		default:
			err = fmt.Errorf("unknown operation %d", event.Operation)
		}

		if err != nil {
			stats.Failed++
			applyErr := lferrors.New(lferrors.ErrCodeEventApply, "failed to process file event", err).
				WithDetail("path", event.Path).
				WithDetail("operation", event.Operation.String())
			slog.Warn("failed to process file event", lferrors.LogArgs(applyErr)...)
			continue
		}
		stats.Applied++
	}

	if err := c.index.Commit(); err != nil {
		slog.Warn("failed to commit batch", lferrors.LogArgs(err)...)
		return stats, err
	}
	return stats, nil
}

// Close commits and releases the index.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.Close()
}

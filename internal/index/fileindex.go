// Package index owns the searchable file index: the FileIndex facade over
// the on-disk store and the Coordinator that serializes writers against
// concurrent readers.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/localfiles/internal/document"
	lferrors "github.com/Aman-CERP/localfiles/internal/errors"
	"github.com/Aman-CERP/localfiles/internal/fswalk"
	"github.com/Aman-CERP/localfiles/internal/store"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultWorkers       = 4
	DefaultSnippetWindow = 200
	DefaultSearchLimit   = 10
)

// Options configures Open.
type Options struct {
	// Path is the index directory.
	Path string

	// SchemaVersion is compared against the persisted marker; zero uses
	// store.SchemaVersion.
	SchemaVersion int

	// MaxFileSize is the document size ceiling in bytes.
	MaxFileSize int64

	// Workers bounds parallel document reads during IndexDirectory.
	Workers int

	// SnippetWindow is the snippet width in bytes.
	SnippetWindow int

	// CacheSize is the number of cached search responses; zero disables
	// the cache.
	CacheSize int
}

// Status describes the index.
type Status struct {
	NumFiles      int      `json:"num_files"`
	WatchedPaths  []string `json:"watched_paths"`
	IndexPath     string   `json:"index_path"`
	SchemaVersion int      `json:"schema_version"`
}

// FileIndex is the facade over the store. It tracks which paths are
// indexed and which roots were indexed as directories.
//
// FileIndex is not safe for concurrent use; Coordinator provides the
// locking.
type FileIndex struct {
	store   *store.Store
	codec   *document.Codec
	indexed map[string]struct{}
	roots   []string
	rootSet map[string]struct{}
	workers int
	window  int
	cache   *lru.Cache[cacheKey, *SearchResponse]
}

// Open opens or creates the index at opts.Path and seeds the indexed path
// set from the committed documents.
func Open(ctx context.Context, opts Options) (*FileIndex, error) {
	version := opts.SchemaVersion
	if version == 0 {
		version = store.SchemaVersion
	}

	st, err := store.OpenOrCreate(opts.Path, version)
	if err != nil {
		return nil, err
	}

	fi := &FileIndex{
		store:   st,
		codec:   document.NewCodec(opts.MaxFileSize),
		indexed: make(map[string]struct{}),
		rootSet: make(map[string]struct{}),
		workers: opts.Workers,
		window:  opts.SnippetWindow,
	}
	if fi.workers <= 0 {
		fi.workers = DefaultWorkers
	}
	if fi.window <= 0 {
		fi.window = DefaultSnippetWindow
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[cacheKey, *SearchResponse](opts.CacheSize)
		if err != nil {
			_ = st.Close()
			return nil, lferrors.InternalError("cannot create search cache", err)
		}
		fi.cache = cache
	}

	ids, err := st.AllIDs(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	for _, id := range ids {
		fi.indexed[id] = struct{}{}
	}

	slog.Info("index opened",
		slog.String("path", st.Path()),
		slog.String("reason", string(st.Reason())),
		slog.Int("documents", len(ids)))

	return fi, nil
}

// IndexFile indexes path, replacing any previous document for it.
//
// A file skipped by policy is a successful no-op, except that a stale
// document left from an earlier version of the file is removed. A file
// that cannot be examined is removed from the index and the error is
// returned. Nothing is committed.
func (fi *FileIndex) IndexFile(path string) error {
	abs, err := absPath(path)
	if err != nil {
		return err
	}
	doc, err := fi.codec.Build(abs)
	return fi.apply(abs, doc, err)
}

// apply records the outcome of building abs.
func (fi *FileIndex) apply(abs string, doc *document.Document, buildErr error) error {
	if buildErr != nil {
		fi.forget(abs)
		return lferrors.New(lferrors.ErrCodeFileRead, "cannot index file", buildErr).
			WithDetail("path", abs)
	}
	if doc == nil {
		fi.forget(abs)
		return nil
	}

	fi.store.Delete(abs)
	if err := fi.store.Add(abs, doc.Fields()); err != nil {
		return err
	}
	fi.indexed[abs] = struct{}{}
	return nil
}

// forget removes abs if it is currently indexed.
func (fi *FileIndex) forget(abs string) {
	if _, ok := fi.indexed[abs]; ok {
		fi.store.Delete(abs)
		delete(fi.indexed, abs)
	}
}

// RemoveFile deletes the document for path. When path names a directory
// that no longer exists, every indexed file below it is removed too.
// Removing an unknown path is a no-op. Nothing is committed.
func (fi *FileIndex) RemoveFile(path string) error {
	abs, err := absPath(path)
	if err != nil {
		return err
	}

	fi.store.Delete(abs)
	delete(fi.indexed, abs)

	prefix := abs + string(filepath.Separator)
	for p := range fi.indexed {
		if strings.HasPrefix(p, prefix) {
			fi.store.Delete(p)
			delete(fi.indexed, p)
		}
	}
	return nil
}

// ProgressFunc observes IndexDirectory: done of total files under root
// have been applied. It runs on the indexing goroutine.
type ProgressFunc func(root string, done, total int)

// IndexDirectory walks root, following symlinks, and indexes every
// regular file. Unreadable entries are skipped. It returns the number of
// files visited without error, including files skipped by policy, and
// records root as a watched root. Once the walk starts it runs to
// completion; ctx only carries logging values. Nothing is committed.
func (fi *FileIndex) IndexDirectory(ctx context.Context, root string, progress ProgressFunc) (int, error) {
	abs, err := absPath(root)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return 0, lferrors.PathNotFoundError(root)
	}
	if !info.IsDir() {
		return 0, lferrors.New(lferrors.ErrCodePathNotFound, "not a directory", nil).
			WithDetail("path", abs)
	}

	files := fswalk.Files(abs)
	count := 0
	if progress != nil {
		progress(abs, 0, len(files))
	}

	// Documents are read in parallel one chunk at a time and applied in
	// walk order, so memory stays bounded by the chunk size.
	chunk := fi.workers * 8
	for start := 0; start < len(files); start += chunk {
		end := min(start+chunk, len(files))
		results := fi.buildAll(files[start:end])
		for i, r := range results {
			if err := fi.apply(files[start+i], r.doc, r.err); err != nil {
				slog.DebugContext(ctx, "skipping file", slog.String("path", files[start+i]), slog.String("error", err.Error()))
				continue
			}
			count++
		}
		if progress != nil {
			progress(abs, end, len(files))
		}
	}

	fi.addRoot(abs)
	slog.DebugContext(ctx, "directory indexed", slog.String("root", abs), slog.Int("files", count))
	return count, nil
}

type buildResult struct {
	doc *document.Document
	err error
}

func (fi *FileIndex) buildAll(paths []string) []buildResult {
	results := make([]buildResult, len(paths))

	var g errgroup.Group
	g.SetLimit(fi.workers)
	for i, p := range paths {
		g.Go(func() error {
			doc, err := fi.codec.Build(p)
			results[i] = buildResult{doc: doc, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (fi *FileIndex) addRoot(abs string) {
	if _, ok := fi.rootSet[abs]; ok {
		return
	}
	fi.rootSet[abs] = struct{}{}
	fi.roots = append(fi.roots, abs)
}

// Commit makes every pending mutation durable and visible to Search.
func (fi *FileIndex) Commit() error {
	slog.Debug("committing index", slog.Int("operations", fi.store.Pending()))
	if err := fi.store.Commit(); err != nil {
		return err
	}
	if fi.cache != nil {
		fi.cache.Purge()
	}
	return nil
}

// ReadFile returns the live content of an indexed file. The content may
// differ from what was indexed.
func (fi *FileIndex) ReadFile(path string) (string, error) {
	abs, err := absPath(path)
	if err != nil {
		return "", err
	}
	if _, ok := fi.indexed[abs]; !ok {
		real, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return "", lferrors.NotIndexedError(path)
		}
		if _, ok := fi.indexed[real]; !ok {
			return "", lferrors.NotIndexedError(path)
		}
		abs = real
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", lferrors.New(lferrors.ErrCodeFileRead, "cannot read file", err).
			WithDetail("path", abs)
	}
	return string(data), nil
}

// ListFiles returns the sorted indexed paths whose extension equals ext
// (ignoring case and a leading dot) and whose full path contains
// substring. Empty arguments do not filter.
func (fi *FileIndex) ListFiles(ext, substring string) []string {
	ext = strings.TrimPrefix(ext, ".")

	paths := make([]string, 0, len(fi.indexed))
	for p := range fi.indexed {
		if ext != "" && !strings.EqualFold(document.Extension(p), ext) {
			continue
		}
		if substring != "" && !strings.Contains(p, substring) {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Status reports the indexed file count, watched roots and location.
func (fi *FileIndex) Status() Status {
	return Status{
		NumFiles:      len(fi.indexed),
		WatchedPaths:  append([]string(nil), fi.roots...),
		IndexPath:     fi.store.Path(),
		SchemaVersion: fi.store.Version(),
	}
}

// Close commits pending mutations and releases the store.
func (fi *FileIndex) Close() error {
	commitErr := fi.store.Commit()
	closeErr := fi.store.Close()
	if commitErr != nil {
		return commitErr
	}
	return closeErr
}

func absPath(path string) (string, error) {
	if path == "" {
		return "", lferrors.PathNotFoundError(path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", lferrors.InternalError(fmt.Sprintf("cannot resolve %q", path), err)
	}
	return filepath.Clean(abs), nil
}

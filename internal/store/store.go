// Package store owns the on-disk bleve index: open/create with schema
// migration and corruption recovery, buffered mutations, and commit with
// read-after-write visibility.
//
// A Store is not safe for concurrent mutation. Callers serialize writes
// and keep searches out of a commit's way (see index.Coordinator).
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	lferrors "github.com/Aman-CERP/localfiles/internal/errors"
)

// SchemaVersion is the current document schema. Bump it whenever the
// mapping or the stored field set changes; older indexes are discarded.
const SchemaVersion = 2

// pageSize bounds one page of an ID enumeration.
const pageSize = 1000

// OpenReason explains how OpenOrCreate obtained the index.
type OpenReason string

const (
	// OpenedExisting means a compatible index was reused.
	OpenedExisting OpenReason = "opened"
	// CreatedNew means no index existed at the path.
	CreatedNew OpenReason = "created"
	// RecreatedSchema means the version marker was missing or different.
	RecreatedSchema OpenReason = "schema_mismatch"
	// RecreatedCorrupt means the engine failed to open a matching index.
	RecreatedCorrupt OpenReason = "corrupt"
)

// Hit is one ranked search result with its stored fields.
type Hit struct {
	ID     string
	Score  float64
	Fields map[string]string
}

// Store is a bleve index with a pending mutation batch.
type Store struct {
	path    string
	version int
	index   bleve.Index
	batch   *bleve.Batch
	lock    *dirLock
	reason  OpenReason
}

// OpenOrCreate opens the index stored at path, or creates it.
//
// An existing directory is reused only when its schema_version marker
// equals version and the engine opens cleanly. Otherwise the whole
// directory is removed and recreated. The marker is written after every
// (re)creation. Failures to create or remove the directory are
// StorageErrors.
func OpenOrCreate(path string, version int) (*Store, error) {
	path = filepath.Clean(path)

	lock := newDirLock(path)
	acquired, err := lock.tryLock()
	if err != nil {
		return nil, lferrors.StorageError("cannot lock index directory", err).WithDetail("path", path)
	}
	if !acquired {
		return nil, lferrors.New(lferrors.ErrCodeIndexLocked,
			fmt.Sprintf("index at %s is in use by another process", path), nil).
			WithSuggestion("stop the other localfiles process or set index.path to a different directory")
	}

	s, err := openOrCreate(path, version)
	if err != nil {
		_ = lock.unlock()
		return nil, err
	}
	s.lock = lock
	return s, nil
}

func openOrCreate(path string, version int) (*Store, error) {
	im, err := buildMapping()
	if err != nil {
		return nil, lferrors.InternalError("failed to build index mapping", err)
	}
	enginePath := filepath.Join(path, engineDir)

	reason := CreatedNew
	if _, statErr := os.Stat(path); statErr == nil {
		persisted, ok := readSchemaVersion(path)
		switch {
		case !ok || persisted != version:
			slog.Info("index schema mismatch, recreating",
				slog.String("path", path),
				slog.Int("persisted", persisted),
				slog.Bool("marker_found", ok),
				slog.Int("current", version))
			reason = RecreatedSchema
		default:
			idx, openErr := openEngine(enginePath)
			if openErr == nil {
				return newStore(path, version, idx, OpenedExisting), nil
			}
			slog.Warn("index open failed, recreating",
				slog.String("path", path),
				slog.String("error", openErr.Error()))
			reason = RecreatedCorrupt
		}

		if err := os.RemoveAll(path); err != nil {
			return nil, lferrors.StorageError("cannot remove incompatible index directory", err).
				WithDetail("path", path)
		}
	} else if !os.IsNotExist(statErr) {
		return nil, lferrors.StorageError("cannot stat index directory", statErr).WithDetail("path", path)
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, lferrors.StorageError("cannot create index directory", err).WithDetail("path", path)
	}
	idx, err := bleve.New(enginePath, im)
	if err != nil {
		return nil, lferrors.StorageError("cannot create index", err).WithDetail("path", path)
	}
	if err := writeSchemaVersion(path, version); err != nil {
		_ = idx.Close()
		return nil, lferrors.StorageError("cannot persist schema version", err).WithDetail("path", path)
	}

	slog.Info("index created", slog.String("path", path), slog.String("reason", string(reason)))
	return newStore(path, version, idx, reason), nil
}

func openEngine(enginePath string) (bleve.Index, error) {
	if err := validateEngineIntegrity(enginePath); err != nil {
		return nil, err
	}
	return bleve.Open(enginePath)
}

func newStore(path string, version int, idx bleve.Index, reason OpenReason) *Store {
	return &Store{
		path:    path,
		version: version,
		index:   idx,
		batch:   idx.NewBatch(),
		reason:  reason,
	}
}

// Path returns the storage directory.
func (s *Store) Path() string { return s.path }

// Version returns the schema version the store was opened with.
func (s *Store) Version() int { return s.version }

// Reason reports whether the index was reused, created or recreated.
func (s *Store) Reason() OpenReason { return s.reason }

// Add buffers a document. The ID must be the absolute path.
func (s *Store) Add(id string, fields map[string]string) error {
	doc := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		doc[k] = v
	}
	if err := s.batch.Index(id, doc); err != nil {
		return fmt.Errorf("failed to buffer document %s: %w", id, err)
	}
	return nil
}

// Delete buffers removal of the document with the given path ID.
func (s *Store) Delete(id string) {
	s.batch.Delete(id)
}

// Pending returns the number of buffered operations.
func (s *Store) Pending() int {
	return s.batch.Size()
}

// Commit applies buffered operations durably. When Commit returns nil,
// every later search observes them. On failure the buffer is kept so the
// next Commit re-attempts the same operations.
func (s *Store) Commit() error {
	if s.batch.Size() == 0 {
		return nil
	}
	if err := s.index.Batch(s.batch); err != nil {
		return lferrors.CommitError(err)
	}
	s.batch.Reset()
	return nil
}

// Search runs q and returns up to limit hits by descending score, with
// all stored fields.
func (s *Store) Search(ctx context.Context, q query.Query, limit int) ([]Hit, error) {
	if limit <= 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"*"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, lferrors.New(lferrors.ErrCodeSearchFailed, "search failed", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score, Fields: stringFields(h.Fields)})
	}
	return hits, nil
}

// Scan calls fn for every committed document in ID order, with the
// requested stored fields (nil for none).
func (s *Store) Scan(ctx context.Context, fields []string, fn func(Hit) error) error {
	count, err := s.index.DocCount()
	if err != nil {
		return lferrors.StorageError("cannot count documents", err)
	}

	for from := 0; from < int(count); from += pageSize {
		req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), pageSize, from, false)
		req.Fields = fields
		req.SortBy([]string{"_id"})
		res, err := s.index.SearchInContext(ctx, req)
		if err != nil {
			return lferrors.StorageError("cannot enumerate documents", err)
		}
		if len(res.Hits) == 0 {
			break
		}
		for _, h := range res.Hits {
			if err := fn(Hit{ID: h.ID, Score: h.Score, Fields: stringFields(h.Fields)}); err != nil {
				return err
			}
		}
	}
	return nil
}

// AllIDs enumerates every committed document ID in ID order.
func (s *Store) AllIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.Scan(ctx, nil, func(h Hit) error {
		ids = append(ids, h.ID)
		return nil
	})
	return ids, err
}

// DocCount returns the number of committed documents.
func (s *Store) DocCount() (uint64, error) {
	return s.index.DocCount()
}

// Close closes the engine and releases the directory lock. Pending
// operations that were never committed are discarded.
func (s *Store) Close() error {
	err := s.index.Close()
	if unlockErr := s.lock.unlock(); err == nil && unlockErr != nil {
		err = unlockErr
	}
	return err
}

func stringFields(fields map[string]interface{}) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

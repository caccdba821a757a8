package index

import (
	"context"
	"log/slog"
	"os"
	"sort"

	"github.com/Aman-CERP/localfiles/internal/document"
	"github.com/Aman-CERP/localfiles/internal/store"
)

// ReconcileStats counts what Reconcile changed.
type ReconcileStats struct {
	Checked   int `json:"checked"`
	Removed   int `json:"removed"`
	Reindexed int `json:"reindexed"`
}

// Reconcile brings the index up to date with files changed while nothing
// was watching: vanished files are removed and files whose modification
// time differs from the stored one are re-indexed. It commits once.
func (fi *FileIndex) Reconcile(ctx context.Context) (ReconcileStats, error) {
	var stats ReconcileStats

	stored := make(map[string]string, len(fi.indexed))
	err := fi.store.Scan(ctx, []string{store.FieldLastModified}, func(h store.Hit) error {
		stored[h.ID] = h.Fields[store.FieldLastModified]
		return nil
	})
	if err != nil {
		return stats, err
	}

	paths := make([]string, 0, len(stored))
	for p := range stored {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Checked++

		info, err := os.Stat(p)
		if err != nil {
			fi.store.Delete(p)
			delete(fi.indexed, p)
			stats.Removed++
			continue
		}
		if document.FormatModTime(info) == stored[p] {
			continue
		}
		if err := fi.IndexFile(p); err != nil {
			slog.Warn("reconcile failed to re-index file",
				slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		stats.Reindexed++
	}

	if stats.Removed > 0 || stats.Reindexed > 0 {
		if err := fi.Commit(); err != nil {
			return stats, err
		}
	}

	slog.Info("index reconciled",
		slog.Int("checked", stats.Checked),
		slog.Int("removed", stats.Removed),
		slog.Int("reindexed", stats.Reindexed))
	return stats, nil
}

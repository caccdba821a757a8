package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// dirLock is an exclusive cross-process lock guarding one index directory.
// The lock file lives beside the directory so destructive recreation of
// the directory never removes it.
type dirLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

func newDirLock(indexPath string) *dirLock {
	lockPath := filepath.Clean(indexPath) + ".lock"
	return &dirLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// tryLock acquires the lock without blocking. It reports false if another
// process holds it.
func (l *dirLock) tryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	l.locked = acquired
	return acquired, nil
}

// unlock releases the lock. Safe to call when not held.
func (l *dirLock) unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

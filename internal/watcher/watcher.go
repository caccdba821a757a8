package watcher

import (
	"context"
	"time"
)

// Operation is the kind of change a FileEvent reports.
type Operation int

const (
	// OpCreate means a file appeared.
	OpCreate Operation = iota
	// OpModify means a file's content changed.
	OpModify
	// OpRemove means a file or directory disappeared, including the old
	// name of a rename.
	OpRemove
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpRemove:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is one filesystem change.
type FileEvent struct {
	// Path is the absolute path of the changed file.
	Path string

	// Operation is the kind of change.
	Operation Operation

	// Timestamp is when the event was observed.
	Timestamp time.Time
}

// BatchStats summarizes one applied batch.
type BatchStats struct {
	Applied int
	Failed  int
}

// Applier applies a batch of events atomically with respect to readers.
// The returned error reports a failed commit; per-event failures are
// counted in BatchStats.
type Applier interface {
	ApplyBatch(ctx context.Context, events []FileEvent) (BatchStats, error)
}

// Options configures an FSWatcher.
type Options struct {
	// EventBufferSize is the capacity of the Events channel. A full
	// buffer blocks the watcher until the consumer catches up.
	// Default: 256
	EventBufferSize int
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{EventBufferSize: 256}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = DefaultOptions().EventBufferSize
	}
	return o
}

package watcher

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// IngestorOptions configures batching.
type IngestorOptions struct {
	// Quiescence is how long the stream must be silent before a batch is
	// applied.
	// Default: 500ms
	Quiescence time.Duration

	// MaxWait caps how long a batch may keep growing under a continuous
	// stream of events. Zero disables the cap.
	// Default: 5s
	MaxWait time.Duration
}

// DefaultIngestorOptions returns the default batching options.
func DefaultIngestorOptions() IngestorOptions {
	return IngestorOptions{
		Quiescence: 500 * time.Millisecond,
		MaxWait:    5 * time.Second,
	}
}

// Ingestor debounces a FileEvent stream into batches and hands each batch
// to an Applier.
type Ingestor struct {
	events  <-chan FileEvent
	applier Applier
	opts    IngestorOptions

	batches atomic.Uint64
	applied atomic.Uint64
}

// NewIngestor creates an ingestor reading from events.
func NewIngestor(events <-chan FileEvent, applier Applier, opts IngestorOptions) *Ingestor {
	if opts.Quiescence <= 0 {
		opts.Quiescence = DefaultIngestorOptions().Quiescence
	}
	return &Ingestor{events: events, applier: applier, opts: opts}
}

// Run consumes events until the channel is closed. While idle it blocks
// on the channel; after the first event of a batch it keeps collecting
// until the quiescence window passes with no new event, or MaxWait
// elapses, then applies the batch in arrival order. Events still held
// when the channel closes are applied before Run returns.
func (in *Ingestor) Run(ctx context.Context) {
	for {
		first, ok := <-in.events
		if !ok {
			return
		}

		batch, open := in.collect(first)
		in.apply(ctx, batch)
		if !open {
			return
		}
	}
}

// collect accumulates events after first. It reports whether the channel
// is still open.
func (in *Ingestor) collect(first FileEvent) ([]FileEvent, bool) {
	batch := []FileEvent{first}

	quiet := time.NewTimer(in.opts.Quiescence)
	defer quiet.Stop()

	var capC <-chan time.Time
	if in.opts.MaxWait > 0 {
		capTimer := time.NewTimer(in.opts.MaxWait)
		defer capTimer.Stop()
		capC = capTimer.C
	}

	for {
		select {
		case ev, ok := <-in.events:
			if !ok {
				return batch, false
			}
			batch = append(batch, ev)
			quiet.Reset(in.opts.Quiescence)
		case <-quiet.C:
			return batch, true
		case <-capC:
			return batch, true
		}
	}
}

func (in *Ingestor) apply(ctx context.Context, batch []FileEvent) {
	stats, err := in.applier.ApplyBatch(ctx, batch)
	in.batches.Add(1)
	in.applied.Add(uint64(stats.Applied))

	if err != nil {
		slog.Warn("batch commit failed, will retry with next batch",
			slog.Int("events", len(batch)),
			slog.String("error", err.Error()))
		return
	}
	slog.Debug("batch applied",
		slog.Int("events", len(batch)),
		slog.Int("applied", stats.Applied),
		slog.Int("failed", stats.Failed))
}

// Batches returns the number of batches applied so far.
func (in *Ingestor) Batches() uint64 {
	return in.batches.Load()
}

// AppliedEvents returns the number of events applied without error.
func (in *Ingestor) AppliedEvents() uint64 {
	return in.applied.Load()
}

package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingApplier struct {
	mu      sync.Mutex
	batches [][]FileEvent
	err     error
}

func (r *recordingApplier) ApplyBatch(_ context.Context, events []FileEvent) (BatchStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, append([]FileEvent(nil), events...))
	return BatchStats{Applied: len(events)}, r.err
}

func (r *recordingApplier) snapshot() [][]FileEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]FileEvent(nil), r.batches...)
}

func ev(path string, op Operation) FileEvent {
	return FileEvent{Path: path, Operation: op}
}

func paths(batch []FileEvent) []string {
	out := make([]string, len(batch))
	for i, e := range batch {
		out[i] = e.Path
	}
	return out
}

func runIngestor(t *testing.T, events chan FileEvent, applier Applier, opts IngestorOptions) (*Ingestor, <-chan struct{}) {
	t.Helper()
	in := NewIngestor(events, applier, opts)
	done := make(chan struct{})
	go func() {
		in.Run(context.Background())
		close(done)
	}()
	return in, done
}

func TestIngestor_BurstBecomesOneBatchInArrivalOrder(t *testing.T) {
	// Given: an ingestor with a short quiescence window
	events := make(chan FileEvent, 16)
	applier := &recordingApplier{}
	in, done := runIngestor(t, events, applier, IngestorOptions{Quiescence: 50 * time.Millisecond})

	// When: a burst of events arrives faster than the window
	events <- ev("/a.txt", OpCreate)
	events <- ev("/b.txt", OpModify)
	events <- ev("/a.txt", OpRemove)

	// Then: exactly one batch is applied, in arrival order
	require.Eventually(t, func() bool { return len(applier.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	batch := applier.snapshot()[0]
	assert.Equal(t, []string{"/a.txt", "/b.txt", "/a.txt"}, paths(batch))
	assert.Equal(t, []Operation{OpCreate, OpModify, OpRemove}, []Operation{batch[0].Operation, batch[1].Operation, batch[2].Operation})
	assert.Equal(t, uint64(1), in.Batches())
	assert.Equal(t, uint64(3), in.AppliedEvents())

	close(events)
	<-done
}

func TestIngestor_SeparatedBurstsBecomeSeparateBatches(t *testing.T) {
	// Given: a running ingestor
	events := make(chan FileEvent, 16)
	applier := &recordingApplier{}
	_, done := runIngestor(t, events, applier, IngestorOptions{Quiescence: 30 * time.Millisecond})

	// When: two bursts separated by more than the window
	events <- ev("/first.txt", OpCreate)
	require.Eventually(t, func() bool { return len(applier.snapshot()) == 1 }, 2*time.Second, 5*time.Millisecond)
	events <- ev("/second.txt", OpCreate)
	require.Eventually(t, func() bool { return len(applier.snapshot()) == 2 }, 2*time.Second, 5*time.Millisecond)

	// Then: each burst was its own batch
	got := applier.snapshot()
	assert.Equal(t, []string{"/first.txt"}, paths(got[0]))
	assert.Equal(t, []string{"/second.txt"}, paths(got[1]))

	close(events)
	<-done
}

func TestIngestor_MaxWaitBoundsContinuousStream(t *testing.T) {
	// Given: a quiescence window that a steady stream never satisfies
	events := make(chan FileEvent, 16)
	applier := &recordingApplier{}
	_, done := runIngestor(t, events, applier, IngestorOptions{
		Quiescence: 200 * time.Millisecond,
		MaxWait:    100 * time.Millisecond,
	})

	// When: events keep arriving every 20ms for 400ms
	stop := time.After(400 * time.Millisecond)
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
loop:
	for {
		select {
		case <-stop:
			break loop
		case <-ticker.C:
			events <- ev("/busy.log", OpModify)
		}
	}

	// Then: batches were applied while the stream was still running
	assert.GreaterOrEqual(t, len(applier.snapshot()), 2)

	close(events)
	<-done
}

func TestIngestor_ClosedChannelAppliesPendingAndStops(t *testing.T) {
	// Given: a long quiescence window
	events := make(chan FileEvent, 16)
	applier := &recordingApplier{}
	_, done := runIngestor(t, events, applier, IngestorOptions{Quiescence: time.Hour})

	// When: events are queued and the source closes
	events <- ev("/x.md", OpCreate)
	events <- ev("/y.md", OpCreate)
	close(events)

	// Then: Run returns after applying the held events
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ingestor did not stop after channel close")
	}
	got := applier.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, []string{"/x.md", "/y.md"}, paths(got[0]))
}

func TestIngestor_IdleCloseAppliesNothing(t *testing.T) {
	events := make(chan FileEvent)
	applier := &recordingApplier{}
	_, done := runIngestor(t, events, applier, DefaultIngestorOptions())

	close(events)
	<-done

	assert.Empty(t, applier.snapshot())
}

func TestIngestor_CommitFailureDoesNotStopLoop(t *testing.T) {
	// Given: an applier whose commit always fails
	events := make(chan FileEvent, 4)
	applier := &recordingApplier{err: errors.New("disk full")}
	_, done := runIngestor(t, events, applier, IngestorOptions{Quiescence: 10 * time.Millisecond})

	// When: two separate batches arrive
	events <- ev("/1.txt", OpCreate)
	require.Eventually(t, func() bool { return len(applier.snapshot()) == 1 }, 2*time.Second, 5*time.Millisecond)
	events <- ev("/2.txt", OpCreate)

	// Then: the second batch is still applied
	require.Eventually(t, func() bool { return len(applier.snapshot()) == 2 }, 2*time.Second, 5*time.Millisecond)

	close(events)
	<-done
}

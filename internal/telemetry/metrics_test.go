package telemetry

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatencyToBucket(t *testing.T) {
	tests := []struct {
		latency time.Duration
		want    LatencyBucket
	}{
		{0, BucketUnder10ms},
		{9 * time.Millisecond, BucketUnder10ms},
		{10 * time.Millisecond, BucketUnder50ms},
		{99 * time.Millisecond, BucketUnder100ms},
		{100 * time.Millisecond, BucketUnder500ms},
		{2 * time.Second, BucketSlow},
	}
	for _, tt := range tests {
		t.Run(tt.latency.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, LatencyToBucket(tt.latency))
		})
	}
}

func TestQueryMetrics_CountsOutcomes(t *testing.T) {
	// Given: fresh metrics
	m := New(Config{})

	// When: recording a hit, a miss and a failure
	m.Record(QueryEvent{Query: "retry policy", ResultCount: 3, Latency: time.Millisecond})
	m.Record(QueryEvent{Query: "nothing here", ResultCount: 0, Latency: 20 * time.Millisecond})
	m.Record(QueryEvent{Query: "bad (", Failed: true, Latency: time.Millisecond})

	// Then: each outcome is counted and every request lands in a bucket
	snap := m.Snapshot()
	assert.EqualValues(t, 3, snap.TotalQueries)
	assert.EqualValues(t, 1, snap.ZeroResultCount)
	assert.EqualValues(t, 1, snap.FailedCount)
	assert.EqualValues(t, 2, snap.LatencyDistribution[string(BucketUnder10ms)])
	assert.EqualValues(t, 1, snap.LatencyDistribution[string(BucketUnder50ms)])
	assert.Equal(t, []string{"nothing here"}, snap.RecentZeroResult)
}

func TestQueryMetrics_TopTermsIgnoreQualifiersAndCase(t *testing.T) {
	// Given: repeated terms in mixed case plus a qualifier
	m := New(Config{TopTerms: 2})
	m.Record(QueryEvent{Query: "Pool ext:go", ResultCount: 1})
	m.Record(QueryEvent{Query: "pool retry", ResultCount: 1})
	m.Record(QueryEvent{Query: "retry pool", ResultCount: 1})
	m.Record(QueryEvent{Query: "cache", ResultCount: 1})

	// When: taking a snapshot
	snap := m.Snapshot()

	// Then: the most searched terms come first and qualifiers are not terms
	require.Len(t, snap.TopTerms, 2)
	assert.Equal(t, TermCount{Term: "pool", Count: 3}, snap.TopTerms[0])
	assert.Equal(t, TermCount{Term: "retry", Count: 2}, snap.TopTerms[1])
}

func TestQueryMetrics_RecentZeroResultIsBounded(t *testing.T) {
	m := New(Config{RecentZeroResult: 2})
	for i := 0; i < 5; i++ {
		m.Record(QueryEvent{Query: fmt.Sprintf("q%d", i)})
	}
	assert.Equal(t, []string{"q3", "q4"}, m.Snapshot().RecentZeroResult)
}

func TestQueryMetrics_ConcurrentRecord(t *testing.T) {
	m := New(Config{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Record(QueryEvent{Query: "term", ResultCount: 1})
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.EqualValues(t, 800, snap.TotalQueries)
	assert.Equal(t, []TermCount{{Term: "term", Count: 800}}, snap.TopTerms)
}

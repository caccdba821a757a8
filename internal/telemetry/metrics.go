// Package telemetry keeps in-process counters about search traffic so the
// status tool can report how the index is being queried. Nothing leaves
// the process and nothing is persisted.
package telemetry

import (
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/localfiles/internal/snippet"
)

// LatencyBucket is a latency histogram bucket.
type LatencyBucket string

const (
	BucketUnder10ms  LatencyBucket = "lt_10ms"
	BucketUnder50ms  LatencyBucket = "lt_50ms"
	BucketUnder100ms LatencyBucket = "lt_100ms"
	BucketUnder500ms LatencyBucket = "lt_500ms"
	BucketSlow       LatencyBucket = "gte_500ms"
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	switch ms := d.Milliseconds(); {
	case ms < 10:
		return BucketUnder10ms
	case ms < 50:
		return BucketUnder50ms
	case ms < 100:
		return BucketUnder100ms
	case ms < 500:
		return BucketUnder500ms
	default:
		return BucketSlow
	}
}

// QueryEvent is one search request.
type QueryEvent struct {
	Query       string
	ResultCount int
	Latency     time.Duration
	Failed      bool
}

// TermCount is a query term and how often it was searched.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalQueries        int64            `json:"total_queries"`
	ZeroResultCount     int64            `json:"zero_result_count"`
	FailedCount         int64            `json:"failed_count"`
	LatencyDistribution map[string]int64 `json:"latency_distribution"`
	TopTerms            []TermCount      `json:"top_terms"`
	RecentZeroResult    []string         `json:"recent_zero_result_queries"`
	// Since is when counting started, RFC 3339.
	Since string `json:"since"`
}

// Config bounds the memory QueryMetrics may use.
type Config struct {
	// MaxTerms is how many distinct terms are counted; the least recently
	// searched term is dropped first.
	MaxTerms int
	// TopTerms is how many terms a snapshot reports.
	TopTerms int
	// RecentZeroResult is how many zero-result queries are remembered.
	RecentZeroResult int
}

// DefaultConfig returns the limits used by the server.
func DefaultConfig() Config {
	return Config{MaxTerms: 1000, TopTerms: 10, RecentZeroResult: 20}
}

// QueryMetrics aggregates QueryEvents. It is safe for concurrent use.
type QueryMetrics struct {
	cfg   Config
	since time.Time

	mu       sync.Mutex
	total    int64
	zero     int64
	failed   int64
	latency  map[LatencyBucket]int64
	terms    *lru.Cache[string, int64]
	zeroSeen *ring[string]
}

// New creates QueryMetrics with cfg; zero fields take DefaultConfig values.
func New(cfg Config) *QueryMetrics {
	def := DefaultConfig()
	if cfg.MaxTerms <= 0 {
		cfg.MaxTerms = def.MaxTerms
	}
	if cfg.TopTerms <= 0 {
		cfg.TopTerms = def.TopTerms
	}
	if cfg.RecentZeroResult <= 0 {
		cfg.RecentZeroResult = def.RecentZeroResult
	}

	// Only fails for a non-positive size.
	terms, _ := lru.New[string, int64](cfg.MaxTerms)

	return &QueryMetrics{
		cfg:      cfg,
		since:    time.Now(),
		latency:  make(map[LatencyBucket]int64),
		terms:    terms,
		zeroSeen: newRing[string](cfg.RecentZeroResult),
	}
}

// Record adds one event.
func (m *QueryMetrics) Record(event QueryEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	m.latency[LatencyToBucket(event.Latency)]++
	if event.Failed {
		m.failed++
		return
	}
	if event.ResultCount == 0 {
		m.zero++
		m.zeroSeen.add(event.Query)
	}
	for _, term := range snippet.Terms(event.Query) {
		term = strings.ToLower(term)
		n, _ := m.terms.Get(term)
		m.terms.Add(term, n+1)
	}
}

// Snapshot copies the current counters.
func (m *QueryMetrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	latency := make(map[string]int64, len(m.latency))
	for k, v := range m.latency {
		latency[string(k)] = v
	}

	terms := make([]TermCount, 0, m.terms.Len())
	for _, term := range m.terms.Keys() {
		if n, ok := m.terms.Peek(term); ok {
			terms = append(terms, TermCount{Term: term, Count: n})
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > m.cfg.TopTerms {
		terms = terms[:m.cfg.TopTerms]
	}

	return Snapshot{
		TotalQueries:        m.total,
		ZeroResultCount:     m.zero,
		FailedCount:         m.failed,
		LatencyDistribution: latency,
		TopTerms:            terms,
		RecentZeroResult:    m.zeroSeen.snapshot(),
		Since:               m.since.Format(time.RFC3339),
	}
}

// Package metrics collects the counters of one pipeline run.
package metrics

import (
	"sort"
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsOK           int64
	FeedsFailed       int64
	ItemsFetched      int64
	Reclassified      int64
	Attributed        int64
	DuplicatesRemoved int64
	EnrichAttempted   int64
	EnrichSucceeded   int64
	EnrichFailed      int64
	DigestsGenerated  int64

	// Balance
	BalanceBefore map[string]int
	BalanceAfter  map[string]int

	// Timings
	StartTime time.Time
	Duration  time.Duration
}

func New() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

func (m *Metrics) RecordFeed(items int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.FeedsFailed++
		return
	}
	m.FeedsOK++
	m.ItemsFetched += int64(items)
}

func (m *Metrics) AddReclassified(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reclassified += int64(n)
}

func (m *Metrics) AddAttributed(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Attributed += int64(n)
}

func (m *Metrics) AddDuplicatesRemoved(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesRemoved += int64(n)
}

func (m *Metrics) RecordBalance(before, after map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BalanceBefore = copyCounts(before)
	m.BalanceAfter = copyCounts(after)
}

func (m *Metrics) RecordEnrichment(attempted, succeeded, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnrichAttempted += int64(attempted)
	m.EnrichSucceeded += int64(succeeded)
	m.EnrichFailed += int64(failed)
}

func (m *Metrics) AddDigests(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DigestsGenerated += int64(n)
}

func (m *Metrics) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duration = time.Since(m.StartTime)
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_ok":           m.FeedsOK,
		"feeds_failed":       m.FeedsFailed,
		"items_fetched":      m.ItemsFetched,
		"reclassified":       m.Reclassified,
		"attributed":         m.Attributed,
		"duplicates_removed": m.DuplicatesRemoved,
		"enrich_attempted":   m.EnrichAttempted,
		"enrich_succeeded":   m.EnrichSucceeded,
		"enrich_failed":      m.EnrichFailed,
		"digests_generated":  m.DigestsGenerated,
		"balance_before":     copyCounts(m.BalanceBefore),
		"balance_after":      copyCounts(m.BalanceAfter),
		"duration_ms":        m.Duration.Milliseconds(),
	}
}

// LogArgs flattens the stats into sorted key/value pairs for slog.
func (m *Metrics) LogArgs() []any {
	stats := m.GetStats()
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k, stats[k])
	}
	return args
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

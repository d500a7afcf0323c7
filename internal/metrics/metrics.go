// Package metrics tracks aggregation pipeline counters for the
// monitoring endpoints.
package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ProviderFetches    int64
	ProviderFailures   int64
	ArticlesFetched    int64
	DuplicatesFiltered int64
	FallbackServed     int64
	CacheHits          int64
	CacheMisses        int64

	// Timings
	LastAggregation    time.Duration
	TotalAggregation   time.Duration
	AggregationCount   int64
	AverageAggregation time.Duration

	// Status
	LastRunTime   time.Time
	LastError     string
	LastErrorTime time.Time
	IsHealthy     bool
}

// New returns a fresh metrics instance; it is injected, not global, so
// tests stay isolated.
func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) RecordFetch(failed bool, articles int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProviderFetches++
	if failed {
		m.ProviderFailures++
		return
	}
	m.ArticlesFetched += int64(articles)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
}

func (m *Metrics) AddFallbackServed(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FallbackServed += int64(n)
}

func (m *Metrics) RecordCache(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.CacheHits++
	} else {
		m.CacheMisses++
	}
}

func (m *Metrics) RecordAggregation(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastAggregation = d
	m.TotalAggregation += d
	m.AggregationCount++
	m.AverageAggregation = m.TotalAggregation / time.Duration(m.AggregationCount)
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

// GetStats snapshots all counters for the /metrics endpoint.
func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"provider_fetches":       m.ProviderFetches,
		"provider_failures":      m.ProviderFailures,
		"articles_fetched":       m.ArticlesFetched,
		"duplicates_filtered":    m.DuplicatesFiltered,
		"fallback_served":        m.FallbackServed,
		"cache_hits":             m.CacheHits,
		"cache_misses":           m.CacheMisses,
		"last_aggregation_ms":    m.LastAggregation.Milliseconds(),
		"average_aggregation_ms": m.AverageAggregation.Milliseconds(),
		"last_run_time":          m.LastRunTime.Format(time.RFC3339),
		"last_error":             m.LastError,
		"last_error_time":        m.LastErrorTime.Format(time.RFC3339),
		"is_healthy":             m.IsHealthy,
	}
}

// Package ratelimit enforces per-provider daily request budgets so the
// aggregator stays inside the free tiers of the upstream news APIs.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"habari/internal/logger"
)

// Limiter counts requests per provider against configured daily caps.
// A cap of zero means unlimited.
type Limiter struct {
	mu        sync.Mutex
	limits    map[string]int
	counts    map[string]int
	maxTotal  int
	total     int
	resetTime time.Time
	now       func() time.Time
}

// New creates a Limiter. limits maps provider name to its daily cap;
// maxTotal caps requests across all providers (0 = unlimited).
func New(limits map[string]int, maxTotal int) *Limiter {
	l := &Limiter{
		limits:   make(map[string]int, len(limits)),
		counts:   make(map[string]int, len(limits)),
		maxTotal: maxTotal,
		now:      time.Now,
	}
	for name, limit := range limits {
		l.limits[name] = limit
	}
	l.resetTime = l.now().Add(24 * time.Hour)
	return l
}

// Allow reports whether provider may issue another request.
func (l *Limiter) Allow(provider string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()

	if max := l.limits[provider]; max > 0 && l.counts[provider] >= max {
		logger.Warn("provider daily quota reached", "provider", provider, "limit", max)
		return false
	}
	if l.maxTotal > 0 && l.total >= l.maxTotal {
		logger.Warn("total daily quota reached", "limit", l.maxTotal)
		return false
	}
	return true
}

// Use records one request for provider, failing when over budget.
func (l *Limiter) Use(provider string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()

	if max := l.limits[provider]; max > 0 && l.counts[provider] >= max {
		return fmt.Errorf("provider %s: daily quota of %d exceeded", provider, max)
	}
	if l.maxTotal > 0 && l.total >= l.maxTotal {
		return fmt.Errorf("total daily quota of %d exceeded", l.maxTotal)
	}

	l.counts[provider]++
	l.total++
	return nil
}

// Stats returns current usage per provider.
func (l *Limiter) Stats() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]int, len(l.counts)+1)
	for name, n := range l.counts {
		out[name] = n
	}
	out["_total"] = l.total
	return out
}

// checkReset zeroes the counters once the daily window rolls over.
// Callers must hold the mutex.
func (l *Limiter) checkReset() {
	if l.now().Before(l.resetTime) {
		return
	}
	l.counts = make(map[string]int, len(l.limits))
	l.total = 0
	l.resetTime = l.now().Add(24 * time.Hour)
	logger.Debug("daily request counters reset")
}

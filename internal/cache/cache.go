// Package cache is the in-memory TTL store for aggregated article
// lists. Correctness does not depend on the background sweep: expiry
// is always checked at Get time.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"habari/internal/news"
)

type entry struct {
	articles  []news.Article
	expiresAt time.Time
}

// Store caches aggregated results keyed by (category, limit) or
// (category, provider).
type Store struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// New creates a Store and starts the periodic sweep of expired
// entries. Call Stop when done.
func New(defaultTTL time.Duration) *Store {
	s := &Store{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	go s.sweepLoop(10 * time.Minute)
	return s
}

// Key builds the composite cache key used by the aggregator.
func Key(category news.Category, parts ...string) string {
	if len(parts) == 0 {
		return string(category)
	}
	return string(category) + ":" + strings.Join(parts, ":")
}

// LimitKey is the (category, limit) form of Key.
func LimitKey(category news.Category, limit int) string {
	return Key(category, fmt.Sprintf("limit=%d", limit))
}

// Get returns the cached list, or nil and false once the entry's age
// exceeds its TTL.
func (s *Store) Get(key string) ([]news.Article, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock; Set may have refreshed it.
		if cur, ok := s.entries[key]; ok && s.now().After(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.articles, true
}

// Set stores articles under key with the default TTL.
func (s *Store) Set(key string, articles []news.Article) {
	s.SetWithTTL(key, articles, s.defaultTTL)
}

// SetWithTTL stores articles with an explicit TTL.
func (s *Store) SetWithTTL(key string, articles []news.Article, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{articles: articles, expiresAt: s.now().Add(ttl)}
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stop ends the background sweep.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

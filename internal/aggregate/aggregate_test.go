package aggregate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habari/internal/cache"
	"habari/internal/dedup"
	"habari/internal/fallback"
	"habari/internal/metrics"
	"habari/internal/news"
	"habari/internal/sources"
)

// stubSource is a canned-response Source for pipeline tests.
type stubSource struct {
	name     string
	tier     sources.Tier
	articles []news.Article
	err      error
	delay    time.Duration
	calls    atomic.Int64
}

func (s *stubSource) Name() string                { return s.name }
func (s *stubSource) Tier() sources.Tier          { return s.tier }
func (s *stubSource) Supports(news.Category) bool { return true }

func (s *stubSource) Fetch(ctx context.Context, category news.Category, limit int) ([]news.Article, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.articles, nil
}

func emptyFallback(t *testing.T) *fallback.Set {
	t.Helper()
	fb, err := fallback.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	return fb
}

func loadFallback(t *testing.T, yaml string) *fallback.Set {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fallback.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	fb, err := fallback.Load(path)
	require.NoError(t, err)
	return fb
}

func newAggregator(t *testing.T, fb *fallback.Set, opts Options, srcs ...sources.Source) *Aggregator {
	t.Helper()
	c := cache.New(5 * time.Minute)
	t.Cleanup(c.Stop)
	return New(srcs, dedup.New(dedup.DefaultThresholds()), c, fb, metrics.New(), opts)
}

func article(title, url, source string, age time.Duration) news.Article {
	return news.Article{
		Title:       title,
		URL:         url,
		Source:      source,
		PublishedAt: time.Now().Add(-age),
	}
}

func TestFetchCategorySortsByRecency(t *testing.T) {
	src := &stubSource{name: "stub", articles: []news.Article{
		article("old story", "https://a.com/old", "A", 10*time.Hour),
		article("fresh story", "https://a.com/fresh", "A", time.Hour),
		article("middle story", "https://a.com/mid", "A", 5*time.Hour),
		{Title: "undated story", URL: "https://a.com/undated", Source: "A"},
	}}
	agg := newAggregator(t, emptyFallback(t), Options{}, src)

	got := agg.FetchCategory(context.Background(), news.CategoryWorld, 10)
	require.Len(t, got, 4)
	for i := 1; i < len(got)-1; i++ {
		assert.False(t, got[i-1].PublishedAt.Before(got[i].PublishedAt),
			"publishedAt must be non-increasing")
	}
	assert.Equal(t, "undated story", got[3].Title, "unknown timestamps sort last")
}

func TestFetchCategoryCachesResult(t *testing.T) {
	src := &stubSource{name: "stub", articles: []news.Article{
		article("story", "https://a.com/1", "A", time.Hour),
	}}
	agg := newAggregator(t, emptyFallback(t), Options{}, src)

	first := agg.FetchCategory(context.Background(), news.CategorySports, 50)
	second := agg.FetchCategory(context.Background(), news.CategorySports, 50)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), src.calls.Load(), "second call within TTL must not hit the network")
}

func TestFetchCategoryMergesAcrossSources(t *testing.T) {
	a := &stubSource{name: "a", articles: []news.Article{
		article("Budget passed by assembly", "https://a.com/1", "Outlet A", time.Hour),
	}}
	b := &stubSource{name: "b", tier: sources.TierSecondary, articles: []news.Article{
		article("Completely unrelated story", "https://b.com/1", "Outlet B", 2*time.Hour),
	}}
	agg := newAggregator(t, emptyFallback(t), Options{}, a, b)

	got := agg.FetchCategory(context.Background(), news.CategoryWorld, 10)
	assert.Len(t, got, 2, "results from both tiers are unioned")
}

func TestFetchCategoryIgnoresFailingSource(t *testing.T) {
	ok := &stubSource{name: "ok", articles: []news.Article{
		article("survivor", "https://a.com/1", "A", time.Hour),
	}}
	broken := &stubSource{name: "broken", err: fmt.Errorf("boom")}
	agg := newAggregator(t, emptyFallback(t), Options{}, ok, broken)

	got := agg.FetchCategory(context.Background(), news.CategoryWorld, 10)
	require.Len(t, got, 1)
	assert.Equal(t, "survivor", got[0].Title)
	assert.True(t, agg.Metrics().Healthy(), "one failing source among working ones is not an outage")
}

func TestFetchCategorySlowSourceMissesDeadline(t *testing.T) {
	fast := &stubSource{name: "fast", articles: []news.Article{
		article("fast story", "https://a.com/1", "A", time.Hour),
	}}
	slow := &stubSource{
		name:  "slow",
		tier:  sources.TierSecondary,
		delay: 500 * time.Millisecond,
		articles: []news.Article{
			article("slow story", "https://b.com/1", "B", time.Hour),
		},
	}
	agg := newAggregator(t, emptyFallback(t), Options{
		PrimaryTimeout:   time.Second,
		SecondaryTimeout: 50 * time.Millisecond,
	}, fast, slow)

	started := time.Now()
	got := agg.FetchCategory(context.Background(), news.CategoryWorld, 10)
	require.Len(t, got, 1)
	assert.Equal(t, "fast story", got[0].Title)
	assert.Less(t, time.Since(started), 400*time.Millisecond,
		"aggregation must not wait out the slow source")
}

func TestFetchCategoryAllFailNoFallbackReturnsEmpty(t *testing.T) {
	broken := &stubSource{name: "broken", err: fmt.Errorf("boom")}
	agg := newAggregator(t, emptyFallback(t), Options{}, broken)

	got := agg.FetchCategory(context.Background(), news.CategoryHealth, 10)
	assert.Empty(t, got)
	assert.False(t, agg.Metrics().Healthy(), "total source failure marks the pipeline unhealthy")
}

const sportsFallbackYAML = `
categories:
  sports:
    - {title: "Fallback one", url: "https://fb.example/1", source: "Desk"}
    - {title: "Fallback two", url: "https://fb.example/2", source: "Desk"}
    - {title: "Fallback three", url: "https://fb.example/3", source: "Desk"}
    - {title: "Fallback four", url: "https://fb.example/4", source: "Desk"}
    - {title: "Fallback five", url: "https://fb.example/5", source: "Desk"}
    - {title: "Fallback six", url: "https://fb.example/6", source: "Desk"}
    - {title: "Fallback seven", url: "https://fb.example/7", source: "Desk"}
    - {title: "Fallback eight", url: "https://fb.example/8", source: "Desk"}
`

func TestFallbackTopUpBelowThreshold(t *testing.T) {
	src := &stubSource{name: "thin", articles: []news.Article{
		article("only live story", "https://a.com/1", "A", time.Hour),
		article("second live story", "https://a.com/2", "A", 2*time.Hour),
	}}
	agg := newAggregator(t, loadFallback(t, sportsFallbackYAML), Options{FallbackFraction: 0.6}, src)

	got := agg.FetchCategory(context.Background(), news.CategorySports, 10)
	require.GreaterOrEqual(t, len(got), 6, "list is topped up to at least the configured fraction of the limit")
	assert.Equal(t, "only live story", got[0].Title, "live content stays ahead of fallback")

	fallbackCount := 0
	for _, a := range got {
		if a.Source == "Desk" {
			fallbackCount++
		}
	}
	assert.Equal(t, len(got)-2, fallbackCount)
}

func TestFallbackTopUpKeepsRecencyOrder(t *testing.T) {
	src := &stubSource{name: "stale", articles: []news.Article{
		article("stale live story", "https://a.com/1", "A", 48*time.Hour),
	}}
	agg := newAggregator(t, loadFallback(t, sportsFallbackYAML), Options{FallbackFraction: 0.6}, src)

	got := agg.FetchCategory(context.Background(), news.CategorySports, 10)
	require.Greater(t, len(got), 1)
	assert.Equal(t, "stale live story", got[0].Title)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i-1].PublishedAt.Before(got[i].PublishedAt),
			"publishedAt must stay non-increasing after top-up")
	}
}

func TestFallbackNotServedAboveThreshold(t *testing.T) {
	titles := []string{
		"Harambee Stars name squad for qualifier",
		"Kipchoge confirms marathon return date",
		"Gor Mahia sign striker from Tanzania",
		"Safari Rally route unveiled for next season",
		"Shujaa reach quarter finals in Dubai",
		"Omanyala eyes indoor season record",
		"Kenya Lionesses clinch regional title",
		"Sofapaka appoint new head coach",
	}
	var live []news.Article
	for i, title := range titles {
		live = append(live, article(title,
			fmt.Sprintf("https://a.com/%d", i), "A", time.Duration(i)*time.Hour))
	}
	src := &stubSource{name: "rich", articles: live}
	agg := newAggregator(t, loadFallback(t, sportsFallbackYAML), Options{FallbackFraction: 0.6}, src)

	got := agg.FetchCategory(context.Background(), news.CategorySports, 10)
	for _, a := range got {
		assert.NotEqual(t, "Desk", a.Source, "fallback must not appear above the threshold")
	}
}

func TestKenyaPathPriorityOrderAndClustering(t *testing.T) {
	now := time.Now()
	nation := &stubSource{name: "nation", articles: []news.Article{
		{Title: "Court halts housing levy collection nationwide", URL: "https://n.co/1",
			Source: "Daily Nation", Priority: 1, PublishedAt: now.Add(-2 * time.Hour)},
	}}
	standard := &stubSource{name: "standard", articles: []news.Article{
		{Title: "Court halts housing levy collection temporarily", URL: "https://s.co/1",
			Source: "The Standard", Priority: 2, PublishedAt: now.Add(-time.Hour)},
		{Title: "Tea farmers protest new levy in Kericho", URL: "https://s.co/2",
			Source: "The Standard", Priority: 2, PublishedAt: now.Add(-30 * time.Minute)},
	}}
	blog := &stubSource{name: "blog", tier: sources.TierSecondary, articles: []news.Article{
		{Title: "Completely different viral story", URL: "https://b.co/1",
			Source: "Some Blog", PublishedAt: now.Add(-10 * time.Minute)},
	}}
	agg := newAggregator(t, emptyFallback(t), Options{}, nation, standard, blog)

	got := agg.FetchCategory(context.Background(), news.CategoryKenya, 10)
	require.Len(t, got, 3)

	// Ranked outlets first (priority ascending), unranked last.
	assert.Equal(t, "Daily Nation", got[0].Source)
	assert.Equal(t, 2, got[0].SourceCount, "same-story coverage is clustered")
	assert.ElementsMatch(t, []string{"Daily Nation", "The Standard"}, got[0].MultipleSources)
	assert.Equal(t, "The Standard", got[1].Source)
	assert.Equal(t, "Some Blog", got[2].Source)
}

func TestFetchCategoryDefaultsLimit(t *testing.T) {
	src := &stubSource{name: "stub", articles: []news.Article{
		article("a story", "https://a.com/1", "A", time.Hour),
	}}
	agg := newAggregator(t, emptyFallback(t), Options{DefaultLimit: 5}, src)

	got := agg.FetchCategory(context.Background(), news.CategoryWorld, 0)
	assert.Len(t, got, 1)
	// The zero limit resolved to the default for the cache key too.
	again := agg.FetchCategory(context.Background(), news.CategoryWorld, 5)
	assert.Equal(t, int64(1), src.calls.Load())
	assert.Equal(t, got, again)
}

func TestMetricsRecorded(t *testing.T) {
	src := &stubSource{name: "stub", articles: []news.Article{
		article("story", "https://a.com/1", "A", time.Hour),
		article("story", "https://a.com/1?utm_source=x", "B", time.Hour),
	}}
	agg := newAggregator(t, emptyFallback(t), Options{}, src)

	agg.FetchCategory(context.Background(), news.CategoryWorld, 10)
	stats := agg.Metrics().GetStats()
	assert.Equal(t, int64(1), stats["provider_fetches"])
	assert.Equal(t, int64(1), stats["duplicates_filtered"])
	assert.Equal(t, int64(1), stats["cache_misses"])
}

// Package aggregate orchestrates the fetch pipeline: fan out to every
// registered source for a category, settle all results, deduplicate,
// sort, top up with fallback content and cache.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"habari/internal/cache"
	"habari/internal/dedup"
	"habari/internal/fallback"
	"habari/internal/logger"
	"habari/internal/metrics"
	"habari/internal/news"
	"habari/internal/sources"
)

// Options tunes the aggregator. Zero-value fields take the defaults
// below.
type Options struct {
	PrimaryTimeout   time.Duration
	SecondaryTimeout time.Duration
	FallbackFraction float64
	DefaultLimit     int
}

func (o *Options) fill() {
	if o.PrimaryTimeout <= 0 {
		o.PrimaryTimeout = 5 * time.Second
	}
	if o.SecondaryTimeout <= 0 {
		o.SecondaryTimeout = 3500 * time.Millisecond
	}
	if o.FallbackFraction <= 0 {
		o.FallbackFraction = 0.6
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = 20
	}
}

// Aggregator is constructed once at startup and injected wherever
// article lists are needed; it holds no package-level state.
type Aggregator struct {
	sources  []sources.Source
	deduper  *dedup.Deduper
	cache    *cache.Store
	fallback *fallback.Set
	metrics  *metrics.Metrics
	opts     Options
}

// New assembles an Aggregator from its collaborators.
func New(srcs []sources.Source, d *dedup.Deduper, c *cache.Store, fb *fallback.Set, m *metrics.Metrics, opts Options) *Aggregator {
	opts.fill()
	if m == nil {
		m = metrics.New()
	}
	return &Aggregator{
		sources:  srcs,
		deduper:  d,
		cache:    c,
		fallback: fb,
		metrics:  m,
		opts:     opts,
	}
}

// Metrics exposes the pipeline counters for the monitoring endpoints.
func (a *Aggregator) Metrics() *metrics.Metrics { return a.metrics }

// FetchCategory returns the aggregated, deduplicated article list for
// a category. Individual provider failures never surface: a provider
// that errors or misses its tier deadline simply contributes nothing.
// When everything fails and no fallback content exists the list is
// empty, never an error.
func (a *Aggregator) FetchCategory(ctx context.Context, category news.Category, limit int) []news.Article {
	if limit <= 0 {
		limit = a.opts.DefaultLimit
	}

	key := cache.LimitKey(category, limit)
	if cached, ok := a.cache.Get(key); ok {
		a.metrics.RecordCache(true)
		return cached
	}
	a.metrics.RecordCache(false)

	started := time.Now()
	primary, secondary := a.supporting(category)
	combined := a.gather(ctx, primary, secondary, category, limit)

	before := len(combined)
	unique := a.deduper.Dedupe(combined)
	if category == news.CategoryKenya {
		unique = a.deduper.Cluster(unique)
	}
	a.metrics.AddDuplicatesFiltered(before - len(unique))

	sortArticles(unique, category)
	if len(unique) > limit {
		unique = unique[:limit]
	}

	unique = a.topUp(unique, category, limit)

	a.cache.Set(key, unique)
	a.metrics.RecordAggregation(time.Since(started))
	if before == 0 && len(primary)+len(secondary) > 0 {
		a.metrics.SetError(fmt.Sprintf("no source returned articles for category %s", category))
		logger.Warn("all sources came back empty", "category", category)
	}
	logger.Info("category aggregated",
		"category", category, "fetched", before, "returned", len(unique),
		"took_ms", time.Since(started).Milliseconds())
	return unique
}

type fetchResult struct {
	name     string
	articles []news.Article
	err      error
}

// supporting partitions the registered sources serving a category by
// tier.
func (a *Aggregator) supporting(category news.Category) (primary, secondary []sources.Source) {
	for _, s := range a.sources {
		if !s.Supports(category) {
			continue
		}
		if s.Tier() == sources.TierPrimary {
			primary = append(primary, s)
		} else {
			secondary = append(secondary, s)
		}
	}
	return primary, secondary
}

// gather launches every supporting source concurrently and settles
// both tiers under their own deadlines. A source that answers after
// its tier deadline is ignored, not awaited; the buffered channel lets
// its goroutine finish without leaking.
func (a *Aggregator) gather(ctx context.Context, primary, secondary []sources.Source, category news.Category, limit int) []news.Article {
	pCh := a.collect(ctx, primary, category, limit, a.opts.PrimaryTimeout)
	sCh := a.collect(ctx, secondary, category, limit, a.opts.SecondaryTimeout)

	combined := append(<-pCh, <-sCh...)
	return combined
}

// collect runs one tier: all sources fire at once, results are drained
// until every source settled or the tier deadline elapsed.
func (a *Aggregator) collect(ctx context.Context, srcs []sources.Source, category news.Category, limit int, timeout time.Duration) <-chan []news.Article {
	out := make(chan []news.Article, 1)
	go func() {
		defer close(out)
		if len(srcs) == 0 {
			out <- nil
			return
		}

		tierCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		ch := make(chan fetchResult, len(srcs))
		for _, s := range srcs {
			go func(s sources.Source) {
				articles, err := s.Fetch(tierCtx, category, limit)
				ch <- fetchResult{name: s.Name(), articles: articles, err: err}
			}(s)
		}

		var all []news.Article
	drain:
		for range srcs {
			select {
			case r := <-ch:
				a.metrics.RecordFetch(r.err != nil, len(r.articles))
				if r.err != nil {
					logger.Warn("source fetch failed", "source", r.name, "category", category, "error", r.err)
					continue
				}
				logger.Debug("source fetch ok", "source", r.name, "category", category, "articles", len(r.articles))
				all = append(all, r.articles...)
			case <-tierCtx.Done():
				logger.Debug("tier deadline elapsed", "category", category, "collected", len(all))
				break drain
			}
		}
		out <- all
	}()
	return out
}

// topUp appends fallback content when live results fall below the
// configured fraction of the requested limit. Appended entries are
// re-stamped so they never carry a newer publishedAt than the live
// articles they follow, keeping the list non-increasing by recency.
func (a *Aggregator) topUp(articles []news.Article, category news.Category, limit int) []news.Article {
	minCount := int(a.opts.FallbackFraction * float64(limit))
	if len(articles) >= minCount || !a.fallback.Has(category) {
		return articles
	}

	extra := a.fallback.For(category, limit-len(articles))
	if len(extra) == 0 {
		return articles
	}
	if oldest, ok := oldestKnownTime(articles); ok {
		for i := range extra {
			extra[i].PublishedAt = oldest.Add(-time.Duration(i+1) * time.Hour)
		}
	}
	a.metrics.AddFallbackServed(len(extra))
	logger.Info("serving fallback content", "category", category, "live", len(articles), "fallback", len(extra))
	return append(articles, extra...)
}

func oldestKnownTime(articles []news.Article) (time.Time, bool) {
	var oldest time.Time
	for _, a := range articles {
		if !a.HasKnownTime() {
			continue
		}
		if oldest.IsZero() || a.PublishedAt.Before(oldest) {
			oldest = a.PublishedAt
		}
	}
	return oldest, !oldest.IsZero()
}

// sortArticles orders by recency, with unknown timestamps last. The
// kenya path ranks trusted outlets first and breaks ties by recency.
func sortArticles(articles []news.Article, category news.Category) {
	if category == news.CategoryKenya {
		sort.SliceStable(articles, func(i, j int) bool {
			pi, pj := priorityRank(articles[i].Priority), priorityRank(articles[j].Priority)
			if pi != pj {
				return pi < pj
			}
			return laterFirst(articles[i], articles[j])
		})
		return
	}
	sort.SliceStable(articles, func(i, j int) bool {
		return laterFirst(articles[i], articles[j])
	})
}

// priorityRank maps the zero (unranked) priority after every explicit
// rank.
func priorityRank(p int) int {
	if p == 0 {
		return int(^uint(0) >> 1)
	}
	return p
}

func laterFirst(a, b news.Article) bool {
	if !a.HasKnownTime() {
		return false
	}
	if !b.HasKnownTime() {
		return true
	}
	return a.PublishedAt.After(b.PublishedAt)
}

// Package dedup removes exact and near-duplicate articles from merged
// provider results and clusters same-story coverage across outlets.
package dedup

import (
	"habari/internal/logger"
	"habari/internal/news"
)

// Thresholds holds the tunable knobs of the dedup and clustering
// passes. The zero value is unusable; use DefaultThresholds.
type Thresholds struct {
	// NearDuplicate is the title similarity above which two articles
	// from different sources are treated as the same story.
	NearDuplicate float64

	// ClusterTitle and ClusterDescription are the looser similarity
	// floors used by the clustering pass.
	ClusterTitle       float64
	ClusterDescription float64

	// SignificantWords caps how many content words of a title are
	// compared.
	SignificantWords int

	// ClusterWindowHours bounds how far apart two publications of the
	// same story may be.
	ClusterWindowHours int
}

// DefaultThresholds returns the tuning used in production.
func DefaultThresholds() Thresholds {
	return Thresholds{
		NearDuplicate:      0.80,
		ClusterTitle:       0.70,
		ClusterDescription: 0.80,
		SignificantWords:   6,
		ClusterWindowHours: 24,
	}
}

// Deduper applies the three-stage duplicate filter.
type Deduper struct {
	thresholds Thresholds
}

// New creates a Deduper with the given thresholds.
func New(t Thresholds) *Deduper {
	if t.SignificantWords <= 0 {
		t = DefaultThresholds()
	}
	return &Deduper{thresholds: t}
}

type accepted struct {
	index     int
	normTitle string
	source    string
	authority int
}

// Dedupe filters a merged article list in a single left-to-right scan:
// records missing title or URL are dropped, then exact URL matches,
// exact normalized-title matches, and finally cross-source near
// duplicates. For a near-duplicate pair the article whose outlet has
// the higher authority survives; ties keep the first-seen one.
// Same-source similar titles are deliberately both retained.
func (d *Deduper) Dedupe(articles []news.Article) []news.Article {
	out := make([]news.Article, 0, len(articles))
	seenURLs := make(map[string]bool, len(articles))
	seenTitles := make(map[string]bool, len(articles))
	var kept []accepted

	dropped := 0
	for _, a := range articles {
		if !a.Complete() {
			dropped++
			continue
		}

		u := NormalizeURL(a.URL)
		if seenURLs[u] {
			dropped++
			continue
		}

		title := NormalizeTitle(a.Title)
		if seenTitles[title] {
			dropped++
			continue
		}

		if idx, dup := d.findNearDuplicate(title, a.Source, kept); dup {
			dropped++
			prev := &kept[idx]
			if Authority(a.Source) > prev.authority {
				// The newcomer is more trusted; replace in place.
				seenTitles[prev.normTitle] = false
				seenURLs[NormalizeURL(out[prev.index].URL)] = false
				out[prev.index] = a
				prev.normTitle = title
				prev.source = a.Source
				prev.authority = Authority(a.Source)
				seenURLs[u] = true
				seenTitles[title] = true
			}
			continue
		}

		seenURLs[u] = true
		seenTitles[title] = true
		kept = append(kept, accepted{
			index:     len(out),
			normTitle: title,
			source:    a.Source,
			authority: Authority(a.Source),
		})
		out = append(out, a)
	}

	if dropped > 0 {
		logger.Debug("dedup pass complete", "in", len(articles), "out", len(out), "dropped", dropped)
	}
	return out
}

// findNearDuplicate scans previously accepted titles for a cross-source
// collision above the near-duplicate threshold.
func (d *Deduper) findNearDuplicate(normTitle, source string, kept []accepted) (int, bool) {
	for i := range kept {
		if kept[i].source == source {
			// Intra-source repeats are not merged.
			continue
		}
		sim := TitleSimilarity(normTitle, kept[i].normTitle, d.thresholds.SignificantWords)
		if sim >= d.thresholds.NearDuplicate {
			return i, true
		}
	}
	return 0, false
}

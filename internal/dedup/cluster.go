package dedup

import (
	"time"

	"habari/internal/news"
)

// Cluster groups same-story coverage that survived Dedupe because the
// outlets wrote sufficiently different headlines. It is applied only on
// the kenya path, after Dedupe. Articles published within the window
// whose title similarity clears ClusterTitle or whose description
// similarity clears ClusterDescription are grouped; each group of more
// than one is collapsed to a representative chosen by priority then
// recency, annotated with the outlets that reported the story.
func (d *Deduper) Cluster(articles []news.Article) []news.Article {
	window := time.Duration(d.thresholds.ClusterWindowHours) * time.Hour
	used := make([]bool, len(articles))
	out := make([]news.Article, 0, len(articles))

	for i := range articles {
		if used[i] {
			continue
		}
		used[i] = true
		group := []news.Article{articles[i]}

		ti := NormalizeTitle(articles[i].Title)
		di := NormalizeTitle(articles[i].Description)

		for j := i + 1; j < len(articles); j++ {
			if used[j] {
				continue
			}
			if !withinWindow(articles[i].PublishedAt, articles[j].PublishedAt, window) {
				continue
			}
			titleSim := TitleSimilarity(ti, NormalizeTitle(articles[j].Title), d.thresholds.SignificantWords)
			descSim := 0.0
			if di != "" && articles[j].Description != "" {
				descSim = TitleSimilarity(di, NormalizeTitle(articles[j].Description), d.thresholds.SignificantWords*2)
			}
			if titleSim > d.thresholds.ClusterTitle || descSim > d.thresholds.ClusterDescription {
				used[j] = true
				group = append(group, articles[j])
			}
		}

		out = append(out, representative(group))
	}
	return out
}

// withinWindow tolerates unknown timestamps: an article without a
// parseable time can still join a cluster on text similarity alone.
func withinWindow(a, b time.Time, window time.Duration) bool {
	if a.IsZero() || b.IsZero() {
		return true
	}
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= window
}

// representative collapses a group to its best member: lowest non-zero
// priority first, most recent publication as the tie-break.
func representative(group []news.Article) news.Article {
	if len(group) == 1 {
		return group[0]
	}

	best := group[0]
	for _, a := range group[1:] {
		if betterRepresentative(a, best) {
			best = a
		}
	}

	seen := map[string]bool{}
	sources := make([]string, 0, len(group))
	for _, a := range group {
		if a.Source == "" || seen[a.Source] {
			continue
		}
		seen[a.Source] = true
		sources = append(sources, a.Source)
	}
	best.MultipleSources = sources
	best.SourceCount = len(sources)
	return best
}

func betterRepresentative(a, b news.Article) bool {
	pa, pb := a.Priority, b.Priority
	// Zero means unranked, which sorts after any explicit rank.
	if pa != pb {
		if pa == 0 {
			return false
		}
		if pb == 0 {
			return true
		}
		return pa < pb
	}
	return a.PublishedAt.After(b.PublishedAt)
}

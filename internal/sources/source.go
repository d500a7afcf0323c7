// Package sources contains one client per upstream news provider plus
// the adapters that map provider response shapes onto news.Article.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"habari/internal/news"
	"habari/internal/ratelimit"
)

// Tier groups sources by reliability for the aggregator's staged
// deadlines.
type Tier int

const (
	// TierPrimary sources are fast and broad; they get the longer
	// deadline.
	TierPrimary Tier = iota
	// TierSecondary sources are slower or niche; a shorter deadline
	// keeps them from blocking the page.
	TierSecondary
)

// Source is a client for one upstream provider.
type Source interface {
	// Name returns the provider name used for quotas and logging (not
	// the outlet display name carried on articles).
	Name() string

	// Tier returns the concurrency tier the aggregator awaits this
	// source in.
	Tier() Tier

	// Supports reports whether the source can serve the category.
	Supports(category news.Category) bool

	// Fetch retrieves up to limit articles for a category. Failures
	// are returned as errors; the aggregator logs them and moves on.
	// Every returned article has at least a title and a URL.
	Fetch(ctx context.Context, category news.Category, limit int) ([]news.Article, error)
}

// clamp bounds a requested limit to a provider's hard ceiling.
func clamp(limit, providerMax int) int {
	if limit <= 0 || limit > providerMax {
		return providerMax
	}
	return limit
}

// keep filters out records missing title or URL and nulls invalid
// image URLs, enforcing the Source output guarantee in one place.
func keep(articles []news.Article) []news.Article {
	out := articles[:0]
	for _, a := range articles {
		if !a.Complete() {
			continue
		}
		a.ImageURL = news.ValidImageURL(a.ImageURL)
		out = append(out, a)
	}
	return out
}

// HTTPJSON is the shared GET-and-decode helper used by the REST
// clients. It charges the provider's daily quota before dialing.
type HTTPJSON struct {
	client  *http.Client
	limiter *ratelimit.Limiter
}

func NewHTTPJSON(timeout time.Duration, limiter *ratelimit.Limiter) HTTPJSON {
	return HTTPJSON{
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

func (h HTTPJSON) get(ctx context.Context, provider, url string, v any) error {
	if h.limiter != nil {
		if err := h.limiter.Use(provider); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "habari/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s: unexpected status %d", provider, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s: decode response: %w", provider, err)
	}
	return nil
}

// parseTime tries the timestamp layouts seen across providers.
// Unparseable values come back zero and sort last.
func parseTime(raw string) time.Time {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		time.RFC1123Z,
		time.RFC1123,
	} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Package news defines the normalized article model shared by every
// provider client and the aggregation pipeline.
package news

import (
	"strconv"
	"strings"
	"time"
)

// Category is one of the fixed set of front-page sections.
type Category string

const (
	CategoryLatest        Category = "latest"
	CategoryKenya         Category = "kenya"
	CategoryWorld         Category = "world"
	CategoryEntertainment Category = "entertainment"
	CategoryTechnology    Category = "technology"
	CategoryBusiness      Category = "business"
	CategorySports        Category = "sports"
	CategoryHealth        Category = "health"
	CategoryLifestyle     Category = "lifestyle"
)

// AllCategories returns the categories in display order.
func AllCategories() []Category {
	return []Category{
		CategoryLatest, CategoryKenya, CategoryWorld, CategoryEntertainment,
		CategoryTechnology, CategoryBusiness, CategorySports, CategoryHealth,
		CategoryLifestyle,
	}
}

var displayNames = map[Category]string{
	CategoryLatest:        "Latest News",
	CategoryKenya:         "Kenya News",
	CategoryWorld:         "World News",
	CategoryEntertainment: "Entertainment",
	CategoryTechnology:    "Technology",
	CategoryBusiness:      "Business",
	CategorySports:        "Sports",
	CategoryHealth:        "Health",
	CategoryLifestyle:     "Lifestyle",
}

// DisplayName returns the human-readable section title. Unknown
// categories fall back to a capitalized form of the raw value.
func (c Category) DisplayName() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	s := string(c)
	if s == "" {
		return "News"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := displayNames[c]
	return ok
}

// Article is a single news item normalized across all providers.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`
	Category    Category  `json:"category"`

	// Priority ranks Kenyan outlets for the kenya path; lower is more
	// trusted, zero means unranked.
	Priority int `json:"priority,omitempty"`

	// Set by clustering when several outlets reported the same story.
	MultipleSources []string `json:"multiple_sources,omitempty"`
	SourceCount     int      `json:"source_count,omitempty"`
}

// Complete reports whether the article carries the minimum fields the
// pipeline requires. Incomplete records are dropped before dedup.
func (a Article) Complete() bool {
	return strings.TrimSpace(a.Title) != "" && strings.TrimSpace(a.URL) != ""
}

// HasKnownTime reports whether PublishedAt is usable for ordering.
func (a Article) HasKnownTime() bool {
	return !a.PublishedAt.IsZero()
}

// FormatRelativeTime renders a timestamp the way the front page shows
// it: "Just now", "5m ago", "3h ago", "2d ago", then a plain date.
func FormatRelativeTime(t time.Time) string {
	return formatRelativeTime(t, time.Now())
}

func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m ago"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d.Hours())) + "h ago"
	case d < 7*24*time.Hour:
		return strconv.Itoa(int(d.Hours()/24)) + "d ago"
	default:
		return t.Format("Jan 2, 2006")
	}
}

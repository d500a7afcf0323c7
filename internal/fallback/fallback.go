// Package fallback serves pre-authored articles when live providers
// return too little, so the front page is never empty.
package fallback

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"habari/internal/news"
)

type fallbackArticle struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
	ImageURL    string `yaml:"image_url"`
	Source      string `yaml:"source"`
}

type fallbackFile struct {
	Categories map[string][]fallbackArticle `yaml:"categories"`
}

// Set holds the loaded fallback content per category.
type Set struct {
	byCategory map[news.Category][]news.Article
	loadedAt   time.Time
}

// Load reads fallback content from a YAML file. A missing file is not
// an error; the set is simply empty and the aggregator serves what it
// has.
func Load(path string) (*Set, error) {
	s := &Set{
		byCategory: make(map[news.Category][]news.Article),
		loadedAt:   time.Now(),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var file fallbackFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse fallback config: %w", err)
	}

	for cat, raws := range file.Categories {
		articles := make([]news.Article, 0, len(raws))
		for i, raw := range raws {
			articles = append(articles, news.Article{
				Title:       raw.Title,
				Description: raw.Description,
				URL:         raw.URL,
				ImageURL:    news.ValidImageURL(raw.ImageURL),
				Source:      raw.Source,
				Category:    news.Category(cat),
				// Stamp descending ages so fallback entries keep a
				// stable order after live articles.
				PublishedAt: s.loadedAt.Add(-time.Duration(i+1) * time.Hour),
			})
		}
		s.byCategory[news.Category(cat)] = articles
	}
	return s, nil
}

// For returns up to n fallback articles for a category.
func (s *Set) For(category news.Category, n int) []news.Article {
	articles := s.byCategory[category]
	if n > len(articles) {
		n = len(articles)
	}
	if n <= 0 {
		return nil
	}
	out := make([]news.Article, n)
	copy(out, articles[:n])
	return out
}

// Has reports whether any fallback content exists for the category.
func (s *Set) Has(category news.Category) bool {
	return len(s.byCategory[category]) > 0
}

package sources

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"habari/internal/news"
)

const rssMaxItems = 20

// FeedConfig describes one outlet feed in configs/feeds.yaml.
type FeedConfig struct {
	Name       string   `yaml:"name"`
	URL        string   `yaml:"url"`
	Categories []string `yaml:"categories"`
	Priority   int      `yaml:"priority"`
	Secondary  bool     `yaml:"secondary"`
}

type feedsFile struct {
	Feeds []FeedConfig `yaml:"feeds"`
}

// LoadFeeds reads the outlet feed list from a YAML file.
func LoadFeeds(path string) ([]FeedConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg feedsFile
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse feeds config: %w", err)
	}
	return cfg.Feeds, nil
}

// RSSSource fetches one outlet's RSS/Atom feed via gofeed.
type RSSSource struct {
	cfg        FeedConfig
	categories map[news.Category]bool
	parser     *gofeed.Parser
}

// NewRSSSources builds one source per configured feed.
func NewRSSSources(feeds []FeedConfig) []*RSSSource {
	out := make([]*RSSSource, 0, len(feeds))
	for _, fc := range feeds {
		cats := make(map[news.Category]bool, len(fc.Categories))
		for _, c := range fc.Categories {
			cats[news.Category(c)] = true
		}
		out = append(out, &RSSSource{
			cfg:        fc,
			categories: cats,
			parser:     gofeed.NewParser(),
		})
	}
	return out
}

func (s *RSSSource) Name() string { return "rss:" + s.cfg.Name }

func (s *RSSSource) Tier() Tier {
	if s.cfg.Secondary {
		return TierSecondary
	}
	return TierPrimary
}

func (s *RSSSource) Supports(category news.Category) bool {
	return s.categories[category]
}

func (s *RSSSource) Fetch(ctx context.Context, category news.Category, limit int) ([]news.Article, error) {
	feed, err := s.parser.ParseURLWithContext(s.cfg.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.cfg.Name, err)
	}

	max := clamp(limit, rssMaxItems)
	articles := make([]news.Article, 0, max)
	for _, item := range feed.Items {
		if len(articles) >= max {
			break
		}
		articles = append(articles, s.adapt(item, category))
	}
	return keep(articles), nil
}

// adapt maps a gofeed item onto the common article shape.
func (s *RSSSource) adapt(item *gofeed.Item, category news.Category) news.Article {
	a := news.Article{
		Title:       strings.TrimSpace(item.Title),
		Description: stripHTML(item.Description),
		URL:         item.Link,
		Source:      s.cfg.Name,
		Category:    category,
		Priority:    s.cfg.Priority,
	}
	if item.PublishedParsed != nil {
		a.PublishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		a.PublishedAt = *item.UpdatedParsed
	}
	if item.Image != nil {
		a.ImageURL = item.Image.URL
	} else {
		for _, enc := range item.Enclosures {
			if strings.HasPrefix(enc.Type, "image/") {
				a.ImageURL = enc.URL
				break
			}
		}
	}
	return a
}

// stripHTML drops markup from feed descriptions, which frequently
// embed anchor tags and images.
func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

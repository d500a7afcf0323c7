package sources

import (
	"context"
	"net/url"
	"strconv"

	"habari/internal/news"
)

const mediastackMaxLimit = 25

var mediastackCategories = map[news.Category]string{
	news.CategoryLatest:        "general",
	news.CategoryKenya:         "general",
	news.CategoryWorld:         "general",
	news.CategoryEntertainment: "entertainment",
	news.CategoryTechnology:    "technology",
	news.CategoryBusiness:      "business",
	news.CategorySports:        "sports",
	news.CategoryHealth:        "health",
	news.CategoryLifestyle:     "entertainment",
}

// MediastackSource queries the mediastack live news endpoint. It is a
// supplementary source: slower and noisier than the primaries.
type MediastackSource struct {
	apiKey  string
	baseURL string
	http    HTTPJSON
}

func NewMediastackSource(apiKey string, http HTTPJSON) *MediastackSource {
	return &MediastackSource{
		apiKey:  apiKey,
		baseURL: "https://api.mediastack.com/v1/news",
		http:    http,
	}
}

func (s *MediastackSource) Name() string { return "mediastack" }
func (s *MediastackSource) Tier() Tier   { return TierSecondary }

func (s *MediastackSource) Supports(news.Category) bool { return true }

type mediastackResponse struct {
	Data []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Image       string `json:"image"`
		PublishedAt string `json:"published_at"`
		Source      string `json:"source"`
	} `json:"data"`
}

func (s *MediastackSource) Fetch(ctx context.Context, category news.Category, limit int) ([]news.Article, error) {
	cat, ok := mediastackCategories[category]
	if !ok {
		cat = "general"
	}

	params := url.Values{}
	params.Set("access_key", s.apiKey)
	params.Set("categories", cat)
	params.Set("languages", "en")
	params.Set("limit", strconv.Itoa(clamp(limit, mediastackMaxLimit)))
	if category == news.CategoryKenya {
		params.Set("countries", "ke")
	}

	var resp mediastackResponse
	if err := s.http.get(ctx, s.Name(), s.baseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	articles := make([]news.Article, 0, len(resp.Data))
	for _, raw := range resp.Data {
		source := raw.Source
		if source == "" {
			source = "Mediastack"
		}
		articles = append(articles, news.Article{
			Title:       raw.Title,
			Description: raw.Description,
			URL:         raw.URL,
			ImageURL:    raw.Image,
			PublishedAt: parseTime(raw.PublishedAt),
			Source:      source,
			Category:    category,
		})
	}
	return keep(articles), nil
}

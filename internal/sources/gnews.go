package sources

import (
	"context"
	"net/url"
	"strconv"

	"habari/internal/news"
)

const gnewsMaxArticles = 10

var gnewsCategories = map[news.Category]string{
	news.CategoryLatest:        "general",
	news.CategoryKenya:         "general",
	news.CategoryWorld:         "world",
	news.CategoryEntertainment: "entertainment",
	news.CategoryTechnology:    "technology",
	news.CategoryBusiness:      "business",
	news.CategorySports:        "sports",
	news.CategoryHealth:        "health",
	news.CategoryLifestyle:     "entertainment",
}

// GNewsSource queries gnews.io top headlines. The kenya category is
// served by scoping the country parameter rather than a category.
type GNewsSource struct {
	apiKey  string
	baseURL string
	http    HTTPJSON
}

func NewGNewsSource(apiKey string, http HTTPJSON) *GNewsSource {
	return &GNewsSource{
		apiKey:  apiKey,
		baseURL: "https://gnews.io/api/v4/top-headlines",
		http:    http,
	}
}

func (s *GNewsSource) Name() string { return "gnews" }
func (s *GNewsSource) Tier() Tier   { return TierPrimary }

func (s *GNewsSource) Supports(news.Category) bool { return true }

type gnewsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Image       string `json:"image"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (s *GNewsSource) Fetch(ctx context.Context, category news.Category, limit int) ([]news.Article, error) {
	cat, ok := gnewsCategories[category]
	if !ok {
		cat = "general"
	}

	params := url.Values{}
	params.Set("category", cat)
	params.Set("lang", "en")
	params.Set("max", strconv.Itoa(clamp(limit, gnewsMaxArticles)))
	params.Set("apikey", s.apiKey)
	if category == news.CategoryKenya {
		params.Set("country", "ke")
	}

	var resp gnewsResponse
	if err := s.http.get(ctx, s.Name(), s.baseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	articles := make([]news.Article, 0, len(resp.Articles))
	for _, raw := range resp.Articles {
		source := raw.Source.Name
		if source == "" {
			source = "GNews"
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

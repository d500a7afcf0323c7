package sources

import (
	"context"
	"net/url"
	"strconv"

	"habari/internal/news"
)

const newsAPIMaxPageSize = 25

// NewsAPI category vocabulary differs from ours; unknown categories
// fall back to general.
var newsAPICategories = map[news.Category]string{
	news.CategoryLatest:        "general",
	news.CategoryWorld:         "general",
	news.CategoryEntertainment: "entertainment",
	news.CategoryTechnology:    "technology",
	news.CategoryBusiness:      "business",
	news.CategorySports:        "sports",
	news.CategoryHealth:        "health",
	news.CategoryLifestyle:     "entertainment",
}

// NewsAPISource queries newsapi.org top headlines.
type NewsAPISource struct {
	apiKey  string
	baseURL string
	http    HTTPJSON
}

func NewNewsAPISource(apiKey string, http HTTPJSON) *NewsAPISource {
	return &NewsAPISource{
		apiKey:  apiKey,
		baseURL: "https://newsapi.org/v2/top-headlines",
		http:    http,
	}
}

func (s *NewsAPISource) Name() string { return "newsapi" }
func (s *NewsAPISource) Tier() Tier   { return TierPrimary }

func (s *NewsAPISource) Supports(category news.Category) bool {
	return category != news.CategoryKenya
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (s *NewsAPISource) Fetch(ctx context.Context, category news.Category, limit int) ([]news.Article, error) {
	cat, ok := newsAPICategories[category]
	if !ok {
		cat = "general"
	}

	params := url.Values{}
	params.Set("category", cat)
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(clamp(limit, newsAPIMaxPageSize)))
	params.Set("apiKey", s.apiKey)

	var resp newsAPIResponse
	if err := s.http.get(ctx, s.Name(), s.baseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	articles := make([]news.Article, 0, len(resp.Articles))
	for _, raw := range resp.Articles {
		source := raw.Source.Name
		if source == "" {
			source = "NewsAPI"
		}
		articles = append(articles, news.Article{
			Title:       raw.Title,
			Description: raw.Description,
			URL:         raw.URL,
			ImageURL:    raw.URLToImage,
			PublishedAt: parseTime(raw.PublishedAt),
			Source:      source,
			Category:    category,
		})
	}
	return keep(articles), nil
}

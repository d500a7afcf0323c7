package sources

import (
	"context"
	"net/url"
	"strconv"

	"habari/internal/news"
)

const guardianMaxPageSize = 20

// Guardian sections for our categories; the API uses section slugs
// instead of categories.
var guardianSections = map[news.Category]string{
	news.CategoryLatest:        "news",
	news.CategoryWorld:         "world",
	news.CategoryEntertainment: "culture",
	news.CategoryTechnology:    "technology",
	news.CategoryBusiness:      "business",
	news.CategorySports:        "sport",
	news.CategoryHealth:        "society",
	news.CategoryLifestyle:     "lifeandstyle",
}

// GuardianSource queries the Guardian content API.
type GuardianSource struct {
	apiKey  string
	baseURL string
	http    HTTPJSON
}

func NewGuardianSource(apiKey string, http HTTPJSON) *GuardianSource {
	return &GuardianSource{
		apiKey:  apiKey,
		baseURL: "https://content.guardianapis.com/search",
		http:    http,
	}
}

func (s *GuardianSource) Name() string { return "guardian" }
func (s *GuardianSource) Tier() Tier   { return TierPrimary }

func (s *GuardianSource) Supports(category news.Category) bool {
	_, ok := guardianSections[category]
	return ok
}

type guardianResponse struct {
	Response struct {
		Status  string `json:"status"`
		Results []struct {
			WebTitle           string `json:"webTitle"`
			WebURL             string `json:"webUrl"`
			WebPublicationDate string `json:"webPublicationDate"`
			Fields             struct {
				TrailText string `json:"trailText"`
				Thumbnail string `json:"thumbnail"`
			} `json:"fields"`
		} `json:"results"`
	} `json:"response"`
}

func (s *GuardianSource) Fetch(ctx context.Context, category news.Category, limit int) ([]news.Article, error) {
	section, ok := guardianSections[category]
	if !ok {
		section = "news"
	}

	params := url.Values{}
	params.Set("section", section)
	params.Set("page-size", strconv.Itoa(clamp(limit, guardianMaxPageSize)))
	params.Set("show-fields", "trailText,thumbnail")
	params.Set("api-key", s.apiKey)

	var resp guardianResponse
	if err := s.http.get(ctx, s.Name(), s.baseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	articles := make([]news.Article, 0, len(resp.Response.Results))
	for _, raw := range resp.Response.Results {
		articles = append(articles, news.Article{
			Title:       raw.WebTitle,
			Description: raw.Fields.TrailText,
			URL:         raw.WebURL,
			ImageURL:    raw.Fields.Thumbnail,
			PublishedAt: parseTime(raw.WebPublicationDate),
			Source:      "The Guardian",
			Category:    category,
		})
	}
	return keep(articles), nil
}

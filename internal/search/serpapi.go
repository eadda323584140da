package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"evolve-engine/internal/domain"
)

const serpAPIEndpoint = "https://serpapi.com/search.json"

type SerpAPI struct {
	APIKey    string
	Sites     []string // site: filters OR'ed into the query
	UserAgent string
	Client    *http.Client

	// Endpoint overrides serpAPIEndpoint (tests).
	Endpoint string
}

func (s *SerpAPI) Name() string { return "serpapi" }

type serpResponse struct {
	OrganicResults []struct {
		Link    string `json:"link"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

// Query builds `<keyword> (site:a OR site:b ...)`.
func (s *SerpAPI) Query(keyword string) string {
	filters := make([]string, 0, len(s.Sites))
	for _, site := range s.Sites {
		filters = append(filters, "site:"+site)
	}
	if len(filters) == 0 {
		return keyword
	}
	return fmt.Sprintf("%s (%s)", keyword, strings.Join(filters, " OR "))
}

func (s *SerpAPI) Search(ctx context.Context, keyword string) ([]domain.SearchResult, error) {
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = serpAPIEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("serpapi: endpoint: %w", err)
	}
	u.RawQuery = url.Values{
		"engine":  {"google"},
		"q":       {s.Query(keyword)},
		"api_key": {s.APIKey},
		"num":     {"10"},
	}.Encode()

	b, err := get(ctx, s.Client, s.Name(), keyword, u.String(), s.UserAgent)
	if err != nil {
		return nil, err
	}

	var data serpResponse
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("serpapi: decode: %w", err)
	}

	out := make([]domain.SearchResult, 0, len(data.OrganicResults))
	for _, r := range data.OrganicResults {
		if strings.TrimSpace(r.Link) == "" {
			continue
		}
		out = append(out, domain.SearchResult{
			Link:    r.Link,
			Title:   r.Title,
			Snippet: r.Snippet,
		})
	}
	return out, nil
}

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"evolve-engine/internal/domain"
	"evolve-engine/internal/scrape/util"
)

const redditBase = "https://www.reddit.com"

// Reddit searches one subreddit through its public JSON endpoint.
type Reddit struct {
	Subreddit string
	UserAgent string
	Client    *http.Client
	Limit     int // default 25

	// BaseURL overrides redditBase (tests).
	BaseURL string
}

func (r *Reddit) Name() string { return "reddit" }

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title     string `json:"title"`
				Permalink string `json:"permalink"`
				Selftext  string `json:"selftext"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (r *Reddit) Search(ctx context.Context, keyword string) ([]domain.SearchResult, error) {
	base := r.BaseURL
	if base == "" {
		base = redditBase
	}
	limit := r.Limit
	if limit <= 0 {
		limit = 25
	}

	q := url.Values{
		"q":           {keyword},
		"restrict_sr": {"1"},
		"sort":        {"new"},
		"limit":       {fmt.Sprint(limit)},
	}
	endpoint := fmt.Sprintf("%s/r/%s/search.json?%s", strings.TrimRight(base, "/"), url.PathEscape(r.Subreddit), q.Encode())

	b, err := get(ctx, r.Client, r.Name(), keyword, endpoint, r.UserAgent)
	if err != nil {
		return nil, err
	}

	var listing redditListing
	if err := json.Unmarshal(b, &listing); err != nil {
		return nil, fmt.Errorf("reddit: decode: %w", err)
	}

	out := make([]domain.SearchResult, 0, len(listing.Data.Children))
	for _, c := range listing.Data.Children {
		p := strings.TrimSpace(c.Data.Permalink)
		if p == "" {
			continue
		}
		out = append(out, domain.SearchResult{
			Link:    redditBase + p,
			Title:   c.Data.Title,
			Snippet: util.Ellipsize(util.CleanText(c.Data.Selftext), 300),
		})
	}
	return out, nil
}

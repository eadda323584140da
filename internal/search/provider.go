// Package search finds candidate forum threads for a keyword.
//
// Two providers exist: SerpAPI (Google results restricted to an allow-list
// of forum domains) and Reddit's own subreddit search. Both return results
// in the shared domain.SearchResult shape.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"evolve-engine/internal/config"
	"evolve-engine/internal/domain"
)

// Provider is a search backend.
type Provider interface {
	Name() string
	Search(ctx context.Context, keyword string) ([]domain.SearchResult, error)
}

// Error reports a non-success upstream response.
type Error struct {
	Provider string
	Keyword  string
	Status   int
}

func (e *Error) Error() string {
	return fmt.Sprintf("search failed (%d) for keyword %q", e.Status, e.Keyword)
}

// New returns the provider selected by cfg.Search. client may be nil.
func New(cfg config.Outreach, client *http.Client) (Provider, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	switch cfg.Search {
	case config.SearchSerpAPI:
		return &SerpAPI{
			APIKey:    cfg.SerpAPIKey,
			Sites:     cfg.ForumSites,
			UserAgent: cfg.UserAgent,
			Client:    client,
		}, nil
	case config.SearchReddit:
		return &Reddit{
			Subreddit: cfg.Subreddit,
			UserAgent: cfg.UserAgent,
			Client:    client,
		}, nil
	default:
		return nil, fmt.Errorf("search: unknown provider %q", cfg.Search)
	}
}

func get(ctx context.Context, client *http.Client, provider, keyword, rawURL, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: new request: %w", provider, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := client.Do(req)
	if err != nil {
		// The request URL carries credentials; keep it out of the error.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("%s: http get: %w", provider, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4<<10))
		return nil, &Error{Provider: provider, Keyword: keyword, Status: res.StatusCode}
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", provider, err)
	}
	return b, nil
}

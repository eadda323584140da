package leads

import (
	"context"
	"fmt"
	"strings"

	"evolve-engine/internal/domain"
	"evolve-engine/internal/scrape"
	"evolve-engine/internal/search"

	"go.uber.org/zap"
)

// PageScraper is satisfied by *scrape.Scraper.
type PageScraper interface {
	Scrape(ctx context.Context, link string) scrape.Page
}

type Assembler struct {
	Search        search.Provider
	Scraper       PageScraper
	Keywords      []string
	ExcludeSuffix string // e.g. "@reddit.com"
	Log           *zap.Logger
}

// Gather searches every keyword in order and turns results into leads.
// Threads for which contacted reports true are never scraped or returned.
// A search error aborts gathering.
func (a *Assembler) Gather(ctx context.Context, contacted func(threadURL string) bool) ([]domain.Lead, error) {
	log := a.Log
	if log == nil {
		log = zap.NewNop()
	}
	pages := map[string]scrape.Page{} // one fetch per thread per run

	var out []domain.Lead
	for _, kw := range a.Keywords {
		results, err := a.Search.Search(ctx, kw)
		if err != nil {
			return nil, fmt.Errorf("gather %q: %w", kw, err)
		}
		log.Debug("search results", zap.String("keyword", kw), zap.Int("results", len(results)))

		for _, res := range results {
			if contacted != nil && contacted(res.Link) {
				continue
			}

			page, ok := pages[res.Link]
			if !ok {
				page = a.Scraper.Scrape(ctx, res.Link)
				pages[res.Link] = page
			}

			email := FirstAllowed(page.Emails, a.ExcludeSuffix)
			if email == "" {
				continue
			}

			out = append(out, domain.Lead{
				Keyword:   kw,
				Email:     email,
				ThreadURL: res.Link,
				Title:     firstNonEmpty(page.Title, res.Title),
				Snippet:   firstNonEmpty(page.Summary, res.Snippet),
			})
		}
	}
	return Unique(out), nil
}

// FirstAllowed returns the first address not ending in excludeSuffix
// (compared case-insensitively), or "".
func FirstAllowed(emails []string, excludeSuffix string) string {
	suffix := strings.ToLower(excludeSuffix)
	for _, e := range emails {
		if suffix != "" && strings.HasSuffix(strings.ToLower(e), suffix) {
			continue
		}
		return e
	}
	return ""
}

// Unique drops every lead whose (thread URL, email) pair was already seen,
// keeping encounter order.
func Unique(leads []domain.Lead) []domain.Lead {
	seen := make(map[string]bool, len(leads))
	out := make([]domain.Lead, 0, len(leads))
	for _, l := range leads {
		k := l.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, l)
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

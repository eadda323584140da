package leads

import (
	"context"
	"errors"
	"testing"

	"evolve-engine/internal/domain"
	"evolve-engine/internal/scrape"
	"evolve-engine/internal/search"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearch struct {
	results map[string][]domain.SearchResult
	errOn   string
	calls   []string
}

func (f *fakeSearch) Name() string { return "fake" }

func (f *fakeSearch) Search(_ context.Context, kw string) ([]domain.SearchResult, error) {
	f.calls = append(f.calls, kw)
	if kw == f.errOn {
		return nil, &search.Error{Provider: "fake", Keyword: kw, Status: 500}
	}
	return f.results[kw], nil
}

type fakeScraper struct {
	pages map[string]scrape.Page
	calls []string
}

func (f *fakeScraper) Scrape(_ context.Context, link string) scrape.Page {
	f.calls = append(f.calls, link)
	return f.pages[link]
}

func TestGatherBuildsLeadsInKeywordOrder(t *testing.T) {
	s := &fakeSearch{results: map[string][]domain.SearchResult{
		"kw1": {
			{Link: "https://f.com/a", Title: "search title A", Snippet: "search snippet A"},
			{Link: "https://f.com/none", Title: "no email"},
		},
		"kw2": {
			{Link: "https://f.com/b", Title: "search title B", Snippet: "search snippet B"},
		},
	}}
	sc := &fakeScraper{pages: map[string]scrape.Page{
		"https://f.com/a":    {Emails: []string{"mod@reddit.com", "owner@a.com"}, Title: "Page A", Summary: "summary A"},
		"https://f.com/none": {Title: "nothing"},
		"https://f.com/b":    {Emails: []string{"b@b.com"}},
	}}

	a := &Assembler{Search: s, Scraper: sc, Keywords: []string{"kw1", "kw2"}, ExcludeSuffix: "@reddit.com"}
	got, err := a.Gather(context.Background(), nil)
	require.NoError(t, err)

	want := []domain.Lead{
		{Keyword: "kw1", Email: "owner@a.com", ThreadURL: "https://f.com/a", Title: "Page A", Snippet: "summary A"},
		{Keyword: "kw2", Email: "b@b.com", ThreadURL: "https://f.com/b", Title: "search title B", Snippet: "search snippet B"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("leads mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"kw1", "kw2"}, s.calls)
}

func TestGatherSkipsContactedThreads(t *testing.T) {
	s := &fakeSearch{results: map[string][]domain.SearchResult{
		"kw": {{Link: "https://f.com/old"}, {Link: "https://f.com/new"}},
	}}
	sc := &fakeScraper{pages: map[string]scrape.Page{
		"https://f.com/old": {Emails: []string{"old@x.com"}},
		"https://f.com/new": {Emails: []string{"new@x.com"}},
	}}
	contacted := map[string]bool{"https://f.com/old": true}

	a := &Assembler{Search: s, Scraper: sc, Keywords: []string{"kw"}}
	got, err := a.Gather(context.Background(), func(u string) bool { return contacted[u] })
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "https://f.com/new", got[0].ThreadURL)
	assert.NotContains(t, sc.calls, "https://f.com/old", "contacted thread must not even be scraped")
}

func TestGatherDedupesAcrossKeywordsAndScrapesOnce(t *testing.T) {
	s := &fakeSearch{results: map[string][]domain.SearchResult{
		"kw1": {{Link: "https://f.com/t"}},
		"kw2": {{Link: "https://f.com/t"}},
	}}
	sc := &fakeScraper{pages: map[string]scrape.Page{
		"https://f.com/t": {Emails: []string{"x@y.com"}},
	}}

	a := &Assembler{Search: s, Scraper: sc, Keywords: []string{"kw1", "kw2"}}
	got, err := a.Gather(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "kw1", got[0].Keyword, "first occurrence wins")
	assert.Equal(t, []string{"https://f.com/t"}, sc.calls)
}

func TestGatherSearchErrorAborts(t *testing.T) {
	s := &fakeSearch{errOn: "kw2", results: map[string][]domain.SearchResult{
		"kw1": {{Link: "https://f.com/a"}},
	}}
	sc := &fakeScraper{pages: map[string]scrape.Page{"https://f.com/a": {Emails: []string{"a@a.com"}}}}

	a := &Assembler{Search: s, Scraper: sc, Keywords: []string{"kw1", "kw2", "kw3"}}
	got, err := a.Gather(context.Background(), nil)

	var se *search.Error
	require.True(t, errors.As(err, &se))
	assert.Nil(t, got)
	assert.Equal(t, []string{"kw1", "kw2"}, s.calls)
}

func TestUniqueKeepsFirstOccurrence(t *testing.T) {
	in := []domain.Lead{
		{ThreadURL: "u1", Email: "a@x.com", Keyword: "first"},
		{ThreadURL: "u2", Email: "a@x.com"},
		{ThreadURL: "u1", Email: "b@x.com"},
		{ThreadURL: "u1", Email: "a@x.com", Keyword: "second"},
	}
	got := Unique(in)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Keyword)
	assert.Equal(t, "u2", got[1].ThreadURL)
	assert.Equal(t, "b@x.com", got[2].Email)
}

func TestFirstAllowed(t *testing.T) {
	assert.Equal(t, "", FirstAllowed([]string{"a@Reddit.com"}, "@reddit.com"))
	assert.Equal(t, "b@c.com", FirstAllowed([]string{"a@reddit.com", "b@c.com"}, "@reddit.com"))
	assert.Equal(t, "a@reddit.com", FirstAllowed([]string{"a@reddit.com"}, ""))
	assert.Equal(t, "", FirstAllowed(nil, "@reddit.com"))
}

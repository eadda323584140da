package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestScrapeExtractsPage(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Need help with leads</title></head>
<body><p>Email me: owner@bakery.com</p></body></html>`))
	}))
	defer srv.Close()

	s := New(Config{UserAgent: "test-agent/1.0"}, nil, zap.NewNop())
	page := s.Scrape(context.Background(), srv.URL)

	assert.Equal(t, "test-agent/1.0", gotUA)
	assert.Equal(t, []string{"owner@bakery.com"}, page.Emails)
	assert.Equal(t, "Need help with leads", page.Title)
	assert.Contains(t, page.Summary, "Email me: owner@bakery.com")
}

func TestScrapeServerErrorLogsWarningAndReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom contact@nope.com", http.StatusInternalServerError)
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	s := New(Config{}, nil, zap.New(core))

	page := s.Scrape(context.Background(), srv.URL)
	assert.Equal(t, Page{}, page)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "skipping thread", entry.Message)
	assert.Equal(t, srv.URL, entry.ContextMap()["url"])
	assert.Contains(t, entry.ContextMap()["error"], "500")
}

func TestScrapeUnreachableReturnsEmpty(t *testing.T) {
	s := New(Config{}, nil, zap.NewNop())
	assert.Equal(t, Page{}, s.Scrape(context.Background(), "http://127.0.0.1:1/thread"))
}

func TestScrapeRespectsMaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<p>early@ok.com</p>" + string(make([]byte, 64)) + "late@cut.com"))
	}))
	defer srv.Close()

	s := New(Config{MaxBytes: 32}, nil, zap.NewNop())
	page := s.Scrape(context.Background(), srv.URL)
	assert.Equal(t, []string{"early@ok.com"}, page.Emails)
}

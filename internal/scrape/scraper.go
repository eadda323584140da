package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"evolve-engine/internal/scrape/util"

	"go.uber.org/zap"
)

// Page is what a thread yields. The zero Page means "no data".
type Page struct {
	Emails  []string
	Title   string
	Summary string
}

type Config struct {
	UserAgent    string
	Timeout      time.Duration // default 20s
	SummaryLimit int           // default 420
	MaxBytes     int64         // default 5MB
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
	}
	if c.SummaryLimit <= 0 {
		c.SummaryLimit = 420
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 5 << 20
	}
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
	log     *zap.Logger
}

// New builds a Scraper. limiter may be nil.
func New(cfg Config, limiter *util.HostLimiter, log *zap.Logger) *Scraper {
	cfg.defaults()
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		log:     log.Named("scrape"),
	}
}

// Scrape fetches link and extracts contact data. Failures are logged and
// yield an empty Page so one bad thread never stops the batch.
func (s *Scraper) Scrape(ctx context.Context, link string) Page {
	page, err := s.fetch(ctx, link)
	if err != nil {
		s.log.Warn("skipping thread", zap.String("url", link), zap.Error(err))
		return Page{}
	}
	s.log.Debug("scraped thread",
		zap.String("url", link),
		zap.Int("emails", len(page.Emails)),
		zap.String("title", page.Title))
	return page
}

func (s *Scraper) fetch(ctx context.Context, link string) (Page, error) {
	if err := s.limiter.WaitURL(ctx, link); err != nil {
		return Page{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return Page{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	res, err := s.hc.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("http get: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Page{}, fmt.Errorf("scrape failed (%d) for %s", res.StatusCode, link)
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, s.cfg.MaxBytes))
	if err != nil {
		return Page{}, fmt.Errorf("read body: %w", err)
	}
	body := string(b)

	return Page{
		Emails:  ExtractEmails(body),
		Title:   ExtractTitle(body),
		Summary: Summarize(body, s.cfg.SummaryLimit),
	}, nil
}

package outreach

import (
	"io"
	"net/http"
	"time"

	"evolve-engine/internal/compose"
	"evolve-engine/internal/config"
	"evolve-engine/internal/delivery"
	"evolve-engine/internal/leads"
	"evolve-engine/internal/scrape"
	"evolve-engine/internal/scrape/util"
	"evolve-engine/internal/search"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Build wires a Runner from an already normalized configuration.
// Previews go to out.
func Build(cfg config.Outreach, out io.Writer, log *zap.Logger) (*Runner, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	provider, err := search.New(cfg, client)
	if err != nil {
		return nil, err
	}
	backend, err := delivery.New(cfg, client, log)
	if err != nil {
		return nil, err
	}

	scraper := scrape.New(scrape.Config{
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.ScrapeTimeout,
		SummaryLimit: cfg.SummaryLimit,
	}, util.NewHostLimiter(1, 2), log)

	r := &Runner{
		Gatherer: &leads.Assembler{
			Search:        provider,
			Scraper:       scraper,
			Keywords:      cfg.Keywords,
			ExcludeSuffix: cfg.ExcludeSuffix,
			Log:           log.Named("leads"),
		},
		Composer:      compose.Composer{FromName: cfg.FromName},
		Backend:       backend,
		Preview:       delivery.NewPreview(out),
		StatePath:     cfg.StatePath(),
		DryRun:        cfg.DryRun,
		DryRunRecords: cfg.DryRunRecords,
		MaxEmails:     cfg.MaxEmails,
		ReplyTo:       cfg.ReplyTo,
		Log:           log.Named("outreach"),
	}
	if cfg.SendPerMinute > 0 {
		r.Pace = rate.NewLimiter(rate.Limit(cfg.SendPerMinute/60), 1)
	}
	return r, nil
}

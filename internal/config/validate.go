package config

import (
	"fmt"
	"strings"
)

// ConfigurationError lists every setting that is missing or malformed.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "config validation failed:\n- " + strings.Join(e.Problems, "\n- ")
}

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err returns the collected errors as a *ConfigurationError, or nil.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return &ConfigurationError{Problems: v.Errors}
}

// NormalizeOutreach trims and dedupes list settings and checks that every
// credential the selected search/delivery variants need is present.
// Delivery credentials are only required outside dry-run.
func NormalizeOutreach(cfg Outreach) (Outreach, Validation) {
	out := cfg
	var res Validation

	out.Keywords = trimList(out.Keywords)
	out.ForumSites = trimList(out.ForumSites)
	out.ExcludeSuffix = strings.ToLower(strings.TrimSpace(out.ExcludeSuffix))

	if len(out.Keywords) == 0 {
		res.addErr("at least one keyword is required")
	}
	if out.MaxEmails < 0 {
		res.addErr("OUTREACH_MAX_EMAILS must be >= 0")
	} else if out.MaxEmails == 0 {
		res.addWarn("OUTREACH_MAX_EMAILS is 0; no lead will be processed")
	}
	if out.SendPerMinute < 0 {
		res.addErr("OUTREACH_SEND_PER_MINUTE must be >= 0")
	}
	if out.SummaryLimit <= 0 {
		res.addErr("OUTREACH_SUMMARY_LIMIT must be > 0")
	}

	switch out.Search {
	case SearchSerpAPI:
		if out.SerpAPIKey == "" {
			res.addErr("missing required env var: SERPAPI_API_KEY")
		}
		if len(out.ForumSites) == 0 {
			res.addErr("serpapi search needs at least one forum site")
		}
	case SearchReddit:
		if strings.TrimSpace(out.Subreddit) == "" {
			res.addErr("missing required env var: OUTREACH_SUBREDDIT")
		}
	default:
		res.addErr("OUTREACH_SEARCH must be serpapi or reddit (got %q)", out.Search)
	}

	switch out.Delivery {
	case DeliverySendGrid, DeliverySMTP, DeliveryLog:
	default:
		res.addErr("OUTREACH_DELIVERY must be sendgrid, smtp or log (got %q)", out.Delivery)
	}

	if !out.DryRun {
		switch out.Delivery {
		case DeliverySendGrid:
			if out.SendGridAPIKey == "" {
				res.addErr("missing required env var: SENDGRID_API_KEY")
			}
			if out.FromEmail == "" {
				res.addErr("missing required env var: OUTREACH_FROM_EMAIL")
			}
		case DeliverySMTP:
			if out.SMTP.Host == "" {
				res.addErr("missing required env var: OUTREACH_SMTP_HOST")
			}
			if out.SMTP.Port <= 0 || out.SMTP.Port > 65535 {
				res.addErr("OUTREACH_SMTP_PORT must be 1..65535")
			}
			if out.SMTP.Username == "" || out.SMTP.Password == "" {
				res.addErr("missing required env var: OUTREACH_SMTP_USERNAME/OUTREACH_SMTP_PASSWORD")
			}
			if out.FromEmail == "" {
				res.addErr("missing required env var: OUTREACH_FROM_EMAIL")
			}
		}
	} else if out.DryRunRecords {
		res.addWarn("dry-run will mark previewed threads as contacted (OUTREACH_DRY_RUN_RECORDS=true)")
	}

	return out, res
}

// ValidateIMAP checks the settings the reply tracker needs.
func ValidateIMAP(cfg Outreach) error {
	var res Validation
	if strings.TrimSpace(cfg.IMAP.Host) == "" {
		res.addErr("missing required env var: OUTREACH_IMAP_HOST")
	}
	if strings.TrimSpace(cfg.IMAP.Username) == "" {
		res.addErr("missing required env var: OUTREACH_IMAP_USERNAME")
	}
	if cfg.IMAP.Password == "" {
		res.addErr("missing required env var: OUTREACH_IMAP_PASSWORD")
	}
	return res.Err()
}

func NormalizeServer(cfg Server) (Server, Validation) {
	out := cfg
	var res Validation

	switch out.Backend {
	case BackendNotify:
		if out.SendGridAPIKey == "" {
			res.addWarn("SENDGRID_API_KEY missing; consultation requests will fail with 500")
		}
		if !out.Twilio.Enabled() {
			res.addWarn("Twilio settings incomplete; SMS alerts disabled")
		}
	case BackendStore:
	default:
		res.addErr("CONSULTATION_BACKEND must be notify or store (got %q)", out.Backend)
	}
	if strings.TrimSpace(out.Addr) == "" {
		res.addErr("ENGINE_ADDR is required")
	}
	return out, res
}

func trimList(xs []string) []string {
	seen := map[string]bool{}
	var ys []string
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		key := strings.ToLower(x)
		if seen[key] {
			continue
		}
		seen[key] = true
		ys = append(ys, x)
	}
	return ys
}

// internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type SearchKind string

const (
	SearchSerpAPI SearchKind = "serpapi"
	SearchReddit  SearchKind = "reddit"
)

type DeliveryKind string

const (
	DeliverySendGrid DeliveryKind = "sendgrid"
	DeliverySMTP     DeliveryKind = "smtp"
	DeliveryLog      DeliveryKind = "log"
)

const (
	UserAgent = "evolve-prospect-bot/1.0 (+contact: outreach)"

	StateFileName = "prospect-state.json"
)

var DefaultKeywords = []string{
	"looking for marketing help",
	"need help automating my business",
	"recommend automation agency",
	"looking for website redesign for my business",
	"small business lead generation help",
}

var DefaultForumSites = []string{
	"reddit.com/r/smallbusiness",
	"www.reddit.com/r/smallbusiness",
	"small-business-forum.net",
	"www.small-business-forum.net",
	"warriorforum.com",
	"www.warriorforum.com",
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Addr returns host:port for the relay.
func (s SMTP) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type IMAP struct {
	Host     string
	Port     int
	Username string
	Password string
	Mailbox  string
}

func (i IMAP) Addr() string {
	if strings.Contains(i.Host, ":") {
		return i.Host
	}
	return fmt.Sprintf("%s:%d", i.Host, i.Port)
}

// Outreach holds everything the prospect bot needs. It is built once in main
// and handed to components; nothing below main reads the environment.
type Outreach struct {
	Search   SearchKind
	Delivery DeliveryKind

	DryRun        bool
	DryRunRecords bool // dry-run still marks threads contacted
	MaxEmails     int
	SendPerMinute float64

	FromEmail string
	FromName  string
	ReplyTo   string

	SerpAPIKey     string
	SendGridAPIKey string
	SMTP           SMTP
	IMAP           IMAP

	Keywords      []string
	ForumSites    []string
	Subreddit     string
	ExcludeSuffix string

	UserAgent     string
	SummaryLimit  int
	ScrapeTimeout time.Duration

	DataDir    string
	ConfigPath string
}

func (o Outreach) StatePath() string {
	return filepath.Join(o.DataDir, StateFileName)
}

// Getenv is the lookup used by the loaders; main passes secrets.Getenv so
// credentials can come from the OS keychain.
type Getenv func(key string) string

// LoadOutreach reads the bot configuration. Malformed numbers and booleans
// are reported together as a *ConfigurationError.
func LoadOutreach(getenv Getenv) (Outreach, error) {
	p := parser{getenv: getenv}

	cfg := Outreach{
		Search:        SearchKind(strings.ToLower(p.str("OUTREACH_SEARCH", string(SearchSerpAPI)))),
		Delivery:      DeliveryKind(strings.ToLower(p.str("OUTREACH_DELIVERY", string(DeliverySendGrid)))),
		DryRun:        p.boolean("OUTREACH_DRY_RUN", true),
		DryRunRecords: p.boolean("OUTREACH_DRY_RUN_RECORDS", false),
		MaxEmails:     p.integer("OUTREACH_MAX_EMAILS", 5),
		SendPerMinute: p.float("OUTREACH_SEND_PER_MINUTE", 0),

		FromEmail: p.str("OUTREACH_FROM_EMAIL", ""),
		FromName:  p.str("OUTREACH_FROM_NAME", "Outreach Bot"),

		SerpAPIKey:     p.str("SERPAPI_API_KEY", ""),
		SendGridAPIKey: p.str("SENDGRID_API_KEY", ""),
		SMTP: SMTP{
			Host:     p.str("OUTREACH_SMTP_HOST", ""),
			Port:     p.integer("OUTREACH_SMTP_PORT", 587),
			Username: p.str("OUTREACH_SMTP_USERNAME", ""),
			Password: p.str("OUTREACH_SMTP_PASSWORD", ""),
		},
		IMAP: IMAP{
			Host:     p.str("OUTREACH_IMAP_HOST", ""),
			Port:     p.integer("OUTREACH_IMAP_PORT", 993),
			Username: p.str("OUTREACH_IMAP_USERNAME", ""),
			Password: p.str("OUTREACH_IMAP_PASSWORD", ""),
			Mailbox:  p.str("OUTREACH_IMAP_MAILBOX", "INBOX"),
		},

		Keywords:      append([]string(nil), DefaultKeywords...),
		ForumSites:    append([]string(nil), DefaultForumSites...),
		Subreddit:     p.str("OUTREACH_SUBREDDIT", "smallbusiness"),
		ExcludeSuffix: p.str("OUTREACH_EXCLUDE_SUFFIX", "@reddit.com"),

		UserAgent:     UserAgent,
		SummaryLimit:  p.integer("OUTREACH_SUMMARY_LIMIT", 420),
		ScrapeTimeout: p.duration("OUTREACH_SCRAPE_TIMEOUT", 20*time.Second),

		DataDir:    p.str("OUTREACH_DATA_DIR", "."),
		ConfigPath: p.str("OUTREACH_CONFIG", ""),
	}
	cfg.ReplyTo = p.str("OUTREACH_REPLY_TO", cfg.FromEmail)

	if len(p.problems) > 0 {
		return cfg, &ConfigurationError{Problems: p.problems}
	}
	return cfg, nil
}

type parser struct {
	getenv   Getenv
	problems []string
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) boolean(key string, def bool) bool {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.problems = append(p.problems, fmt.Sprintf("%s must be true or false (got %q)", key, v))
		return def
	}
	return b
}

func (p *parser) integer(key string, def int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.problems = append(p.problems, fmt.Sprintf("%s must be an integer (got %q)", key, v))
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.problems = append(p.problems, fmt.Sprintf("%s must be a number (got %q)", key, v))
		return def
	}
	return f
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.problems = append(p.problems, fmt.Sprintf("%s must be a duration like 20s (got %q)", key, v))
		return def
	}
	return d
}

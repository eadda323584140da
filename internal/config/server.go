package config

import "strings"

type ConsultationBackend string

const (
	BackendNotify ConsultationBackend = "notify"
	BackendStore  ConsultationBackend = "store"
)

type Twilio struct {
	AccountSID string
	AuthToken  string
	From       string
}

// Enabled reports whether all three Twilio settings are present.
func (t Twilio) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.From != ""
}

// Server configures cmd/engine.
type Server struct {
	Addr     string
	DataDir  string
	LogLevel string

	Backend ConsultationBackend

	MailTo         string
	MailFrom       string
	SMSTo          string
	SendGridAPIKey string
	Twilio         Twilio

	PricingPath string

	// ShutdownToken guards POST /shutdown; main generates one when empty.
	ShutdownToken string
}

func LoadServer(getenv Getenv) (Server, error) {
	p := parser{getenv: getenv}

	mailTo := p.str("MAIL_TO", "evolveteamaidan@gmail.com")
	cfg := Server{
		Addr:     p.str("ENGINE_ADDR", "127.0.0.1:38471"),
		DataDir:  p.str("ENGINE_DATA_DIR", "."),
		LogLevel: strings.ToLower(p.str("LOG_LEVEL", "info")),

		Backend: ConsultationBackend(strings.ToLower(p.str("CONSULTATION_BACKEND", string(BackendNotify)))),

		MailTo:         mailTo,
		SMSTo:          p.str("ALERT_SMS_TO", "8289998100"),
		SendGridAPIKey: p.str("SENDGRID_API_KEY", ""),
		Twilio: Twilio{
			AccountSID: p.str("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  p.str("TWILIO_AUTH_TOKEN", ""),
			From:       p.str("TWILIO_FROM", ""),
		},

		PricingPath:   p.str("ESTIMATOR_PRICING", ""),
		ShutdownToken: p.str("ENGINE_SHUTDOWN_TOKEN", ""),
	}
	// MAIL_FROM falls back to an explicitly set MAIL_TO before the local default.
	cfg.MailFrom = p.str("MAIL_FROM", p.str("MAIL_TO", "noreply@evolve.local"))

	if len(p.problems) > 0 {
		return cfg, &ConfigurationError{Problems: p.problems}
	}
	return cfg, nil
}

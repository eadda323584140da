package consult

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"evolve-engine/internal/config"
	"evolve-engine/internal/delivery"
	"evolve-engine/internal/scrape/util"

	"go.uber.org/zap"
)

const smsLimit = 1500

var ErrNoSendGridKey = errors.New("SENDGRID_API_KEY missing")

// NotifyIntake emails the team and, when Twilio is configured, texts them.
type NotifyIntake struct {
	Mail   *delivery.SendGrid
	MailTo string
	SMS    *Twilio // nil disables texts
	SMSTo  string
	Log    *zap.Logger
}

func NewNotify(cfg config.Server, client *http.Client, log *zap.Logger) *NotifyIntake {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	n := &NotifyIntake{
		Mail: &delivery.SendGrid{
			APIKey: cfg.SendGridAPIKey,
			From:   delivery.Sender{Email: cfg.MailFrom},
			Client: client,
		},
		MailTo: cfg.MailTo,
		SMSTo:  cfg.SMSTo,
		Log:    log.Named("consult"),
	}
	if cfg.Twilio.Enabled() {
		n.SMS = &Twilio{
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			From:       cfg.Twilio.From,
			Client:     client,
		}
	}
	return n
}

func Subject(req Request) string {
	return "New Consultation Request from " + req.Name
}

func Body(req Request) string {
	return strings.Join([]string{
		"Name: " + req.Name,
		"Email: " + req.Email,
		"Company: " + req.Company,
		"Details: " + req.Details,
	}, "\n")
}

func SMSBody(req Request) string {
	s := fmt.Sprintf("Consultation request - %s (%s, %s): %s", req.Name, req.Email, req.Company, req.Details)
	return util.Truncate(s, smsLimit)
}

func (n *NotifyIntake) Submit(ctx context.Context, req Request) error {
	if n.Mail == nil || strings.TrimSpace(n.Mail.APIKey) == "" {
		return ErrNoSendGridKey
	}

	err := n.Mail.Send(ctx, delivery.Message{
		To:      n.MailTo,
		ReplyTo: req.Email,
		Subject: Subject(req),
		Text:    Body(req),
	})
	if err != nil {
		return fmt.Errorf("notify email: %w", err)
	}

	if n.SMS != nil {
		if err := n.SMS.Send(ctx, n.SMSTo, SMSBody(req)); err != nil {
			return fmt.Errorf("notify sms: %w", err)
		}
	}
	return nil
}

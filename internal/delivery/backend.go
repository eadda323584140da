// Package delivery sends composed outreach emails.
package delivery

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"evolve-engine/internal/config"

	"go.uber.org/zap"
)

// Backend delivers a single message.
type Backend interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Sender is the From identity shared by every backend.
type Sender struct {
	Email string
	Name  string
}

// Error reports a non-success response from an upstream mail API.
type Error struct {
	Backend string
	Status  int
	Body    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (%d): %s", e.Backend, e.Status, e.Body)
}

// New returns the backend selected by cfg.Delivery.
func New(cfg config.Outreach, client *http.Client, log *zap.Logger) (Backend, error) {
	from := Sender{Email: cfg.FromEmail, Name: cfg.FromName}
	switch cfg.Delivery {
	case config.DeliverySendGrid:
		if client == nil {
			client = &http.Client{Timeout: 30 * time.Second}
		}
		return &SendGrid{APIKey: cfg.SendGridAPIKey, From: from, Client: client}, nil
	case config.DeliverySMTP:
		return &Relay{Server: cfg.SMTP, From: from}, nil
	case config.DeliveryLog:
		return NewLog(log), nil
	default:
		return nil, fmt.Errorf("delivery: unknown backend %q", cfg.Delivery)
	}
}

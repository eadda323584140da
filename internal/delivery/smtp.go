package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/smtp"
	"strings"
	"time"

	"evolve-engine/internal/config"

	"github.com/emersion/go-message/mail"
)

// Relay sends through an SMTP server with PLAIN auth.
type Relay struct {
	Server config.SMTP
	From   Sender

	// sendMail defaults to smtp.SendMail.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now      func() time.Time
}

func (r *Relay) Name() string { return "smtp" }

func (r *Relay) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now
	if r.now != nil {
		now = r.now
	}
	raw, err := BuildMIME(r.From, msg, now())
	if err != nil {
		return fmt.Errorf("smtp: build message: %w", err)
	}

	var auth smtp.Auth
	if r.Server.Username != "" {
		auth = smtp.PlainAuth("", r.Server.Username, r.Server.Password, r.Server.Host)
	}

	send := r.sendMail
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(r.Server.Addr(), auth, r.From.Email, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("smtp: send to %s via %s: %w", msg.To, r.Server.Addr(), err)
	}
	return nil
}

// BuildMIME renders msg as a multipart/alternative message (text, then HTML).
func BuildMIME(from Sender, msg Message, date time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{{Name: from.Name, Address: from.Email}})
	h.SetAddressList("To", []*mail.Address{{Address: msg.To}})
	if msg.ReplyTo != "" {
		h.SetAddressList("Reply-To", []*mail.Address{{Address: msg.ReplyTo}})
	}
	h.SetSubject(msg.Subject)
	if err := h.GenerateMessageIDWithHostname(senderDomain(from.Email)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := mail.CreateInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}

	parts := []struct{ typ, body string }{
		{"text/plain", msg.Text},
		{"text/html", msg.HTML},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		var ph mail.InlineHeader
		ph.SetContentType(p.typ, map[string]string{"charset": "utf-8"})
		pw, err := w.CreatePart(ph)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(pw, p.body); err != nil {
			return nil, err
		}
		if err := pw.Close(); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func senderDomain(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}

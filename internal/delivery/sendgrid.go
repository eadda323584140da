package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const SendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

type SendGrid struct {
	APIKey   string
	From     Sender
	Client   *http.Client
	Endpoint string // overridable in tests
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgPersonalization struct {
	To      []sgAddress `json:"to"`
	Subject string      `json:"subject"`
}

type sgPayload struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	ReplyTo          *sgAddress          `json:"reply_to,omitempty"`
	Content          []sgContent         `json:"content"`
}

func (s *SendGrid) Name() string { return "sendgrid" }

func (s *SendGrid) payload(msg Message) sgPayload {
	p := sgPayload{
		Personalizations: []sgPersonalization{{
			To:      []sgAddress{{Email: msg.To}},
			Subject: msg.Subject,
		}},
		From: sgAddress{Email: s.From.Email, Name: s.From.Name},
	}
	if msg.ReplyTo != "" {
		p.ReplyTo = &sgAddress{Email: msg.ReplyTo}
	}
	if msg.Text != "" {
		p.Content = append(p.Content, sgContent{Type: "text/plain", Value: msg.Text})
	}
	if msg.HTML != "" {
		p.Content = append(p.Content, sgContent{Type: "text/html", Value: msg.HTML})
	}
	return p
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(s.APIKey) == "" {
		return fmt.Errorf("sendgrid: missing API key")
	}

	body, err := json.Marshal(s.payload(msg))
	if err != nil {
		return fmt.Errorf("sendgrid: marshal: %w", err)
	}

	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = SendGridEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sendgrid: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid: post: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
		return &Error{Backend: "sendgrid", Status: res.StatusCode, Body: string(b)}
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

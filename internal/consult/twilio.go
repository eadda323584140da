package consult

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const TwilioBaseURL = "https://api.twilio.com"

// Twilio sends SMS through the Messages REST endpoint.
type Twilio struct {
	AccountSID string
	AuthToken  string
	From       string
	Client     *http.Client
	BaseURL    string // overridable in tests
}

// SMSError reports a non-success response from Twilio.
type SMSError struct {
	Status int
	Body   string
}

func (e *SMSError) Error() string {
	return fmt.Sprintf("twilio error (%d): %s", e.Status, e.Body)
}

func (t *Twilio) Send(ctx context.Context, to, body string) error {
	base := t.BaseURL
	if base == "" {
		base = TwilioBaseURL
	}
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", strings.TrimRight(base, "/"), url.PathEscape(t.AccountSID))

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.From)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("twilio: new request: %w", err)
	}
	req.SetBasicAuth(t.AccountSID, t.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio: post: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 16<<10))
		return &SMSError{Status: res.StatusCode, Body: string(b)}
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

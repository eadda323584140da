package replies

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"evolve-engine/internal/config"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"
)

// Message is the part of an inbox message needed for reply matching.
type Message struct {
	UID     imap.UID
	From    string // bare address
	Subject string
	Date    time.Time
}

// DialAndLogin connects over TLS and logs in.
func DialAndLogin(ctx context.Context, cfg config.IMAP, tlsCfg *tls.Config) (*imapclient.Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("imap host is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("imap username/password is required")
	}
	if tlsCfg == nil {
		tlsCfg = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: cfg.Host}
	}

	c, err := imapclient.DialTLS(cfg.Addr(), &imapclient.Options{
		TLSConfig: tlsCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	// Best-effort close on context cancel.
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(cfg.Username, cfg.Password).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return c, nil
}

// SelectMailbox opens name read-only so flags are never changed.
func SelectMailbox(c *imapclient.Client, name string) error {
	if c == nil {
		return errors.New("imap client is nil")
	}
	if name == "" {
		name = "INBOX"
	}
	if _, err := c.Select(name, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return fmt.Errorf("imap select %s: %w", name, err)
	}
	return nil
}

// FetchUnseen returns up to max unseen messages from the last three months,
// newest first. Bodies are fetched with BODY.PEEK[] so nothing is marked \Seen.
func FetchUnseen(ctx context.Context, c *imapclient.Client, max int) ([]Message, error) {
	if c == nil {
		return nil, errors.New("imap client is nil")
	}
	if max <= 0 {
		max = 200
	}

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   time.Now().AddDate(0, -3, 0),
	}
	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search unseen: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if len(uids) > max {
		uids = uids[:max]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	out := make([]Message, 0, len(uids))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		m := Message{UID: buf.UID}
		if buf.Envelope != nil {
			m.Subject = buf.Envelope.Subject
			m.Date = buf.Envelope.Date
			if len(buf.Envelope.From) > 0 {
				m.From = strings.TrimSpace(buf.Envelope.From[0].Addr())
			}
		}
		if m.From == "" {
			if raw := buf.FindBodySection(bodyAll); len(raw) > 0 {
				m.From, m.Date = headerFallback(raw, m.Date)
			}
		}
		out = append(out, m)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

// headerFallback reads From (and Date when missing) from a raw message.
func headerFallback(raw []byte, date time.Time) (string, time.Time) {
	r, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return "", date
	}
	defer r.Close()

	var from string
	if addrs, err := r.Header.AddressList("From"); err == nil && len(addrs) > 0 {
		from = addrs[0].Address
	}
	if date.IsZero() {
		if d, err := r.Header.Date(); err == nil {
			date = d
		}
	}
	return from, date
}

// LogoutAndClose logs out then closes the connection.
func LogoutAndClose(c *imapclient.Client, log *zap.Logger) {
	if c == nil {
		return
	}
	if err := c.Logout().Wait(); err != nil && log != nil {
		log.Warn("imap logout", zap.Error(err))
	}
	_ = c.Close()
}

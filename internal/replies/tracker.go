package replies

import (
	"context"
	"time"

	"evolve-engine/internal/config"
	"evolve-engine/internal/store"

	"go.uber.org/zap"
)

// Inbox lists candidate reply messages.
type Inbox interface {
	Unseen(ctx context.Context) ([]Message, error)
}

// IMAPInbox reads the configured mailbox over IMAP.
type IMAPInbox struct {
	Cfg config.IMAP
	Max int
	Log *zap.Logger
}

func (in *IMAPInbox) Unseen(ctx context.Context) ([]Message, error) {
	c, err := DialAndLogin(ctx, in.Cfg, nil)
	if err != nil {
		return nil, err
	}
	defer LogoutAndClose(c, in.Log)

	if err := SelectMailbox(c, in.Cfg.Mailbox); err != nil {
		return nil, err
	}
	return FetchUnseen(ctx, c, in.Max)
}

type Tracker struct {
	Inbox     Inbox
	StatePath string
	Now       func() time.Time
	Log       *zap.Logger
}

// Check matches unseen inbox mail against contacted leads and persists the
// state file when any record changed.
func (t *Tracker) Check(ctx context.Context) ([]Reply, error) {
	log := t.Log
	if log == nil {
		log = zap.NewNop()
	}
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}

	lock, err := store.LockState(t.StatePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	// A corrupt file is reported rather than overwritten.
	st, err := store.LoadState(t.StatePath)
	if err != nil {
		return nil, err
	}
	if len(st.Contacted) == 0 {
		log.Info("no contacted leads to check")
		return nil, nil
	}

	msgs, err := t.Inbox.Unseen(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("fetched unseen messages", zap.Int("count", len(msgs)))

	found := Match(st, msgs, now())
	for _, r := range found {
		log.Info("reply", zap.String("from", r.Email), zap.String("thread", r.ThreadURL))
	}
	if len(found) == 0 {
		return nil, nil
	}
	if err := store.SaveState(t.StatePath, st); err != nil {
		return found, err
	}
	return found, nil
}

// Package outreach drives one prospecting run: gather leads, compose,
// deliver (or preview), and record contacted threads.
package outreach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evolve-engine/internal/compose"
	"evolve-engine/internal/delivery"
	"evolve-engine/internal/domain"
	"evolve-engine/internal/store"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Gatherer is satisfied by *leads.Assembler.
type Gatherer interface {
	Gather(ctx context.Context, contacted func(threadURL string) bool) ([]domain.Lead, error)
}

type Runner struct {
	Gatherer Gatherer
	Composer compose.Composer
	Backend  delivery.Backend
	Preview  *delivery.Preview

	StatePath     string
	DryRun        bool
	DryRunRecords bool
	MaxEmails     int
	ReplyTo       string

	Pace *rate.Limiter // nil sends unpaced
	Now  func() time.Time
	Log  *zap.Logger
}

type Summary struct {
	Gathered  int
	Processed int
	DryRun    bool
}

func (r *Runner) records() bool { return !r.DryRun || r.DryRunRecords }

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

func (r *Runner) Run(ctx context.Context) (Summary, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	sum := Summary{DryRun: r.DryRun}

	lock, err := store.LockState(r.StatePath)
	if err != nil {
		return sum, err
	}
	defer func() { _ = lock.Unlock() }()

	st, err := store.LoadState(r.StatePath)
	switch {
	case errors.Is(err, store.ErrCorruptState):
		log.Warn("state file unreadable, starting empty", zap.Error(err))
	case err != nil:
		return sum, err
	}

	found, err := r.Gatherer.Gather(ctx, st.IsContacted)
	if err != nil {
		return sum, err
	}
	sum.Gathered = len(found)
	if len(found) == 0 {
		log.Info("no new leads found")
		return sum, nil
	}

	for _, lead := range found {
		if sum.Processed >= r.MaxEmails {
			break
		}

		email := r.Composer.Compose(lead)
		msg := delivery.Message{
			To:      lead.Email,
			ReplyTo: r.ReplyTo,
			Subject: email.Subject,
			Text:    email.Text,
			HTML:    email.HTML,
		}

		if r.DryRun {
			if err := r.Preview.Show(msg); err != nil {
				return sum, err
			}
		} else {
			if err := r.deliver(ctx, msg); err != nil {
				if saveErr := r.save(st); saveErr != nil {
					log.Error("persist state after failed delivery", zap.Error(saveErr))
				}
				return sum, fmt.Errorf("deliver to %s (%s): %w", lead.Email, lead.ThreadURL, err)
			}
			log.Info("sent", zap.String("to", lead.Email), zap.String("thread", lead.ThreadURL))
		}

		if r.records() {
			st.Mark(lead.ThreadURL, store.ContactRecord{
				Email:   lead.Email,
				Keyword: lead.Keyword,
				SentAt:  r.now(),
			})
		}
		sum.Processed++
	}

	if err := r.save(st); err != nil {
		return sum, fmt.Errorf("save state: %w", err)
	}
	log.Info(fmt.Sprintf("processed %d lead(s)", sum.Processed), zap.Bool("dry_run", r.DryRun))
	return sum, nil
}

func (r *Runner) deliver(ctx context.Context, msg delivery.Message) error {
	if r.Pace != nil {
		if err := r.Pace.Wait(ctx); err != nil {
			return err
		}
	}
	return r.Backend.Send(ctx, msg)
}

// save is a no-op for read-only dry runs.
func (r *Runner) save(st *store.RunState) error {
	if !r.records() {
		return nil
	}
	return store.SaveState(r.StatePath, st)
}

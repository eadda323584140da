// Package replies checks the outreach inbox for answers from contacted leads.
package replies

import (
	"sort"
	"strings"
	"time"

	"evolve-engine/internal/store"
)

// Reply is a contacted thread that received an answer.
type Reply struct {
	ThreadURL string
	Email     string
	At        time.Time
}

// Match stamps RepliedAt on every contact record whose email sent one of
// msgs. Records that already carry RepliedAt are left alone, as are
// messages dated before the outreach went out. Addresses compare
// case-insensitively. now is used for messages without a date.
func Match(st *store.RunState, msgs []Message, now time.Time) []Reply {
	if st == nil || len(msgs) == 0 {
		return nil
	}

	// Every message date per sender; a record takes the earliest one on or
	// after its SentAt.
	dates := map[string][]time.Time{}
	for _, m := range msgs {
		addr := strings.ToLower(strings.TrimSpace(m.From))
		if addr == "" {
			continue
		}
		at := m.Date
		if at.IsZero() {
			at = now
		}
		dates[addr] = append(dates[addr], at)
	}

	urls := make([]string, 0, len(st.Contacted))
	for u := range st.Contacted {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	var out []Reply
	for _, u := range urls {
		rec := st.Contacted[u]
		if rec.RepliedAt != nil {
			continue
		}
		at, ok := firstSince(dates[strings.ToLower(rec.Email)], rec.SentAt)
		if !ok {
			continue
		}
		at = at.UTC()
		rec.RepliedAt = &at
		st.Contacted[u] = rec
		out = append(out, Reply{ThreadURL: u, Email: rec.Email, At: at})
	}
	return out
}

func firstSince(dates []time.Time, since time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	for _, d := range dates {
		if d.Before(since) {
			continue
		}
		if !found || d.Before(best) {
			best, found = d, true
		}
	}
	return best, found
}

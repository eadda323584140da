package outreach

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"evolve-engine/internal/compose"
	"evolve-engine/internal/config"
	"evolve-engine/internal/delivery"
	"evolve-engine/internal/domain"
	"evolve-engine/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeGatherer struct {
	leads []domain.Lead
	err   error
	seen  func(string) bool
}

func (f *fakeGatherer) Gather(_ context.Context, contacted func(string) bool) ([]domain.Lead, error) {
	f.seen = contacted
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Lead
	for _, l := range f.leads {
		if !contacted(l.ThreadURL) {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeBackend struct {
	sent   []delivery.Message
	failOn string
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Send(_ context.Context, msg delivery.Message) error {
	if msg.To == f.failOn {
		return &delivery.Error{Backend: "fake", Status: 500, Body: "boom"}
	}
	f.sent = append(f.sent, msg)
	return nil
}

var fixedNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func threeLeads() []domain.Lead {
	return []domain.Lead{
		{Keyword: "k", Email: "a@a.com", ThreadURL: "https://f.com/1", Title: "One"},
		{Keyword: "k", Email: "b@b.com", ThreadURL: "https://f.com/2", Title: "Two"},
		{Keyword: "k", Email: "c@c.com", ThreadURL: "https://f.com/3", Title: "Three"},
	}
}

func newRunner(t *testing.T, g Gatherer, b delivery.Backend, out *bytes.Buffer) *Runner {
	t.Helper()
	return &Runner{
		Gatherer:  g,
		Composer:  compose.Composer{FromName: "Aidan"},
		Backend:   b,
		Preview:   delivery.NewPreview(out),
		StatePath: filepath.Join(t.TempDir(), config.StateFileName),
		MaxEmails: 5,
		ReplyTo:   "replies@evolve.dev",
		Now:       func() time.Time { return fixedNow },
		Log:       zap.NewNop(),
	}
}

func TestRunSendsAndRecords(t *testing.T) {
	b := &fakeBackend{}
	r := newRunner(t, &fakeGatherer{leads: threeLeads()}, b, &bytes.Buffer{})

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Gathered: 3, Processed: 3}, sum)

	require.Len(t, b.sent, 3)
	assert.Equal(t, "a@a.com", b.sent[0].To)
	assert.Equal(t, "replies@evolve.dev", b.sent[0].ReplyTo)
	assert.Equal(t, "Idea after your forum post about One", b.sent[0].Subject)

	st, err := store.LoadState(r.StatePath)
	require.NoError(t, err)
	require.Len(t, st.Contacted, 3)
	assert.Equal(t, store.ContactRecord{Email: "b@b.com", Keyword: "k", SentAt: fixedNow}, st.Contacted["https://f.com/2"])
}

func TestRunRespectsMaxEmails(t *testing.T) {
	b := &fakeBackend{}
	r := newRunner(t, &fakeGatherer{leads: threeLeads()}, b, &bytes.Buffer{})
	r.MaxEmails = 2

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Processed)
	assert.Equal(t, 3, sum.Gathered)
	require.Len(t, b.sent, 2)

	st, err := store.LoadState(r.StatePath)
	require.NoError(t, err)
	assert.False(t, st.IsContacted("https://f.com/3"))
}

func TestRunSkipsAlreadyContacted(t *testing.T) {
	b := &fakeBackend{}
	r := newRunner(t, &fakeGatherer{leads: threeLeads()}, b, &bytes.Buffer{})

	prior := store.NewRunState()
	prior.Mark("https://f.com/1", store.ContactRecord{Email: "a@a.com", Keyword: "k", SentAt: fixedNow.Add(-time.Hour)})
	require.NoError(t, store.SaveState(r.StatePath, prior))

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Processed)
	for _, m := range b.sent {
		assert.NotEqual(t, "a@a.com", m.To)
	}
}

func TestRunDryRunIsReadOnlyByDefault(t *testing.T) {
	b := &fakeBackend{}
	var out bytes.Buffer
	r := newRunner(t, &fakeGatherer{leads: threeLeads()[:1]}, b, &out)
	r.DryRun = true

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Gathered: 1, Processed: 1, DryRun: true}, sum)

	assert.Empty(t, b.sent, "dry run must not deliver")
	assert.Contains(t, out.String(), "--- DRY RUN: email preview ---")
	assert.Contains(t, out.String(), "To: a@a.com")

	_, err = os.Stat(r.StatePath)
	assert.True(t, os.IsNotExist(err), "dry run must not write the state file")
}

func TestRunDryRunRecordsWhenAsked(t *testing.T) {
	b := &fakeBackend{}
	r := newRunner(t, &fakeGatherer{leads: threeLeads()[:1]}, b, &bytes.Buffer{})
	r.DryRun = true
	r.DryRunRecords = true

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, b.sent)

	st, err := store.LoadState(r.StatePath)
	require.NoError(t, err)
	assert.True(t, st.IsContacted("https://f.com/1"))
}

func TestRunDeliveryFailurePersistsEarlierSends(t *testing.T) {
	b := &fakeBackend{failOn: "b@b.com"}
	r := newRunner(t, &fakeGatherer{leads: threeLeads()}, b, &bytes.Buffer{})

	sum, err := r.Run(context.Background())
	var de *delivery.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 1, sum.Processed)

	st, loadErr := store.LoadState(r.StatePath)
	require.NoError(t, loadErr)
	assert.True(t, st.IsContacted("https://f.com/1"))
	assert.False(t, st.IsContacted("https://f.com/2"))
	assert.False(t, st.IsContacted("https://f.com/3"))
}

func TestRunNoLeads(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newRunner(t, &fakeGatherer{}, &fakeBackend{}, &bytes.Buffer{})
	r.Log = zap.New(core)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum.Processed)
	assert.Equal(t, 1, logs.FilterMessage("no new leads found").Len())

	_, err = os.Stat(r.StatePath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunGatherErrorAborts(t *testing.T) {
	boom := errors.New("search down")
	b := &fakeBackend{}
	r := newRunner(t, &fakeGatherer{err: boom}, b, &bytes.Buffer{})

	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Empty(t, b.sent)
}

func TestRunCorruptStateContinues(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := &fakeBackend{}
	r := newRunner(t, &fakeGatherer{leads: threeLeads()[:1]}, b, &bytes.Buffer{})
	r.Log = zap.New(core)
	require.NoError(t, os.WriteFile(r.StatePath, []byte("garbage"), 0o644))

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 1, logs.Len())
}

func TestRunFailsWhenStateLocked(t *testing.T) {
	r := newRunner(t, &fakeGatherer{leads: threeLeads()}, &fakeBackend{}, &bytes.Buffer{})

	held, err := store.LockState(r.StatePath)
	require.NoError(t, err)
	defer func() { _ = held.Unlock() }()

	_, err = r.Run(context.Background())
	require.ErrorIs(t, err, store.ErrStateLocked)
}

func TestBuildWiresFromConfig(t *testing.T) {
	cfg, err := config.LoadOutreach(func(string) string { return "" })
	require.NoError(t, err)
	cfg.SendPerMinute = 6
	cfg.DataDir = t.TempDir()

	var out bytes.Buffer
	r, err := Build(cfg, &out, zap.NewNop())
	require.NoError(t, err)

	assert.True(t, r.DryRun)
	assert.Equal(t, 5, r.MaxEmails)
	assert.Equal(t, "sendgrid", r.Backend.Name())
	assert.NotNil(t, r.Pace)
	assert.True(t, strings.HasSuffix(r.StatePath, config.StateFileName))
}

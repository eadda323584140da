package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

var (
	ErrCorruptState = errors.New("state file is corrupt")
	ErrStateLocked  = errors.New("state file is locked by another run")
)

// ContactRecord marks a thread as contacted.
type ContactRecord struct {
	Email     string     `json:"email"`
	Keyword   string     `json:"keyword"`
	SentAt    time.Time  `json:"sentAt"`
	RepliedAt *time.Time `json:"repliedAt,omitempty"`
}

// RunState is keyed by thread URL.
type RunState struct {
	Contacted map[string]ContactRecord `json:"contacted"`
}

func NewRunState() *RunState {
	return &RunState{Contacted: map[string]ContactRecord{}}
}

func (s *RunState) IsContacted(threadURL string) bool {
	_, ok := s.Contacted[threadURL]
	return ok
}

func (s *RunState) Mark(threadURL string, rec ContactRecord) {
	if s.Contacted == nil {
		s.Contacted = map[string]ContactRecord{}
	}
	s.Contacted[threadURL] = rec
}

// LoadState reads the state file. A missing file yields an empty state.
// An unreadable document yields an empty state together with ErrCorruptState.
func LoadState(path string) (*RunState, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewRunState(), nil
	}
	if err != nil {
		return NewRunState(), fmt.Errorf("read state %s: %w", path, err)
	}

	var st RunState
	if err := json.Unmarshal(b, &st); err != nil {
		return NewRunState(), fmt.Errorf("%w: %s: %v", ErrCorruptState, path, err)
	}
	if st.Contacted == nil {
		st.Contacted = map[string]ContactRecord{}
	}
	return &st, nil
}

// SaveState replaces the state file, keeping the previous one as <path>.bak.
func SaveState(path string, st *RunState) error {
	if st == nil {
		st = NewRunState()
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}

// StateLock is held for the duration of a run.
type StateLock struct {
	fl *flock.Flock
}

// LockState takes a non-blocking exclusive lock on <path>.lock.
func LockState(path string) (*StateLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	fl := flock.New(path + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock state: %w", err)
	}
	if !ok {
		return nil, ErrStateLocked
	}
	return &StateLock{fl: fl}, nil
}

func (l *StateLock) Unlock() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}

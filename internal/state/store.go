package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Persister saves and loads state snapshots.
type Persister interface {
	Save(s State) error
	// Load returns os.ErrNotExist (wrapped) when there is no snapshot yet.
	Load() (State, error)
}

// FilePersister keeps the snapshot in one JSON file. Saves write a temp
// file in the same directory and rename it over the old snapshot.
type FilePersister struct {
	Path string
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{Path: path}
}

func (p *FilePersister) Save(s State) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	dir := filepath.Dir(p.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(p.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.Path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

func (p *FilePersister) Load() (State, error) {
	raw, err := os.ReadFile(p.Path)
	if err != nil {
		return State{}, err
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, fmt.Errorf("decode state: %w", err)
	}
	return s, nil
}

// Store holds the current state and persists it after every transition.
type Store struct {
	mu        sync.RWMutex
	state     State
	persister Persister
	listeners []func(State)
}

// NewStore starts from an empty state. persister may be nil.
func NewStore(persister Persister) *Store {
	return &Store{persister: persister}
}

// Hydrate replaces the state with the persisted snapshot. A missing
// snapshot is not an error. A corrupt one is logged and ignored: the
// snapshot is only a cache of the server's data.
func (s *Store) Hydrate(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persister == nil {
		return s.state
	}
	loaded, err := s.persister.Load()
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.state = State{}
	case err != nil:
		slog.WarnContext(ctx, "Discarding unreadable state snapshot", "component", "state", "error", err)
		s.state = State{}
	default:
		s.state = loaded
	}
	return s.state
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to run with the new state after every Dispatch.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Dispatch applies a, persists the result and notifies subscribers. The
// transition stands even when the snapshot cannot be written; the save
// error is returned so the caller can report it.
func (s *Store) Dispatch(a Action) (State, error) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	listeners := append([]func(State){}, s.listeners...)

	var err error
	if s.persister != nil {
		if err = s.persister.Save(next); err != nil {
			err = fmt.Errorf("persist state: %w", err)
		}
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next, err
}

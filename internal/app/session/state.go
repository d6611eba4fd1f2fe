package session

import (
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"sync"
)

type Status string

const (
	StatusAnonymous     Status = "anonymous"
	StatusLoading       Status = "loading"
	StatusAuthenticated Status = "authenticated"
	StatusError         Status = "error"
)

// State is a snapshot of the signed-in user. Profile is set only while
// authenticated, or after a failed operation that kept the session.
type State struct {
	Status  Status
	Profile *profile.Profile
	Error   string
}

func (s State) Authenticated() bool {
	return s.Profile != nil && s.Status != StatusAnonymous
}

// Store holds the process-wide session state.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Status: StatusAnonymous}}
}

// State returns a copy of the current state. The profile is cloned so callers
// cannot mutate the stored one.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.state
	if out.Profile != nil {
		out.Profile = out.Profile.Clone()
	}
	return out
}

func (s *Store) update(f func(*State)) {
	s.mu.Lock()
	f(&s.state)
	s.mu.Unlock()
}

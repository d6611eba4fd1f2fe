package draftstorage

import (
	"context"
	"encoding/json"
	"github.com/burenotti/go_endurance_backend/internal/app/onboarding"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStorage is the in-process draft store used when redis is not configured.
type MemoryStorage struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStorage(ttl time.Duration) *MemoryStorage {
	return &MemoryStorage{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStorage) Load(_ context.Context, userID string) (*onboarding.Draft, error) {
	s.mu.Lock()
	e, ok := s.entries[userID]
	if ok && s.ttl > 0 && s.now().After(e.expiresAt) {
		delete(s.entries, userID)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, onboarding.ErrDraftNotFound
	}

	var d onboarding.Draft
	if err := json.Unmarshal(e.data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MemoryStorage) Save(_ context.Context, userID string, d *onboarding.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[userID] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()
	return nil
}

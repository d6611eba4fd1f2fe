package memstore

import (
	"context"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage"
	"github.com/burenotti/go_endurance_backend/internal/domain"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
)

type ProfileStorage struct {
	tx   *Tx
	seen storage.Seen[*profile.Profile]
}

func NewProfileStorage(tx storage.Transaction) *ProfileStorage {
	return &ProfileStorage{tx: asTx(tx)}
}

func (s *ProfileStorage) Add(_ context.Context, p *profile.Profile) error {
	if s.tx.findProfile(p.ID) != nil || s.tx.profileEmailTaken(p.ID, p.Email) {
		return profile.ErrProfileExists
	}
	s.tx.stageProfile(stored(p))
	s.seen.Mark(p.ID, p)
	return nil
}

func (s *ProfileStorage) GetByID(_ context.Context, id string) (*profile.Profile, error) {
	p := s.tx.findProfile(id)
	if p == nil {
		return nil, profile.ErrProfileNotFound
	}
	out := p.Clone()
	s.seen.Mark(out.ID, out)
	return out, nil
}

func (s *ProfileStorage) Persist(_ context.Context, p *profile.Profile) error {
	if s.tx.findProfile(p.ID) == nil {
		return profile.ErrProfileNotFound
	}
	s.tx.stageProfile(stored(p))
	s.seen.Mark(p.ID, p)
	return nil
}

func (s *ProfileStorage) CollectEvents() []domain.Event {
	return s.seen.Collect()
}

func (s *ProfileStorage) Close() error {
	s.seen.Clear()
	return nil
}

func stored(p *profile.Profile) *profile.Profile {
	out := p.Clone()
	if out.Injuries == nil {
		out.Injuries = profile.Injuries{}
	}
	return out
}

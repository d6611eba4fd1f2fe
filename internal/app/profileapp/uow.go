package profileapp

import (
	"context"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage"
	"github.com/burenotti/go_endurance_backend/internal/app/unitofwork"
	"github.com/burenotti/go_endurance_backend/internal/domain"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
)

type AtomicContext struct {
	ctx            context.Context
	tx             storage.Transaction
	ProfileStorage ProfileStorage
}

type ProfileStorage interface {
	GetByID(ctx context.Context, id string) (*profile.Profile, error)
	Persist(ctx context.Context, p *profile.Profile) error
	CollectEvents() []domain.Event
	Close() error
}

func NewAtomicContextFactory(
	profiles func(tx storage.Transaction) ProfileStorage,
) unitofwork.ContextFactory[*AtomicContext] {
	return func(ctx context.Context, tx storage.Transaction) (*AtomicContext, error) {
		return &AtomicContext{
			ctx:            ctx,
			tx:             tx,
			ProfileStorage: profiles(tx),
		}, nil
	}
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.tx.Commit()
}

func (a *AtomicContext) Close() error {
	return a.ProfileStorage.Close()
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.ProfileStorage.CollectEvents()
}

package authapp

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage"
	"github.com/burenotti/go_endurance_backend/internal/domain"
	"github.com/burenotti/go_endurance_backend/internal/domain/auth"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
)

type UserStorage interface {
	Add(ctx context.Context, u *auth.User) error
	GetByEmail(ctx context.Context, email string) (*auth.User, error)
	GetByID(ctx context.Context, userId string) (*auth.User, error)
	GetByAuthID(ctx context.Context, id string) (*auth.User, error)
	GetByAuthSecret(ctx context.Context, secret string) (*auth.User, error)
	Persist(ctx context.Context, u *auth.User) error
	CollectEvents() []domain.Event
	Close() error
}

type ProfileStorage interface {
	Add(ctx context.Context, p *profile.Profile) error
	GetByID(ctx context.Context, id string) (*profile.Profile, error)
	CollectEvents() []domain.Event
	Close() error
}

// Storages builds the storages of one unit of work on top of its transaction.
type Storages struct {
	Users    func(tx storage.Transaction) UserStorage
	Profiles func(tx storage.Transaction) ProfileStorage
}

type AtomicContext struct {
	ctx            context.Context
	tx             storage.Transaction
	UserStorage    UserStorage
	ProfileStorage ProfileStorage
}

func (s Storages) NewAtomicContext(ctx context.Context, tx storage.Transaction) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:            ctx,
		tx:             tx,
		UserStorage:    s.Users(tx),
		ProfileStorage: s.Profiles(tx),
	}, nil
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.tx.Commit()
}

func (a *AtomicContext) Close() (err error) {
	if closeErr := a.UserStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if closeErr := a.ProfileStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}

	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	userEvents := a.UserStorage.CollectEvents()
	profileEvents := a.ProfileStorage.CollectEvents()

	events := make([]domain.Event, 0, len(userEvents)+len(profileEvents))
	events = append(events, userEvents...)
	events = append(events, profileEvents...)
	return events
}

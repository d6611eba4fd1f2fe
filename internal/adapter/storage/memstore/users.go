package memstore

import (
	"context"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage"
	"github.com/burenotti/go_endurance_backend/internal/domain"
	"github.com/burenotti/go_endurance_backend/internal/domain/auth"
)

type UserStorage struct {
	tx   *Tx
	seen storage.Seen[*auth.User]
}

func NewUserStorage(tx storage.Transaction) *UserStorage {
	return &UserStorage{tx: asTx(tx)}
}

func (s *UserStorage) Add(_ context.Context, u *auth.User) error {
	if s.tx.findUser(func(o *auth.User) bool { return o.UserID == u.UserID }) != nil {
		return auth.ErrUserExists
	}
	if s.tx.findUser(func(o *auth.User) bool { return o.Email == u.Email }) != nil {
		return auth.ErrUserEmailDuplicate
	}

	s.tx.stageUser(cloneUser(u))
	s.seen.Mark(u.UserID, u)
	return nil
}

func (s *UserStorage) get(match func(*auth.User) bool) (*auth.User, error) {
	u := s.tx.findUser(match)
	if u == nil {
		return nil, auth.ErrUserNotFound
	}
	out := cloneUser(u)
	s.seen.Mark(out.UserID, out)
	return out, nil
}

func (s *UserStorage) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	email = auth.NormalizeEmail(email)
	return s.get(func(u *auth.User) bool { return u.Email == email })
}

func (s *UserStorage) GetByID(_ context.Context, userId string) (*auth.User, error) {
	return s.get(func(u *auth.User) bool { return u.UserID == userId })
}

func (s *UserStorage) GetByAuthID(_ context.Context, id string) (*auth.User, error) {
	return s.get(func(u *auth.User) bool { return u.GetAuthByID(id) != nil })
}

func (s *UserStorage) GetByAuthSecret(_ context.Context, secret string) (*auth.User, error) {
	return s.get(func(u *auth.User) bool { return u.GetAuthBySecret(secret) != nil })
}

func (s *UserStorage) Persist(_ context.Context, u *auth.User) error {
	if s.tx.findUser(func(o *auth.User) bool { return o.UserID == u.UserID }) == nil {
		return auth.ErrUserNotFound
	}
	s.tx.stageUser(cloneUser(u))
	s.seen.Mark(u.UserID, u)
	return nil
}

func (s *UserStorage) CollectEvents() []domain.Event {
	return s.seen.Collect()
}

func (s *UserStorage) Close() error {
	s.seen.Clear()
	return nil
}

func cloneUser(u *auth.User) *auth.User {
	out := &auth.User{
		UserID:         u.UserID,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
		Authorizations: make([]*auth.Authorization, 0, len(u.Authorizations)),
	}
	for _, a := range u.Authorizations {
		c := *a
		if a.LogoutAt != nil {
			at := *a.LogoutAt
			c.LogoutAt = &at
		}
		out.Authorizations = append(out.Authorizations, &c)
	}
	return out
}

package authapp

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/app/unitofwork"
	"github.com/burenotti/go_endurance_backend/internal/domain/auth"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"github.com/google/uuid"
	"log/slog"
)

var (
	ErrInvalidAuthorization = fmt.Errorf("%w: invalid authorization", auth.ErrUnauthorized)
)

type Service struct {
	logger     *slog.Logger
	Authorizer *Authorizer
	uow        *unitofwork.UnitOfWork[*AtomicContext]
}

func NewService(
	authorizer *Authorizer,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	logger *slog.Logger,
) *Service {
	return &Service{
		logger:     logger,
		Authorizer: authorizer,
		uow:        uow,
	}
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Session is the result of a successful registration or login.
type Session struct {
	Tokens
	Profile *profile.Profile
}

type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates the account and its minimal profile atomically and logs the user in.
func (s *Service) Register(ctx context.Context, r Registration, device auth.Device) (session *Session, err error) {
	err = s.uow.Atomic(ctx, func(ctx *AtomicContext) error {
		email := auth.NormalizeEmail(r.Email)

		if _, err := ctx.UserStorage.GetByEmail(ctx.Context(), email); err == nil {
			return auth.ErrUserEmailDuplicate
		} else if !errors.Is(err, auth.ErrUserNotFound) {
			return err
		}

		u, err := auth.NewUser(uuid.New().String(), email, r.Password, s.Authorizer)
		if err != nil {
			return err
		}

		a, err := u.Authorize(s.Authorizer, r.Password, device)
		if err != nil {
			return err
		}

		if err := ctx.UserStorage.Add(ctx.Context(), u); err != nil {
			return err
		}

		p := profile.New(u.UserID, u.Email, r.FirstName, r.LastName)
		if err := ctx.ProfileStorage.Add(ctx.Context(), p); err != nil {
			if errors.Is(err, profile.ErrProfileExists) {
				return auth.ErrUserEmailDuplicate
			}
			return err
		}

		tokens, err := s.tokens(u, a)
		if err != nil {
			return err
		}

		if err := ctx.Commit(); err != nil {
			return err
		}

		session = &Session{Tokens: tokens, Profile: p}
		return nil
	})
	if err == nil {
		s.logger.Info("user registered", "user_id", session.Profile.ID)
	}
	return
}

// Login opens a new authorization. A user without a profile is refused with
// auth.ErrProfileMissing and no authorization is kept.
func (s *Service) Login(
	ctx context.Context,
	email string,
	password string,
	device auth.Device,
) (session *Session, err error) {
	err = s.uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u, err := ctx.UserStorage.GetByEmail(ctx.Context(), email)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				return auth.ErrInvalidCredentials
			}
			return err
		}

		a, err := u.Authorize(s.Authorizer, password, device)
		if err != nil {
			return err
		}

		p, err := ctx.ProfileStorage.GetByID(ctx.Context(), u.UserID)
		if err != nil {
			if errors.Is(err, profile.ErrProfileNotFound) {
				return auth.ErrProfileMissing
			}
			return err
		}

		if err := ctx.UserStorage.Persist(ctx.Context(), u); err != nil {
			return err
		}

		tokens, err := s.tokens(u, a)
		if err != nil {
			return err
		}

		if err := ctx.Commit(); err != nil {
			return err
		}

		session = &Session{Tokens: tokens, Profile: p}
		return nil
	})
	return
}

// Logout closes the authorization. Logging out twice is not an error.
func (s *Service) Logout(
	ctx context.Context,
	userId string,
	authorizationID string,
) error {
	return s.uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u, err := ctx.UserStorage.GetByID(ctx.Context(), userId)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				return auth.ErrUnauthorized
			}
			return err
		}

		if err := u.Logout(authorizationID); err != nil {
			return err
		}

		if err := ctx.UserStorage.Persist(ctx.Context(), u); err != nil {
			return err
		}

		return ctx.Commit()
	})
}

// Refresh issues a new access token for an active authorization.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
) (tokens Tokens, err error) {
	err = s.uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u, err := ctx.UserStorage.GetByAuthSecret(ctx.Context(), refreshToken)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				return ErrInvalidAuthorization
			}
			return err
		}

		a := u.GetAuthBySecret(refreshToken)
		if a == nil || !a.IsActive() {
			return fmt.Errorf("%w: authorization is not active", ErrInvalidAuthorization)
		}

		tokens, err = s.tokens(u, a)
		return err
	})
	return
}

// CheckAccessToken validates the token and refuses it once its authorization
// has been closed by a logout or has expired.
func (s *Service) CheckAccessToken(ctx context.Context, accessToken string) (*AccessTokenData, error) {
	data, err := s.Authorizer.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	err = s.uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u, err := ctx.UserStorage.GetByAuthID(ctx.Context(), data.Authorization)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				return ErrInvalidAuthorization
			}
			return err
		}

		a := u.GetAuthByID(data.Authorization)
		if u.UserID != data.UserID || a == nil || !a.IsActive() {
			return fmt.Errorf("%w: authorization is not active", ErrInvalidAuthorization)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Service) tokens(u *auth.User, a *auth.Authorization) (Tokens, error) {
	accessToken, err := s.Authorizer.GenerateAccessToken(u, a)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{
		AccessToken:  accessToken,
		RefreshToken: a.Secret,
	}, nil
}

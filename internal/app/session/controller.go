// Package session tracks the signed-in user on the client side.
package session

import (
	"context"
	"errors"
	"github.com/burenotti/go_endurance_backend/internal/domain/auth"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Repository is the identity and profile backend used by the controller.
type Repository interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*profile.Profile, error)
	Authenticate(ctx context.Context, email, password string) (*profile.Profile, error)
	// EndSession is a no-op without an active session.
	EndSession(ctx context.Context) error
	// CurrentProfile returns nil, nil when no session is active.
	CurrentProfile(ctx context.Context) (*profile.Profile, error)
	ApplyProfileUpdate(ctx context.Context, profileID string, patch profile.Patch) error
}

// Controller runs session operations one at a time and records their outcome
// in the store.
type Controller struct {
	mu     sync.Mutex
	repo   Repository
	store  *Store
	logger *slog.Logger
	now    func() time.Time
}

func NewController(repo Repository, store *Store, logger *slog.Logger) *Controller {
	return &Controller{
		repo:   repo,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (c *Controller) State() State {
	return c.store.State()
}

func (c *Controller) Register(ctx context.Context, email, password, firstName, lastName string) error {
	return c.signIn(ctx, func() (*profile.Profile, error) {
		return c.repo.Register(ctx, email, password, firstName, lastName)
	})
}

func (c *Controller) Login(ctx context.Context, email, password string) error {
	return c.signIn(ctx, func() (*profile.Profile, error) {
		return c.repo.Authenticate(ctx, email, password)
	})
}

// FetchCurrent restores the session from the repository. Without an active
// session the state becomes anonymous and no error is reported.
func (c *Controller) FetchCurrent(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.begin()
	p, err := c.repo.CurrentProfile(ctx)
	if err != nil {
		return c.fail(ctx, err, true)
	}

	c.store.update(func(s *State) {
		s.Profile = p
		if p == nil {
			s.Status = StatusAnonymous
		} else {
			s.Status = StatusAuthenticated
		}
	})
	return nil
}

// Logout ends the session. On failure the current profile is kept.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.begin()
	if err := c.repo.EndSession(ctx); err != nil {
		return c.fail(ctx, err, false)
	}

	c.store.update(func(s *State) {
		s.Status = StatusAnonymous
		s.Profile = nil
	})
	return nil
}

// UpdateProfile saves the patch and merges it into the local profile. On
// failure the local profile is left unchanged.
func (c *Controller) UpdateProfile(ctx context.Context, patch profile.Patch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.store.State().Profile
	if current == nil {
		c.store.update(func(s *State) {
			s.Status = StatusError
			s.Error = ErrNotAuthenticated.Error()
		})
		return ErrNotAuthenticated
	}

	c.begin()
	if err := c.repo.ApplyProfileUpdate(ctx, current.ID, patch); err != nil {
		return c.fail(ctx, err, false)
	}

	updated := merged(current, patch, c.now())
	c.store.update(func(s *State) {
		s.Status = StatusAuthenticated
		s.Profile = updated
	})
	return nil
}

func (c *Controller) ClearError() {
	c.store.update(func(s *State) {
		s.Error = ""
		if s.Status == StatusError {
			if s.Profile != nil {
				s.Status = StatusAuthenticated
			} else {
				s.Status = StatusAnonymous
			}
		}
	})
}

func (c *Controller) signIn(ctx context.Context, do func() (*profile.Profile, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.begin()
	p, err := do()
	if err != nil {
		return c.fail(ctx, err, true)
	}

	c.store.update(func(s *State) {
		s.Status = StatusAuthenticated
		s.Profile = p
	})
	return nil
}

// begin marks an operation in flight and clears the previous error.
func (c *Controller) begin() {
	c.store.update(func(s *State) {
		s.Status = StatusLoading
		s.Error = ""
	})
}

// fail records err. A user without a profile cannot hold a session, so
// auth.ErrProfileMissing always ends it.
func (c *Controller) fail(ctx context.Context, err error, dropProfile bool) error {
	if errors.Is(err, auth.ErrProfileMissing) {
		if endErr := c.repo.EndSession(ctx); endErr != nil {
			c.logger.Error("failed to end session", "error", endErr)
		}
		dropProfile = true
	}

	c.store.update(func(s *State) {
		s.Status = StatusError
		s.Error = err.Error()
		if dropProfile {
			s.Profile = nil
		}
	})
	return err
}

func merged(p *profile.Profile, patch profile.Patch, now time.Time) *profile.Profile {
	out := p.Clone()
	fields := out.AsPatch()
	fields.Merge(patch.Normalize())
	fields.Prune()

	out.FirstName = *fields.FirstName
	out.LastName = *fields.LastName
	out.Details = fields.Details
	if out.Injuries == nil {
		out.Injuries = profile.Injuries{}
	}

	now = now.UTC()
	out.UpdatedAt = &now
	out.OnboardingCompleted = true
	return out
}

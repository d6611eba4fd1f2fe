package profileapp

import (
	"context"
	"github.com/burenotti/go_endurance_backend/internal/app/onboarding"
	"github.com/burenotti/go_endurance_backend/internal/app/unitofwork"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"log/slog"
	"time"
)

type Service struct {
	logger    *slog.Logger
	uow       *unitofwork.UnitOfWork[*AtomicContext]
	validator *onboarding.Validator
	now       func() time.Time
}

func New(
	uow *unitofwork.UnitOfWork[*AtomicContext],
	validator *onboarding.Validator,
	logger *slog.Logger,
) *Service {
	return &Service{
		logger:    logger,
		uow:       uow,
		validator: validator,
		now:       time.Now,
	}
}

func (s *Service) GetProfileByID(ctx context.Context, id string) (p *profile.Profile, err error) {
	err = s.uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		p, err = ctx.ProfileStorage.GetByID(ctx.Context(), id)
		return err
	})
	return
}

// ApplyProfileUpdate validates the patch and merges it into the stored profile.
// Only the owner may update a profile, and the merge must leave no mandatory
// field missing.
func (s *Service) ApplyProfileUpdate(
	ctx context.Context,
	callerID string,
	profileID string,
	patch profile.Patch,
) (p *profile.Profile, err error) {
	if callerID != profileID {
		return nil, profile.ErrPermissionDenied
	}

	if err := s.validator.ValidatePatch(patch); err != nil {
		return nil, err
	}

	err = s.uow.Atomic(ctx, func(ctx *AtomicContext) error {
		current, err := ctx.ProfileStorage.GetByID(ctx.Context(), profileID)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, current, patch); err != nil {
			return err
		}
		p = current
		return ctx.Commit()
	})
	return
}

// UpdateSection saves one tab of the profile editor. The input is validated
// against the stored profile, so sport and goal gating follow saved values.
func (s *Service) UpdateSection(
	ctx context.Context,
	callerID string,
	in onboarding.StepInput,
) (p *profile.Profile, err error) {
	err = s.uow.Atomic(ctx, func(ctx *AtomicContext) error {
		current, err := ctx.ProfileStorage.GetByID(ctx.Context(), callerID)
		if err != nil {
			return err
		}

		patch, err := in.Validate(s.validator, current.AsPatch())
		if err != nil {
			return err
		}

		if err := s.apply(ctx, current, patch); err != nil {
			return err
		}
		p = current
		return ctx.Commit()
	})
	return
}

func (s *Service) apply(ctx *AtomicContext, p *profile.Profile, patch profile.Patch) error {
	if err := p.ApplyUpdate(patch, s.now()); err != nil {
		return err
	}
	return ctx.ProfileStorage.Persist(ctx.Context(), p)
}

package onboarding

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"log/slog"
)

var (
	ErrDraftNotFound = errors.New("onboarding draft not found")
	ErrStepMismatch  = errors.New("step does not match the current onboarding step")
)

type DraftStore interface {
	Load(ctx context.Context, userID string) (*Draft, error)
	Save(ctx context.Context, userID string, d *Draft) error
	Delete(ctx context.Context, userID string) error
}

type ProfileUpdater interface {
	ApplyProfileUpdate(ctx context.Context, callerID, profileID string, patch profile.Patch) (*profile.Profile, error)
}

type Service struct {
	logger    *slog.Logger
	drafts    DraftStore
	profiles  ProfileUpdater
	validator *Validator
}

func NewService(
	drafts DraftStore,
	profiles ProfileUpdater,
	validator *Validator,
	logger *slog.Logger,
) *Service {
	return &Service{
		logger:    logger,
		drafts:    drafts,
		profiles:  profiles,
		validator: validator,
	}
}

// Current returns the user's draft, or a fresh one when the wizard was not started.
func (s *Service) Current(ctx context.Context, userID string) (*Draft, error) {
	d, err := s.drafts.Load(ctx, userID)
	if errors.Is(err, ErrDraftNotFound) {
		return NewDraft(), nil
	}
	return d, err
}

// Submit validates the input of the current step. Intermediate steps advance
// the draft; the final step persists the profile and drops the draft.
func (s *Service) Submit(ctx context.Context, userID string, in StepInput) (*Draft, *profile.Profile, error) {
	d, err := s.Current(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if in.Step() != d.Step {
		return d, nil, fmt.Errorf("%w: expected step %d, got %d", ErrStepMismatch, d.Step, in.Step())
	}

	patch, err := in.Validate(s.validator, d.Data)
	if err != nil {
		return d, nil, err
	}

	if d.Step != StepPreferences {
		d.Advance(patch)
		if err := s.drafts.Save(ctx, userID, d); err != nil {
			return nil, nil, err
		}
		return d, nil, nil
	}

	payload, err := d.Finalize(patch)
	if err != nil {
		return d, nil, err
	}

	p, err := s.profiles.ApplyProfileUpdate(ctx, userID, userID, payload)
	if err != nil {
		return d, nil, err
	}

	if err := s.drafts.Delete(ctx, userID); err != nil {
		s.logger.Error("failed to delete onboarding draft", "user_id", userID, "error", err)
	}

	s.logger.Info("onboarding completed", "user_id", userID)
	return d, p, nil
}

func (s *Service) Back(ctx context.Context, userID string) (*Draft, error) {
	d, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.Retreat()
	if err := s.drafts.Save(ctx, userID, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Discard(ctx context.Context, userID string) error {
	return s.drafts.Delete(ctx, userID)
}

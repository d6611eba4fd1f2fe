package profile

import (
	"errors"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/domain"
	"strings"
	"time"
)

var (
	ErrProfileExists     = errors.New("profile already exists")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrIncompleteProfile = errors.New("profile is incomplete")
)

const (
	EventCreated   = "profile.created"
	EventUpdated   = "profile.updated"
	EventOnboarded = "profile.onboarded"
)

// IncompleteError lists the mandatory fields still missing from a profile.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrIncompleteProfile, strings.Join(e.Missing, ", "))
}

func (e *IncompleteError) Unwrap() error {
	return ErrIncompleteProfile
}

// Profile is the persisted user record.
type Profile struct {
	domain.Aggregate `json:"-" bson:"-"`

	ID        string `json:"id" bson:"_id"`
	Email     string `json:"email" bson:"email"`
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`

	Details `bson:",inline"`

	CreatedAt           time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	OnboardingCompleted bool       `json:"onboarding_completed" bson:"onboarding_completed"`
}

// New creates a profile holding only identity fields.
func New(id, email, firstName, lastName string) *Profile {
	p := &Profile{
		ID:        id,
		Email:     email,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Details:   Details{Injuries: Injuries{}},
		CreatedAt: time.Now().UTC(),
	}
	p.PushEvent(CreatedEvent{At: p.CreatedAt, ProfileID: p.ID, Email: p.Email})
	return p
}

// Missing lists the mandatory onboarding fields absent from the profile.
func (p *Profile) Missing() []string {
	return p.AsPatch().Missing()
}

// AsPatch returns the editable part of the profile.
func (p *Profile) AsPatch() Patch {
	first, last := p.FirstName, p.LastName
	return Patch{FirstName: &first, LastName: &last, Details: p.Details}
}

// ApplyUpdate normalizes the patch and merges it into the profile. Fields that
// no longer apply to the main sport or goal type are dropped. The merge is
// rejected with an *IncompleteError when mandatory fields would still be missing.
func (p *Profile) ApplyUpdate(patch Patch, now time.Time) error {
	patch = patch.Normalize()

	merged := p.AsPatch()
	merged.Merge(patch)
	merged.Prune()
	if missing := merged.Missing(); len(missing) != 0 {
		return &IncompleteError{Missing: missing}
	}

	p.FirstName = *merged.FirstName
	p.LastName = *merged.LastName
	p.Details = merged.Details
	if p.Injuries == nil {
		p.Injuries = Injuries{}
	}

	now = now.UTC()
	p.UpdatedAt = &now

	if !p.OnboardingCompleted {
		p.OnboardingCompleted = true
		p.PushEvent(OnboardedEvent{At: now, ProfileID: p.ID})
	}
	p.PushEvent(UpdatedEvent{At: now, ProfileID: p.ID})
	return nil
}

// Clone copies the profile without its pending events.
func (p *Profile) Clone() *Profile {
	return &Profile{
		ID:                  p.ID,
		Email:               p.Email,
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		Details:             p.Details,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
		OnboardingCompleted: p.OnboardingCompleted,
	}
}

type CreatedEvent struct {
	At        time.Time
	ProfileID string
	Email     string
}

func (e CreatedEvent) Type() string { return EventCreated }

func (e CreatedEvent) PublishedAt() time.Time { return e.At }

type UpdatedEvent struct {
	At        time.Time
	ProfileID string
}

func (e UpdatedEvent) Type() string { return EventUpdated }

func (e UpdatedEvent) PublishedAt() time.Time { return e.At }

type OnboardedEvent struct {
	At        time.Time
	ProfileID string
}

func (e OnboardedEvent) Type() string { return EventOnboarded }

func (e OnboardedEvent) PublishedAt() time.Time { return e.At }

package draftstorage

import (
	"context"
	"errors"
	"github.com/burenotti/go_endurance_backend/internal/app/onboarding"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"github.com/samber/lo"
	"testing"
	"time"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(time.Hour)

	if _, err := s.Load(ctx, "u1"); !errors.Is(err, onboarding.ErrDraftNotFound) {
		t.Fatalf("load missing: err = %v", err)
	}

	d := &onboarding.Draft{Step: onboarding.StepGoal, Data: profile.Patch{FirstName: lo.ToPtr("Jo")}}
	if err := s.Save(ctx, "u1", d); err != nil {
		t.Fatal(err)
	}

	// Mutating the saved draft must not leak into storage.
	d.Step = onboarding.StepPreferences

	got, err := s.Load(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Step != onboarding.StepGoal || *got.Data.FirstName != "Jo" {
		t.Errorf("draft = %+v", got)
	}

	if err := s.Delete(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, "u1"); !errors.Is(err, onboarding.ErrDraftNotFound) {
		t.Errorf("load after delete: err = %v", err)
	}
}

func TestMemoryStorageExpires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	if err := s.Save(ctx, "u1", onboarding.NewDraft()); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := s.Load(ctx, "u1"); !errors.Is(err, onboarding.ErrDraftNotFound) {
		t.Errorf("expired draft still loaded: err = %v", err)
	}
}

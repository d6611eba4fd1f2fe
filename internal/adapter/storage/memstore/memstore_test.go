package memstore

import (
	"context"
	"errors"
	"github.com/burenotti/go_endurance_backend/internal/domain/auth"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"github.com/samber/lo"
	"testing"
	"time"
)

func newUser(id, email string) *auth.User {
	now := time.Now().UTC()
	return &auth.User{UserID: id, Email: email, PasswordHash: "x", CreatedAt: now, UpdatedAt: now}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	db := New()

	tx, _ := db.Begin(ctx)
	if err := NewUserStorage(tx).Add(ctx, newUser("u1", "a@b.com")); err != nil {
		t.Fatal(err)
	}
	if err := NewProfileStorage(tx).Add(ctx, profile.New("u1", "a@b.com", "Jo", "Do")); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}

	tx, _ = db.Begin(ctx)
	if _, err := NewUserStorage(tx).GetByID(ctx, "u1"); !errors.Is(err, auth.ErrUserNotFound) {
		t.Errorf("user survived rollback: err = %v", err)
	}
	if _, err := NewProfileStorage(tx).GetByID(ctx, "u1"); !errors.Is(err, profile.ErrProfileNotFound) {
		t.Errorf("profile survived rollback: err = %v", err)
	}
}

func TestCommitChecksEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	db := New()

	tx1, _ := db.Begin(ctx)
	tx2, _ := db.Begin(ctx)
	if err := NewUserStorage(tx1).Add(ctx, newUser("u1", "same@b.com")); err != nil {
		t.Fatal(err)
	}
	if err := NewUserStorage(tx2).Add(ctx, newUser("u2", "same@b.com")); err != nil {
		t.Fatal(err)
	}

	if err := tx1.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := tx2.Commit(); !errors.Is(err, auth.ErrUserEmailDuplicate) {
		t.Errorf("second commit: err = %v", err)
	}

	tx3, _ := db.Begin(ctx)
	if err := NewUserStorage(tx3).Add(ctx, newUser("u3", "same@b.com")); !errors.Is(err, auth.ErrUserEmailDuplicate) {
		t.Errorf("add duplicate: err = %v", err)
	}
}

func TestReadsAreIsolatedCopies(t *testing.T) {
	ctx := context.Background()
	db := New()

	tx, _ := db.Begin(ctx)
	profiles := NewProfileStorage(tx)
	if err := profiles.Add(ctx, profile.New("u1", "a@b.com", "Jo", "Do")); err != nil {
		t.Fatal(err)
	}
	_ = tx.Commit()

	tx, _ = db.Begin(ctx)
	p, err := NewProfileStorage(tx).GetByID(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	p.Height = lo.ToPtr(190.0)

	tx, _ = db.Begin(ctx)
	again, _ := NewProfileStorage(tx).GetByID(ctx, "u1")
	if again.Height != nil {
		t.Errorf("unpersisted change visible: %v", *again.Height)
	}
	if again.Injuries == nil {
		t.Errorf("stored injuries must be a list")
	}
}

func TestCollectEvents(t *testing.T) {
	ctx := context.Background()
	tx, _ := New().Begin(ctx)
	profiles := NewProfileStorage(tx)

	if err := profiles.Add(ctx, profile.New("u1", "a@b.com", "Jo", "Do")); err != nil {
		t.Fatal(err)
	}
	events := profiles.CollectEvents()
	if len(events) != 1 || events[0].Type() != profile.EventCreated {
		t.Errorf("events = %v", events)
	}
	if len(profiles.CollectEvents()) != 0 {
		t.Errorf("events collected twice")
	}
}

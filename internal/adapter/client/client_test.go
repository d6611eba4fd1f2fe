package client

import (
	"context"
	"errors"
	"github.com/burenotti/go_endurance_backend/internal/adapter/api/apitest"
	"github.com/burenotti/go_endurance_backend/internal/app/authapp"
	"github.com/burenotti/go_endurance_backend/internal/app/onboarding"
	"github.com/burenotti/go_endurance_backend/internal/app/session"
	"github.com/burenotti/go_endurance_backend/internal/domain/auth"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"github.com/samber/lo"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func wizard() []onboarding.StepInput {
	return []onboarding.StepInput{
		&onboarding.BasicStep{
			FirstName:       "Jo",
			LastName:        "Do",
			BirthDate:       "1988-02-10",
			Gender:          profile.GenderMale,
			Height:          lo.ToPtr(182.0),
			Weight:          lo.ToPtr(74.0),
			ExperienceLevel: profile.ExperienceAdvanced,
			MainSport:       profile.SportTriathlon,
		},
		&onboarding.TrainingStep{
			TrainingFrequency: lo.ToPtr(9),
			WeeklyGoalHours:   lo.ToPtr(12.0),
			PreferredDays:     []profile.Weekday{profile.Monday, profile.Wednesday, profile.Saturday},
			RestingHeartRate:  lo.ToPtr(45),
			MaxHeartRate:      lo.ToPtr(186),
			RunPace:           lo.ToPtr(270),
			FTP:               lo.ToPtr(280),
			SwimPace:          lo.ToPtr(95),
		},
		&onboarding.GoalStep{
			GoalType:        profile.GoalCompetition,
			GoalTitle:       "Ironman Nice",
			GoalDate:        "2027-06-27",
			GoalTimeTarget:  "11:00:00",
			GoalDescription: "First full distance race",
		},
		&onboarding.PreferencesStep{
			Language:   profile.LanguageFrench,
			UnitSystem: profile.UnitsMetric,
			Timezone:   "Europe/Paris",
			Injuries:   profile.Injuries{"shoulder"},
		},
	}
}

func TestSessionOverHTTP(t *testing.T) {
	env := apitest.New(t)
	ctx := context.Background()
	c := New(env.URL)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	controller := session.NewController(c, session.NewStore(), logger)

	if err := controller.FetchCurrent(ctx); err != nil {
		t.Fatal(err)
	}
	if s := controller.State(); s.Status != session.StatusAnonymous {
		t.Fatalf("without tokens: %+v", s)
	}

	if err := controller.Register(ctx, "jo@example.com", "secret123", "Jo", "Do"); err != nil {
		t.Fatal(err)
	}
	if s := controller.State(); s.Status != session.StatusAuthenticated || s.Profile.Email != "jo@example.com" {
		t.Fatalf("after register: %+v", s)
	}

	for _, step := range wizard() {
		if _, _, err := c.SubmitStep(ctx, step); err != nil {
			t.Fatalf("step %d: %v", step.Step(), err)
		}
	}

	if err := controller.FetchCurrent(ctx); err != nil {
		t.Fatal(err)
	}
	p := controller.State().Profile
	if !p.OnboardingCompleted || *p.SwimPace != 95 || *p.GoalTimeTarget != "11:00:00" {
		t.Errorf("profile after wizard: %+v", p.Details)
	}

	if err := controller.UpdateProfile(ctx, profile.Patch{Details: profile.Details{Weight: lo.ToPtr(73.5)}}); err != nil {
		t.Fatal(err)
	}
	if w := *controller.State().Profile.Weight; w != 73.5 {
		t.Errorf("local weight = %v", w)
	}

	if err := controller.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if c.Tokens().AccessToken != "" {
		t.Errorf("tokens kept after logout")
	}
	if err := c.EndSession(ctx); err != nil {
		t.Errorf("ending no session: %v", err)
	}

	if err := controller.Login(ctx, "jo@example.com", "secret123"); err != nil {
		t.Fatal(err)
	}
	if w := *controller.State().Profile.Weight; w != 73.5 {
		t.Errorf("stored weight = %v", w)
	}
}

func TestErrorMapping(t *testing.T) {
	env := apitest.New(t)
	ctx := context.Background()
	c := New(env.URL)

	if _, err := c.Register(ctx, "jo@example.com", "secret123", "Jo", "Do"); err != nil {
		t.Fatal(err)
	}

	_, err := New(env.URL).Register(ctx, "jo@example.com", "secret123", "Jo", "Do")
	if !errors.Is(err, auth.ErrUserEmailDuplicate) {
		t.Errorf("duplicate: err = %v", err)
	}

	_, err = New(env.URL).Authenticate(ctx, "jo@example.com", "wrong-password")
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("credentials: err = %v", err)
	}

	_, err = New(env.URL).Register(ctx, "bad-email", "secret123", "Jo", "Do")
	var fields onboarding.FieldErrors
	if !errors.As(err, &fields) || fields["email"] == "" {
		t.Errorf("validation: err = %v", err)
	}

	err = c.ApplyProfileUpdate(ctx, "someone-else", profile.Patch{FirstName: lo.ToPtr("Al")})
	if !errors.Is(err, profile.ErrPermissionDenied) {
		t.Errorf("permission: err = %v", err)
	}

	p, _ := c.CurrentProfile(ctx)
	err = c.ApplyProfileUpdate(ctx, p.ID, profile.Patch{FirstName: lo.ToPtr("Al")})
	var incomplete *profile.IncompleteError
	if !errors.As(err, &incomplete) || len(incomplete.Missing) == 0 {
		t.Errorf("incomplete: err = %v", err)
	}

	_, _, err = c.SubmitStep(ctx, &onboarding.GoalStep{})
	if !errors.Is(err, onboarding.ErrStepMismatch) {
		t.Errorf("step mismatch: err = %v", err)
	}
}

func TestCurrentProfileMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"profile not found","code":"not_found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokens(authTokens()))
	if _, err := c.CurrentProfile(context.Background()); !errors.Is(err, auth.ErrProfileMissing) {
		t.Errorf("err = %v", err)
	}
}

func TestCurrentProfileRejectedSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired","code":"unauthorized"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokens(authTokens()))
	p, err := c.CurrentProfile(context.Background())
	if p != nil || err != nil {
		t.Errorf("profile = %v, err = %v", p, err)
	}
	if c.Tokens().AccessToken != "" {
		t.Errorf("rejected tokens kept")
	}
}

func authTokens() authapp.Tokens {
	return authapp.Tokens{AccessToken: "access", RefreshToken: "refresh"}
}

// Package apitest runs the API on in-memory storage for tests.
package apitest

import (
	"github.com/burenotti/go_endurance_backend/internal/adapter/api"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage"
	draftstorage "github.com/burenotti/go_endurance_backend/internal/adapter/storage/drafts"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage/memstore"
	"github.com/burenotti/go_endurance_backend/internal/app/authapp"
	"github.com/burenotti/go_endurance_backend/internal/app/messagebus"
	"github.com/burenotti/go_endurance_backend/internal/app/onboarding"
	"github.com/burenotti/go_endurance_backend/internal/app/profileapp"
	"github.com/burenotti/go_endurance_backend/internal/app/unitofwork"
	"golang.org/x/crypto/bcrypt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"
)

type Env struct {
	*httptest.Server
	DB     *memstore.DB
	Drafts *draftstorage.MemoryStorage
}

// New starts a server backed by memstore. It is closed with the test.
func New(t *testing.T, opts ...api.Option) *Env {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := messagebus.New(logger)
	db := memstore.New()
	drafts := draftstorage.NewMemoryStorage(time.Hour)
	validator := onboarding.NewValidator("UTC")

	storages := authapp.Storages{
		Users:    func(tx storage.Transaction) authapp.UserStorage { return memstore.NewUserStorage(tx) },
		Profiles: func(tx storage.Transaction) authapp.ProfileStorage { return memstore.NewProfileStorage(tx) },
	}
	authService := authapp.NewService(
		&authapp.Authorizer{
			Cost:             bcrypt.MinCost,
			Secret:           "test-secret",
			AccessTokenTTL:   time.Minute,
			AuthorizationTTL: time.Hour,
		},
		unitofwork.New[*authapp.AtomicContext](db, storages.NewAtomicContext, bus, logger),
		logger,
	)

	profileFactory := profileapp.NewAtomicContextFactory(func(tx storage.Transaction) profileapp.ProfileStorage {
		return memstore.NewProfileStorage(tx)
	})
	profileService := profileapp.New(
		unitofwork.New[*profileapp.AtomicContext](db, profileFactory, bus, logger),
		validator,
		logger,
	)

	options := append([]api.Option{
		api.Logger(logger),
		api.Validator(validator),
		api.AuthService(authService),
		api.ProfileService(profileService),
		api.OnboardingService(onboarding.NewService(drafts, profileService, validator, logger)),
	}, opts...)

	srv := httptest.NewServer(api.NewServer(options...))
	t.Cleanup(func() {
		srv.Close()
		bus.Close()
	})
	return &Env{Server: srv, DB: db, Drafts: drafts}
}

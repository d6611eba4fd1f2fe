package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/app/authapp"
	"github.com/burenotti/go_endurance_backend/internal/app/onboarding"
	"github.com/burenotti/go_endurance_backend/internal/app/profileapp"
	"github.com/labstack/echo/v4"
	slogecho "github.com/samber/slog-echo"
	"log/slog"
	"net/http"
	"time"
)

var (
	ErrBadRequest = errors.New("bad request")
)

type Server struct {
	handler           *echo.Echo
	logger            *slog.Logger
	addr              string
	authService       *authapp.Service
	profileService    *profileapp.Service
	onboardingService *onboarding.Service
	validator         *onboarding.Validator
	authRateLimit     RateLimit
}

func NewServer(opt ...Option) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Server.WriteTimeout = 10 * time.Second
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.IdleTimeout = 10 * time.Second
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.MaxHeaderBytes = 4096

	s := &Server{
		handler: e,
		logger:  slog.Default(),
	}

	for _, opt := range opt {
		opt(s)
	}

	if s.validator == nil {
		s.validator = onboarding.NewValidator("")
	}

	e.Use(slogecho.NewWithConfig(s.logger, slogecho.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelInfo,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	}))
	s.Mount()
	return s
}

func (s *Server) Mount() {
	s.MountAuth()
	s.MountProfile()
	s.MountOnboarding()
}

func (s *Server) Start() error {
	return s.handler.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.handler.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// bind decodes the request into i and validates it. Rule violations are
// returned as onboarding.FieldErrors.
func (s *Server) bind(ctx echo.Context, i interface{}) error {
	if err := ctx.Bind(i); err != nil {
		return fmt.Errorf("%w: malformed body", ErrBadRequest)
	}
	return s.validator.Struct(i)
}

func currentUser(c echo.Context) *authapp.AccessTokenData {
	return c.Get(KeyCurrentUser).(*authapp.AccessTokenData)
}

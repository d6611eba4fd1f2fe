package api

import (
	"github.com/burenotti/go_endurance_backend/internal/app/authapp"
	"github.com/burenotti/go_endurance_backend/internal/app/onboarding"
	"github.com/burenotti/go_endurance_backend/internal/app/profileapp"
	"log/slog"
	"net"
	"strconv"
)

type Option func(*Server)

func Addr(host string, port int) Option {
	return func(s *Server) {
		s.addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
}

func Logger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func AuthService(service *authapp.Service) Option {
	return func(s *Server) {
		s.authService = service
	}
}

func ProfileService(service *profileapp.Service) Option {
	return func(s *Server) {
		s.profileService = service
	}
}

func OnboardingService(service *onboarding.Service) Option {
	return func(s *Server) {
		s.onboardingService = service
	}
}

func Validator(v *onboarding.Validator) Option {
	return func(s *Server) {
		s.validator = v
	}
}

// AuthRateLimit limits /auth requests per client IP. A zero rate disables it.
func AuthRateLimit(l RateLimit) Option {
	return func(s *Server) {
		s.authRateLimit = l
	}
}

package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/app/authapp"
	"github.com/burenotti/go_endurance_backend/internal/domain/auth"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const KeyCurrentUser = "current_user"

type AccessChecker interface {
	CheckAccessToken(ctx context.Context, accessToken string) (*authapp.AccessTokenData, error)
}

// LoginRequired accepts bearer tokens whose authorization is still open.
func LoginRequired(checker AccessChecker, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return JsonError(c, http.StatusUnauthorized, CodeUnauthorized, "invalid Authorization header")
			}
			user, err := checker.CheckAccessToken(c.Request().Context(), parts[1])
			if err != nil {
				if errors.Is(err, authapp.ErrAccessTokenInvalid) || errors.Is(err, auth.ErrUnauthorized) {
					return JsonError(c, http.StatusUnauthorized, CodeUnauthorized, err)
				}
				logger.Error("cannot check access token", "error", err)
				return JsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
			}
			c.Set(KeyCurrentUser, user)
			return next(c)
		}
	}
}

type RateLimit struct {
	RPS   float64
	Burst int
}

// RateLimited limits requests per client IP. Idle visitors are forgotten after
// three minutes.
func RateLimited(l RateLimit) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(l.RPS),
		Burst:     l.Burst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return JsonError(c, http.StatusForbidden, CodeBadRequest, fmt.Sprintf("cannot identify client: %v", err))
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return JsonError(c, http.StatusTooManyRequests, CodeRateLimited, "too many requests")
		},
	})
}

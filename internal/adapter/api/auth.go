package api

import (
	"github.com/burenotti/go_endurance_backend/internal/app/authapp"
	"github.com/burenotti/go_endurance_backend/internal/domain/auth"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"github.com/labstack/echo/v4"
	"github.com/mileusna/useragent"
	"net/http"
)

func (s *Server) MountAuth() {
	loginRequired := LoginRequired(s.authService, s.logger)

	var middlewares []echo.MiddlewareFunc
	if s.authRateLimit.RPS > 0 {
		middlewares = append(middlewares, RateLimited(s.authRateLimit))
	}
	authRoutes := s.handler.Group("/auth", middlewares...)

	authRoutes.POST("/login", s.Login)
	authRoutes.POST("/sign-up", s.SignUp)
	authRoutes.POST("/refresh", s.Refresh)
	authRoutes.POST("/logout", s.Logout, loginRequired)
}

func device(c echo.Context) auth.Device {
	agent := useragent.Parse(c.Request().UserAgent())
	return auth.Device{
		Browser:   agent.Name,
		OS:        agent.OS,
		IPAddress: c.RealIP(),
		Model:     agent.Device,
	}
}

type sessionResp struct {
	authapp.Tokens
	Profile *profile.Profile `json:"profile"`
}

type loginReq struct {
	Email    string `json:"email" form:"username" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

func (s *Server) Login(c echo.Context) error {
	var b loginReq
	if err := s.bind(c, &b); err != nil {
		return s.Fail(c, err)
	}

	session, err := s.authService.Login(c.Request().Context(), b.Email, b.Password, device(c))
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, &sessionResp{
		Tokens:  session.Tokens,
		Profile: session.Profile,
	})
}

type signUpReq struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,max=72"`
	FirstName string `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,min=2,max=100"`
}

func (s *Server) SignUp(c echo.Context) error {
	var b signUpReq
	if err := s.bind(c, &b); err != nil {
		return s.Fail(c, err)
	}

	session, err := s.authService.Register(c.Request().Context(), authapp.Registration{
		Email:     b.Email,
		Password:  b.Password,
		FirstName: b.FirstName,
		LastName:  b.LastName,
	}, device(c))
	if err != nil {
		return s.Fail(c, err)
	}

	return c.JSON(http.StatusCreated, &sessionResp{
		Tokens:  session.Tokens,
		Profile: session.Profile,
	})
}

func (s *Server) Logout(c echo.Context) error {
	u := currentUser(c)
	if err := s.authService.Logout(c.Request().Context(), u.UserID, u.Authorization); err != nil {
		return s.Fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (s *Server) Refresh(c echo.Context) error {
	var b refreshReq
	if err := s.bind(c, &b); err != nil {
		return s.Fail(c, err)
	}

	tokens, err := s.authService.Refresh(c.Request().Context(), b.RefreshToken)
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

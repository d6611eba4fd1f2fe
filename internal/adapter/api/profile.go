package api

import (
	"github.com/burenotti/go_endurance_backend/internal/app/onboarding"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"github.com/labstack/echo/v4"
	"net/http"
)

func (s *Server) MountProfile() {
	loginRequired := LoginRequired(s.authService, s.logger)
	profiles := s.handler.Group("/profiles", loginRequired)

	profiles.GET("/me", s.GetMyProfile)
	profiles.PUT("/me/sections/:section", s.UpdateMySection)
	profiles.PATCH("/:profile_id", s.UpdateProfile)
}

func (s *Server) GetMyProfile(c echo.Context) error {
	user := currentUser(c)

	p, err := s.profileService.GetProfileByID(c.Request().Context(), user.UserID)
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type UpdateProfileRequest struct {
	ProfileID string `param:"profile_id" json:"-"`
	profile.Patch
}

func (s *Server) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return s.Fail(c, ErrBadRequest)
	}
	user := currentUser(c)

	p, err := s.profileService.ApplyProfileUpdate(c.Request().Context(), user.UserID, req.ProfileID, req.Patch)
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) UpdateMySection(c echo.Context) error {
	step, err := onboarding.ParseSection(c.Param("section"))
	if err != nil {
		return s.Fail(c, err)
	}

	in, err := onboarding.NewStepInput(step)
	if err != nil {
		return s.Fail(c, err)
	}
	if err := c.Bind(in); err != nil {
		return s.Fail(c, ErrBadRequest)
	}

	p, err := s.profileService.UpdateSection(c.Request().Context(), currentUser(c).UserID, in)
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

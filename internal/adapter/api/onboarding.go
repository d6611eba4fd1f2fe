package api

import (
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/app/onboarding"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"github.com/labstack/echo/v4"
	"net/http"
	"strconv"
)

func (s *Server) MountOnboarding() {
	loginRequired := LoginRequired(s.authService, s.logger)
	wizard := s.handler.Group("/onboarding", loginRequired)

	wizard.GET("", s.GetDraft)
	wizard.DELETE("", s.DiscardDraft)
	wizard.POST("/back", s.StepBack)
	wizard.POST("/steps/:step", s.SubmitStep)
}

type SubmitStepResponse struct {
	Draft     *onboarding.Draft `json:"draft,omitempty"`
	Profile   *profile.Profile  `json:"profile,omitempty"`
	Completed bool              `json:"completed"`
}

func (s *Server) GetDraft(c echo.Context) error {
	d, err := s.onboardingService.Current(c.Request().Context(), currentUser(c).UserID)
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) SubmitStep(c echo.Context) error {
	n, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		return s.Fail(c, fmt.Errorf("%w: %q", onboarding.ErrInvalidStep, c.Param("step")))
	}

	in, err := onboarding.NewStepInput(onboarding.Step(n))
	if err != nil {
		return s.Fail(c, err)
	}
	if err := c.Bind(in); err != nil {
		return s.Fail(c, ErrBadRequest)
	}

	d, p, err := s.onboardingService.Submit(c.Request().Context(), currentUser(c).UserID, in)
	if err != nil {
		return s.Fail(c, err)
	}

	if p != nil {
		return c.JSON(http.StatusOK, &SubmitStepResponse{Profile: p, Completed: true})
	}
	return c.JSON(http.StatusOK, &SubmitStepResponse{Draft: d})
}

func (s *Server) StepBack(c echo.Context) error {
	d, err := s.onboardingService.Back(c.Request().Context(), currentUser(c).UserID)
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) DiscardDraft(c echo.Context) error {
	if err := s.onboardingService.Discard(c.Request().Context(), currentUser(c).UserID); err != nil {
		return s.Fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

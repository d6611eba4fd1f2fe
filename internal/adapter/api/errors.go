package api

import (
	"errors"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/app/authapp"
	"github.com/burenotti/go_endurance_backend/internal/app/onboarding"
	"github.com/burenotti/go_endurance_backend/internal/domain/auth"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"github.com/labstack/echo/v4"
	"net/http"
)

const (
	CodeValidation         = "validation_error"
	CodeBadRequest         = "bad_request"
	CodeDuplicateEmail     = "duplicate_email"
	CodeWeakCredential     = "weak_credential"
	CodeInvalidCredentials = "invalid_credentials"
	CodeUnauthorized       = "unauthorized"
	CodeProfileMissing     = "profile_missing"
	CodeNotFound           = "not_found"
	CodePermissionDenied   = "permission_denied"
	CodeIncompleteProfile  = "incomplete_profile"
	CodeStepMismatch       = "step_mismatch"
	CodeRateLimited        = "rate_limited"
	CodeInternal           = "internal_error"
)

type JsonErrorModel struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func JsonError(c echo.Context, status int, code string, content any) error {
	data := &JsonErrorModel{Message: fmt.Sprintf("%v", content), Code: code}
	return c.JSON(status, data)
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// Order matters: wrapped sentinels come before the errors they wrap.
var errorMappings = []errorMapping{
	{auth.ErrUserEmailDuplicate, http.StatusConflict, CodeDuplicateEmail},
	{auth.ErrUserExists, http.StatusConflict, CodeDuplicateEmail},
	{auth.ErrWeakCredential, http.StatusBadRequest, CodeWeakCredential},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
	{auth.ErrProfileMissing, http.StatusConflict, CodeProfileMissing},
	{auth.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
	{authapp.ErrAccessTokenInvalid, http.StatusUnauthorized, CodeUnauthorized},
	{profile.ErrPermissionDenied, http.StatusForbidden, CodePermissionDenied},
	{profile.ErrProfileNotFound, http.StatusNotFound, CodeNotFound},
	{onboarding.ErrDraftNotFound, http.StatusNotFound, CodeNotFound},
	{onboarding.ErrInvalidSection, http.StatusNotFound, CodeNotFound},
	{onboarding.ErrInvalidStep, http.StatusNotFound, CodeNotFound},
	{onboarding.ErrStepMismatch, http.StatusConflict, CodeStepMismatch},
	{ErrBadRequest, http.StatusBadRequest, CodeBadRequest},
}

// Fail writes err as a JSON error response.
func (s *Server) Fail(c echo.Context, err error) error {
	var fields onboarding.FieldErrors
	if errors.As(err, &fields) {
		return c.JSON(http.StatusUnprocessableEntity, &JsonErrorModel{
			Message: "validation failed",
			Code:    CodeValidation,
			Fields:  fields,
		})
	}

	var incomplete *profile.IncompleteError
	if errors.As(err, &incomplete) {
		return c.JSON(http.StatusUnprocessableEntity, &JsonErrorModel{
			Message: profile.ErrIncompleteProfile.Error(),
			Code:    CodeIncompleteProfile,
			Fields:  onboarding.Required(incomplete.Missing),
		})
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return JsonError(c, m.status, m.code, m.err)
		}
	}

	s.logger.Error("request failed", "path", c.Path(), "error", err)
	return JsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
}

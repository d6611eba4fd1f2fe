// Package client talks to the API over HTTP. Client implements
// session.Repository and keeps the tokens of the current session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/adapter/api"
	"github.com/burenotti/go_endurance_backend/internal/app/authapp"
	"github.com/burenotti/go_endurance_backend/internal/app/onboarding"
	"github.com/burenotti/go_endurance_backend/internal/domain/auth"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"github.com/samber/lo"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var (
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// codeErrors maps API error codes back to the errors the server started from.
var codeErrors = map[string]error{
	api.CodeDuplicateEmail:     auth.ErrUserEmailDuplicate,
	api.CodeWeakCredential:     auth.ErrWeakCredential,
	api.CodeInvalidCredentials: auth.ErrInvalidCredentials,
	api.CodeUnauthorized:       auth.ErrUnauthorized,
	api.CodeProfileMissing:     auth.ErrProfileMissing,
	api.CodeNotFound:           profile.ErrProfileNotFound,
	api.CodePermissionDenied:   profile.ErrPermissionDenied,
	api.CodeStepMismatch:       onboarding.ErrStepMismatch,
}

// Error is a failed API call.
type Error struct {
	Status  int
	Code    string
	Message string
	err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

type Client struct {
	baseURL string
	http    *http.Client

	mu     sync.RWMutex
	tokens authapp.Tokens
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTokens resumes a session stored elsewhere.
func WithTokens(t authapp.Tokens) Option {
	return func(cl *Client) {
		cl.tokens = t
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Tokens() authapp.Tokens {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

func (c *Client) setTokens(t authapp.Tokens) {
	c.mu.Lock()
	c.tokens = t
	c.mu.Unlock()
}

type sessionResp struct {
	authapp.Tokens
	Profile *profile.Profile `json:"profile"`
}

func (c *Client) Register(ctx context.Context, email, password, firstName, lastName string) (*profile.Profile, error) {
	var resp sessionResp
	err := c.do(ctx, http.MethodPost, "/auth/sign-up", map[string]string{
		"email":      email,
		"password":   password,
		"first_name": firstName,
		"last_name":  lastName,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.setTokens(resp.Tokens)
	return resp.Profile, nil
}

func (c *Client) Authenticate(ctx context.Context, email, password string) (*profile.Profile, error) {
	var resp sessionResp
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.setTokens(resp.Tokens)
	return resp.Profile, nil
}

// Refresh replaces the access token using the refresh token.
func (c *Client) Refresh(ctx context.Context) error {
	refresh := c.Tokens().RefreshToken
	if refresh == "" {
		return auth.ErrUnauthorized
	}

	var tokens authapp.Tokens
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": refresh}, &tokens); err != nil {
		return err
	}
	c.setTokens(tokens)
	return nil
}

// EndSession logs out and forgets the tokens. A session the server already
// rejects counts as ended.
func (c *Client) EndSession(ctx context.Context) error {
	if c.Tokens().AccessToken == "" {
		return nil
	}

	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if err != nil && !errors.Is(err, auth.ErrUnauthorized) {
		return err
	}
	c.setTokens(authapp.Tokens{})
	return nil
}

// CurrentProfile returns nil, nil when there is no session or the server no
// longer accepts it. A session without a profile yields auth.ErrProfileMissing.
func (c *Client) CurrentProfile(ctx context.Context) (*profile.Profile, error) {
	if c.Tokens().AccessToken == "" {
		return nil, nil
	}

	var p profile.Profile
	err := c.do(ctx, http.MethodGet, "/profiles/me", nil, &p)
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		c.setTokens(authapp.Tokens{})
		return nil, nil
	case errors.Is(err, profile.ErrProfileNotFound):
		return nil, fmt.Errorf("%w: %w", auth.ErrProfileMissing, err)
	case err != nil:
		return nil, err
	}
	return &p, nil
}

func (c *Client) ApplyProfileUpdate(ctx context.Context, profileID string, patch profile.Patch) error {
	return c.do(ctx, http.MethodPatch, "/profiles/"+url.PathEscape(profileID), patch, nil)
}

// UpdateSection saves one tab of the profile editor.
func (c *Client) UpdateSection(ctx context.Context, in onboarding.StepInput) (*profile.Profile, error) {
	var p profile.Profile
	if err := c.do(ctx, http.MethodPut, "/profiles/me/sections/"+in.Step().Section(), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Draft(ctx context.Context) (*onboarding.Draft, error) {
	var d onboarding.Draft
	if err := c.do(ctx, http.MethodGet, "/onboarding", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// SubmitStep sends one wizard step. The profile is returned once the last
// step completes the wizard.
func (c *Client) SubmitStep(ctx context.Context, in onboarding.StepInput) (*onboarding.Draft, *profile.Profile, error) {
	var resp api.SubmitStepResponse
	path := "/onboarding/steps/" + strconv.Itoa(int(in.Step()))
	if err := c.do(ctx, http.MethodPost, path, in, &resp); err != nil {
		return nil, nil, err
	}
	return resp.Draft, resp.Profile, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Tokens().AccessToken; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var m api.JsonErrorModel
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return &Error{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("%s: status %d", ErrUnexpectedResponse, resp.StatusCode),
			err:     ErrUnexpectedResponse,
		}
	}

	switch m.Code {
	case api.CodeValidation:
		return onboarding.FieldErrors(m.Fields)
	case api.CodeIncompleteProfile:
		missing := lo.Keys(m.Fields)
		sort.Strings(missing)
		return &profile.IncompleteError{Missing: missing}
	}

	return &Error{
		Status:  resp.StatusCode,
		Code:    m.Code,
		Message: m.Message,
		err:     codeErrors[m.Code],
	}
}

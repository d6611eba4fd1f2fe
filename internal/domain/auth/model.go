package auth

import (
	"errors"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/domain"
	"strings"
	"time"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrDeviceExists        = errors.New("device already exists")
	ErrAuthorizationExists = errors.New("authorization already exists")
	ErrUserEmailDuplicate  = fmt.Errorf("%w: email is not unique", ErrUserExists)
	ErrInvalidCredentials  = errors.New("email or password is invalid")
	ErrWeakCredential      = errors.New("password is too weak")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrProfileMissing      = errors.New("user has no profile")
)

const (
	EventCreated  = "user.created"
	EventNewLogin = "user.login"
	EventLogout   = "user.logout"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

type Authorizer interface {
	Hash(password string) string
	Authorize(u *User, password string, dev Device) (*Authorization, error)
}

type Device struct {
	Browser   string `diff:"browser"`
	OS        string `diff:"os"`
	IPAddress string `diff:"ip_address"`
	Model     string `diff:"device_model"`
}

type Authorization struct {
	ID         string     `diff:"-"`
	Secret     string     `diff:"-"`
	CreatedAt  time.Time  `diff:"-"`
	ValidUntil time.Time  `diff:"valid_until"`
	LogoutAt   *time.Time `diff:"logout_at"`
	Device     Device     `diff:"-"`
}

func (a *Authorization) IsActive() bool {
	return time.Now().Before(a.ValidUntil) && a.LogoutAt == nil
}

type User struct {
	domain.Aggregate `diff:"-"`
	UserID           string           `diff:"-"`
	Email            string           `diff:"-"`
	PasswordHash     string           `diff:"password_hash"`
	CreatedAt        time.Time        `diff:"-"`
	UpdatedAt        time.Time        `diff:"updated_at"`
	Authorizations   []*Authorization `diff:"-"`
}

// NormalizeEmail lower-cases and trims an address so uniqueness checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckPassword enforces the registration password policy.
func CheckPassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakCredential, MinPasswordLength)
	}
	return nil
}

func (u *User) GetAuthByID(authId string) *Authorization {
	for _, a := range u.Authorizations {
		if a.ID == authId {
			return a
		}
	}
	return nil
}

func (u *User) GetAuthBySecret(secret string) *Authorization {
	for _, a := range u.Authorizations {
		if a.Secret == secret {
			return a
		}
	}
	return nil
}

func NewUser(
	userID string,
	email,
	password string,
	hasher Authorizer,
) (*User, error) {
	if err := CheckPassword(password); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &User{
		UserID:       userID,
		Email:        NormalizeEmail(email),
		PasswordHash: hasher.Hash(password),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	u.PushEvent(CreatedEvent{
		At:     u.CreatedAt,
		UserID: u.UserID,
		Email:  u.Email,
	})
	return u, nil
}

func (u *User) Authorize(a Authorizer, password string, dev Device) (*Authorization, error) {
	authorization, err := a.Authorize(u, password, dev)
	if err != nil {
		return nil, err
	}

	u.Authorizations = append(u.Authorizations, authorization)

	u.PushEvent(LoginEvent{
		At:     time.Now().UTC(),
		UserID: u.UserID,
		ID:     authorization.ID,
		Device: authorization.Device,
	})

	return authorization, nil
}

// Logout closes the authorization. Closing an already closed one is a no-op.
func (u *User) Logout(authId string) error {
	a := u.GetAuthByID(authId)

	if a == nil {
		return fmt.Errorf("%w: provided identifier not found", ErrUnauthorized)
	}

	if a.LogoutAt != nil {
		return nil
	}

	now := time.Now().UTC()
	a.LogoutAt = &now

	u.PushEvent(LogoutEvent{
		At:     now,
		UserID: u.UserID,
		ID:     a.ID,
	})

	return nil
}

type CreatedEvent struct {
	At     time.Time
	UserID string
	Email  string
}

func (e CreatedEvent) Type() string {
	return EventCreated
}

func (e CreatedEvent) PublishedAt() time.Time {
	return e.At
}

type LoginEvent struct {
	At     time.Time
	UserID string
	ID     string
	Device Device
}

func (e LoginEvent) Type() string {
	return EventNewLogin
}

func (e LoginEvent) PublishedAt() time.Time {
	return e.At
}

type LogoutEvent struct {
	At     time.Time
	UserID string
	ID     string
}

func (e LogoutEvent) Type() string {
	return EventLogout
}

func (e LogoutEvent) PublishedAt() time.Time {
	return e.At
}

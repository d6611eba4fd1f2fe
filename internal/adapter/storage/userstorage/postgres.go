package userstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage/pgutil"
	"github.com/burenotti/go_endurance_backend/internal/domain"
	"github.com/burenotti/go_endurance_backend/internal/domain/auth"
	"github.com/leporo/sqlf"
	"log/slog"
	"time"
)

type PostgresStorage struct {
	db     sqlf.Executor
	logger *slog.Logger
	seen   storage.Seen[*auth.User]
}

func NewPostgresStorage(db sqlf.Executor, logger *slog.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:     db,
		logger: logger,
	}
}

func (s *PostgresStorage) Add(ctx context.Context, u *auth.User) error {
	q := sqlf.InsertInto("users").
		Set("user_id", u.UserID).
		Set("email", u.Email).
		Set("password_hash", u.PasswordHash).
		Set("created_at", u.CreatedAt).
		Set("updated_at", u.UpdatedAt)

	if _, err := q.ExecAndClose(ctx, s.db); err != nil {
		switch {
		case pgutil.ViolatesConstraint(err, "users_email_key"):
			return auth.ErrUserEmailDuplicate
		case pgutil.ViolatesConstraint(err, "users_pkey"):
			return errors.Join(fmt.Errorf("user exists: %w", err), auth.ErrUserExists)
		}
		return storage.InternalError(err)
	}

	for _, a := range u.Authorizations {
		if err := s.addAuth(ctx, u.UserID, a); err != nil {
			return err
		}
	}

	s.seen.Mark(u.UserID, u)

	return nil
}

func (s *PostgresStorage) addAuth(ctx context.Context, userId string, a *auth.Authorization) error {
	addAuth := sqlf.InsertInto("authorizations").
		Set("authorization_id", a.ID).
		Set("secret", a.Secret).
		Set("logout_at", a.LogoutAt).
		Set("created_at", a.CreatedAt).
		Set("valid_until", a.ValidUntil).
		Set("user_id", userId)

	addDevice := sqlf.InsertInto("devices").
		Set("authorization_id", a.ID).
		Set("os", a.Device.OS).
		Set("device_model", a.Device.Model).
		Set("ip_address", a.Device.IPAddress).
		Set("browser", a.Device.Browser)

	if _, err := addAuth.ExecAndClose(ctx, s.db); err != nil {
		if pgutil.IsIntegrityViolation(err) {
			return auth.ErrAuthorizationExists
		}
		return storage.InternalError(err)
	}

	if _, err := addDevice.ExecAndClose(ctx, s.db); err != nil {
		if pgutil.IsIntegrityViolation(err) {
			return auth.ErrDeviceExists
		}
		return storage.InternalError(err)
	}

	return nil
}

func (s *PostgresStorage) get(
	ctx context.Context,
	whereClause string,
	whereArgs ...any,
) ([]*auth.User, error) {
	var tmp userWithAuthRow

	q := sqlf.From("users u").
		LeftJoin("authorizations a", "u.user_id = a.user_id").
		LeftJoin("devices d", "d.authorization_id = a.authorization_id").
		Where(whereClause, whereArgs...).
		OrderBy("a.created_at").
		Select("u.user_id").To(&tmp.UserID).
		Select("u.email").To(&tmp.Email).
		Select("u.password_hash").To(&tmp.PasswordHash).
		Select("u.created_at").To(&tmp.CreatedAt).
		Select("u.updated_at").To(&tmp.UpdatedAt).
		Select("a.authorization_id").To(&tmp.AuthorizationID).
		Select("a.secret").To(&tmp.Secret).
		Select("a.valid_until").To(&tmp.AuthValidUntil).
		Select("a.logout_at").To(&tmp.LogoutAt).
		Select("a.created_at").To(&tmp.AuthCreatedAt).
		Select("d.os").To(&tmp.OS).
		Select("d.browser").To(&tmp.Browser).
		Select("d.device_model").To(&tmp.Model).
		Select("d.ip_address").To(&tmp.IpAddress)
	defer q.Close()

	var fetchedRows []userWithAuthRow

	err := q.Query(ctx, s.db, func(rows *sql.Rows) {
		fetchedRows = append(fetchedRows, tmp)
	})
	if err != nil {
		return nil, storage.InternalError(err)
	}

	return rowsToDomain(fetchedRows), nil
}

func (s *PostgresStorage) getOne(ctx context.Context, whereClause string, arg any) (*auth.User, error) {
	users, err := s.get(ctx, whereClause, arg)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, auth.ErrUserNotFound
	}
	s.seen.Mark(users[0].UserID, users[0])
	return users[0], nil
}

func (s *PostgresStorage) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.getOne(ctx, "u.email = ?", auth.NormalizeEmail(email))
}

func (s *PostgresStorage) GetByID(ctx context.Context, userId string) (*auth.User, error) {
	return s.getOne(ctx, "u.user_id = ?", userId)
}

func (s *PostgresStorage) GetByAuthID(ctx context.Context, id string) (*auth.User, error) {
	return s.getOne(ctx, "u.user_id = (SELECT user_id FROM authorizations WHERE authorization_id = ?)", id)
}

func (s *PostgresStorage) GetByAuthSecret(ctx context.Context, secret string) (*auth.User, error) {
	return s.getOne(ctx, "u.user_id = (SELECT user_id FROM authorizations WHERE secret = ?)", secret)
}

func (s *PostgresStorage) Persist(ctx context.Context, u *auth.User) error {
	users, err := s.get(ctx, "u.user_id = ?", u.UserID)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return fmt.Errorf("can't persist auth data: %w", auth.ErrUserNotFound)
	}
	dbState := users[0]

	q, err := pgutil.UpdateQuery("users", "user_id = ?", u.UserID, dbState, u)
	if err != nil {
		return storage.InternalError(err)
	}
	if q != nil {
		res, err := q.ExecAndClose(ctx, s.db)
		if err := pgutil.AssertUpdated(res, err, auth.ErrUserNotFound); err != nil {
			return err
		}
	}

	dbAuthSet := make(map[string]*auth.Authorization)
	for _, a := range dbState.Authorizations {
		dbAuthSet[a.ID] = a
	}

	for _, a := range u.Authorizations {
		if source, ok := dbAuthSet[a.ID]; !ok {
			if err := s.addAuth(ctx, u.UserID, a); err != nil {
				return err
			}
		} else {
			if err := s.persistAuth(ctx, source, a); err != nil {
				return err
			}
		}
	}

	s.seen.Mark(u.UserID, u)
	return nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.seen.Collect()
}

func (s *PostgresStorage) Close() error {
	s.seen.Clear()
	return nil
}

func (s *PostgresStorage) persistAuth(ctx context.Context, source, changed *auth.Authorization) error {
	q, err := pgutil.UpdateQuery("authorizations", "authorization_id = ?", source.ID, source, changed)
	if err != nil {
		return storage.InternalError(err)
	}
	if q != nil {
		if _, err := q.ExecAndClose(ctx, s.db); err != nil {
			return storage.InternalError(err)
		}
	}
	return s.persistDevice(ctx, source.ID, &source.Device, &changed.Device)
}

func (s *PostgresStorage) persistDevice(ctx context.Context, id string, source, changed *auth.Device) error {
	q, err := pgutil.UpdateQuery("devices", "authorization_id = ?", id, source, changed)
	if err != nil {
		return storage.InternalError(err)
	}
	if q == nil {
		return nil
	}

	if _, err := q.ExecAndClose(ctx, s.db); err != nil {
		return storage.InternalError(err)
	}
	return nil
}

type userWithAuthRow struct {
	UserID       string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	AuthorizationID *string
	Secret          *string
	LogoutAt        *time.Time
	AuthCreatedAt   *time.Time
	AuthValidUntil  *time.Time

	IpAddress *string
	Browser   *string
	OS        *string
	Model     *string
}

func rowsToDomain(rows []userWithAuthRow) []*auth.User {
	usersMap := make(map[string]*auth.User)
	var order []string

	for _, row := range rows {
		if _, ok := usersMap[row.UserID]; !ok {
			usersMap[row.UserID] = &auth.User{
				UserID:         row.UserID,
				Email:          row.Email,
				PasswordHash:   row.PasswordHash,
				CreatedAt:      row.CreatedAt,
				UpdatedAt:      row.UpdatedAt,
				Authorizations: make([]*auth.Authorization, 0),
			}
			order = append(order, row.UserID)
		}
		if row.AuthorizationID != nil {
			a := &auth.Authorization{
				ID:         *row.AuthorizationID,
				Secret:     deref(row.Secret),
				CreatedAt:  deref(row.AuthCreatedAt),
				ValidUntil: deref(row.AuthValidUntil),
				LogoutAt:   row.LogoutAt,
				Device: auth.Device{
					Browser:   deref(row.Browser),
					OS:        deref(row.OS),
					IPAddress: deref(row.IpAddress),
					Model:     deref(row.Model),
				},
			}
			usersMap[row.UserID].Authorizations = append(usersMap[row.UserID].Authorizations, a)
		}
	}

	users := make([]*auth.User, 0, len(usersMap))
	for _, id := range order {
		users = append(users, usersMap[id])
	}
	return users
}

func deref[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

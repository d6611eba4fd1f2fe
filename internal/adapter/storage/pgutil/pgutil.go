package pgutil

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"
)

func ViolatesConstraint(err error, constraintName string) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) &&
		pgErr.ConstraintName == constraintName
}

func IsIntegrityViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code)
}

// MakeUpdateQuery adds a SET clause for every top level change in the log.
// Deleted values are written as NULL.
func MakeUpdateQuery(stmt *sqlf.Stmt, updates diff.Changelog) *sqlf.Stmt {
	for _, upd := range updates {
		if len(upd.Path) > 1 {
			panic("cannot process updates in nested structures")
		}

		switch upd.Type {
		case diff.CREATE, diff.UPDATE:
			stmt = stmt.Set(upd.Path[0], upd.To)
		case diff.DELETE:
			stmt = stmt.Set(upd.Path[0], nil)
		default:
			panic("invalid update type " + upd.Type)
		}
	}
	return stmt
}

// UpdateQuery builds the UPDATE that turns stored into changed. It returns nil
// when the two are equal.
func UpdateQuery(table string, where string, id any, stored, changed any) (*sqlf.Stmt, error) {
	log, err := diff.Diff(stored, changed)
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", table, err)
	}
	if len(log) == 0 {
		return nil, nil
	}
	return MakeUpdateQuery(sqlf.Update(table).Where(where, id), log), nil
}

func AssertUpdated(res sql.Result, err error, notUpdatedError error) error {
	if err != nil {
		return storage.InternalError(err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return storage.InternalError(err)
	}

	if affected == 0 {
		return notUpdatedError
	}
	return nil
}

// JSONB encodes v for a jsonb column. A nil slice is stored as NULL.
func JSONB[T any](v []T) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode jsonb: %w", err)
	}
	s := string(b)
	return &s, nil
}

// FromJSONB decodes a jsonb column scanned as text.
func FromJSONB[T any](raw *string) ([]T, error) {
	if raw == nil {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal([]byte(*raw), &out); err != nil {
		return nil, fmt.Errorf("decode jsonb: %w", err)
	}
	return out, nil
}

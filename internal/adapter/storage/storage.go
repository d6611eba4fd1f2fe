package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/domain"
	"github.com/leporo/sqlf"
	"sync"
)

var (
	ErrInternal = errors.New("internal storage error")
	ErrNoSQL    = errors.New("transaction is not backed by sql")
)

type Transaction interface {
	Commit() error
	Rollback() error
}

type Transactor interface {
	Begin(ctx context.Context) (Transaction, error)
}

type DB struct {
	*sql.DB
}

func (d *DB) Begin(ctx context.Context) (Transaction, error) {
	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, InternalError(err)
	}
	return &Tx{tx}, nil
}

type Tx struct {
	*sql.Tx
}

// Executor returns the sql executor behind a transaction started by DB.
func Executor(tx Transaction) (sqlf.Executor, error) {
	if t, ok := tx.(*Tx); ok {
		return t.Tx, nil
	}
	return nil, ErrNoSQL
}

// MustExecutor is Executor for storages that are only ever wired to DB.
func MustExecutor(tx Transaction) sqlf.Executor {
	ex, err := Executor(tx)
	if err != nil {
		panic(err)
	}
	return ex
}

// NopTransactor starts transactions that do nothing. Stores that are not
// transactional use it.
type NopTransactor struct{}

func (NopTransactor) Begin(context.Context) (Transaction, error) {
	return nopTx{}, nil
}

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type EventSource interface {
	PopEvents() []domain.Event
}

// Seen tracks the aggregates a storage handed out during one unit of work,
// so their events can be collected once it commits.
type Seen[T EventSource] struct {
	mu    sync.Mutex
	items map[string]T
}

func (s *Seen[T]) Mark(id string, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items == nil {
		s.items = make(map[string]T)
	}
	s.items[id] = item
}

func (s *Seen[T]) Collect() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var events []domain.Event
	for _, item := range s.items {
		events = append(events, item.PopEvents()...)
	}
	s.items = nil
	return events
}

func (s *Seen[T]) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

func InternalError(err error) error {
	return errors.Join(fmt.Errorf("internal storage error: %w", err), ErrInternal)
}

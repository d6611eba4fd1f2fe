package unitofwork

import (
	"context"
	"errors"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage"
	"github.com/burenotti/go_endurance_backend/internal/domain"
	"io"
	"log/slog"
	"testing"
	"time"
)

type testEvent struct{}

func (testEvent) Type() string           { return "test.happened" }
func (testEvent) PublishedAt() time.Time { return time.Time{} }

type recordingTx struct {
	committed  bool
	rolledBack bool
}

func (t *recordingTx) Commit() error { t.committed = true; return nil }

func (t *recordingTx) Rollback() error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type recordingTransactor struct {
	tx *recordingTx
}

func (r *recordingTransactor) Begin(context.Context) (storage.Transaction, error) {
	r.tx = &recordingTx{}
	return r.tx, nil
}

type testContext struct {
	ctx    context.Context
	tx     storage.Transaction
	closed bool
}

func (c *testContext) Context() context.Context      { return c.ctx }
func (c *testContext) Commit() error                 { return c.tx.Commit() }
func (c *testContext) Close() error                  { c.closed = true; return nil }
func (c *testContext) CollectEvents() []domain.Event { return []domain.Event{testEvent{}} }

type recordingBus struct {
	events []domain.Event
}

func (b *recordingBus) PublishEvents(events ...domain.Event) error {
	b.events = append(b.events, events...)
	return nil
}

func newTestUoW() (*UnitOfWork[*testContext], *recordingTransactor, *recordingBus, **testContext) {
	db := &recordingTransactor{}
	bus := &recordingBus{}
	var last *testContext
	factory := func(ctx context.Context, tx storage.Transaction) (*testContext, error) {
		last = &testContext{ctx: ctx, tx: tx}
		return last, nil
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New[*testContext](db, factory, bus, logger), db, bus, &last
}

func TestAtomicCommitPublishes(t *testing.T) {
	uow, db, bus, last := newTestUoW()

	err := uow.Atomic(context.Background(), func(c *testContext) error {
		return c.Commit()
	})
	if err != nil {
		t.Fatal(err)
	}
	if !db.tx.committed || db.tx.rolledBack {
		t.Errorf("tx committed=%v rolledBack=%v", db.tx.committed, db.tx.rolledBack)
	}
	if len(bus.events) != 1 {
		t.Errorf("published %d events", len(bus.events))
	}
	if !(*last).closed {
		t.Errorf("atomic context not closed")
	}
}

func TestAtomicErrorRollsBack(t *testing.T) {
	uow, db, bus, _ := newTestUoW()
	boom := errors.New("boom")

	err := uow.Atomic(context.Background(), func(c *testContext) error {
		return boom
	})
	if !errors.Is(err, boom) || !errors.Is(err, ErrRollback) {
		t.Fatalf("err = %v", err)
	}
	if !db.tx.rolledBack {
		t.Errorf("tx not rolled back")
	}
	if len(bus.events) != 0 {
		t.Errorf("events published after rollback")
	}
}

func TestAtomicWithoutCommitRollsBack(t *testing.T) {
	uow, db, _, _ := newTestUoW()

	if err := uow.Atomic(context.Background(), func(c *testContext) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if db.tx.committed || !db.tx.rolledBack {
		t.Errorf("read-only unit of work must not commit")
	}
}

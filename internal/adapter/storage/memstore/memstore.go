// Package memstore keeps users and profiles in process memory. Writes are
// staged per transaction and applied on commit.
package memstore

import (
	"context"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage"
	"github.com/burenotti/go_endurance_backend/internal/domain/auth"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"sync"
)

type DB struct {
	mu       sync.RWMutex
	users    map[string]*auth.User
	profiles map[string]*profile.Profile
}

func New() *DB {
	return &DB{
		users:    make(map[string]*auth.User),
		profiles: make(map[string]*profile.Profile),
	}
}

func (db *DB) Begin(context.Context) (storage.Transaction, error) {
	return &Tx{
		db:       db,
		users:    make(map[string]*auth.User),
		profiles: make(map[string]*profile.Profile),
	}, nil
}

type Tx struct {
	db       *DB
	mu       sync.Mutex
	done     bool
	users    map[string]*auth.User
	profiles map[string]*profile.Profile
}

func (tx *Tx) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return nil
	}

	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()

	for id, u := range tx.users {
		for otherID, other := range tx.db.users {
			if otherID != id && other.Email == u.Email {
				return auth.ErrUserEmailDuplicate
			}
		}
	}
	for id, p := range tx.profiles {
		for otherID, other := range tx.db.profiles {
			if otherID != id && other.Email == p.Email {
				return profile.ErrProfileExists
			}
		}
	}

	for id, u := range tx.users {
		tx.db.users[id] = u
	}
	for id, p := range tx.profiles {
		tx.db.profiles[id] = p
	}
	tx.done = true
	return nil
}

func (tx *Tx) Rollback() error {
	tx.mu.Lock()
	tx.done = true
	tx.users = nil
	tx.profiles = nil
	tx.mu.Unlock()
	return nil
}

func (tx *Tx) findUser(match func(*auth.User) bool) *auth.User {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	for _, u := range tx.users {
		if match(u) {
			return u
		}
	}

	tx.db.mu.RLock()
	defer tx.db.mu.RUnlock()
	for id, u := range tx.db.users {
		if _, staged := tx.users[id]; !staged && match(u) {
			return u
		}
	}
	return nil
}

func (tx *Tx) stageUser(u *auth.User) {
	tx.mu.Lock()
	tx.users[u.UserID] = u
	tx.mu.Unlock()
}

func (tx *Tx) findProfile(id string) *profile.Profile {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if p, ok := tx.profiles[id]; ok {
		return p
	}

	tx.db.mu.RLock()
	defer tx.db.mu.RUnlock()
	return tx.db.profiles[id]
}

func (tx *Tx) profileEmailTaken(id, email string) bool {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	for otherID, p := range tx.profiles {
		if otherID != id && p.Email == email {
			return true
		}
	}

	tx.db.mu.RLock()
	defer tx.db.mu.RUnlock()
	for otherID, p := range tx.db.profiles {
		if otherID != id && p.Email == email {
			return true
		}
	}
	return false
}

func (tx *Tx) stageProfile(p *profile.Profile) {
	tx.mu.Lock()
	tx.profiles[p.ID] = p
	tx.mu.Unlock()
}

func asTx(t storage.Transaction) *Tx {
	tx, ok := t.(*Tx)
	if !ok {
		panic("memstore: transaction was not started by memstore.DB")
	}
	return tx
}

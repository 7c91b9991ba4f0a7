// Package memory implements internal/store.Store over a mutex-guarded
// map, for local development and tests that don't need a real database.
// Grounded on the same in-process-fake pattern
// internal/transport/memory uses for the transport side.
package memory

import (
	"context"
	"sync"

	"ekyc-engine/internal/store"
)

// Store is an in-memory internal/store.Store. Safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	users map[string]store.UserFields
}

// New builds an empty in-memory Store.
func New() *Store {
	return &Store{users: map[string]store.UserFields{}}
}

func key(id, name string) string { return id + "\x00" + name }

// ExistsUser reports whether (id, name) has been inserted.
func (s *Store) ExistsUser(_ context.Context, id, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[key(id, name)]
	return ok, nil
}

// InsertUser inserts fields iff (IdentityNumber, Name) is not already
// present, resolving the race the same way a unique constraint would: the
// mutex serializes the check-then-insert, so no two callers ever both see
// "not present" for the same pair.
func (s *Store) InsertUser(_ context.Context, fields store.UserFields) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(fields.IdentityNumber, fields.Name)
	if _, exists := s.users[k]; exists {
		return false, nil
	}
	s.users[k] = fields
	return true, nil
}

// Close is a no-op; the map is garbage collected with the Store.
func (s *Store) Close() error { return nil }

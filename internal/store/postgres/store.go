// Package postgres implements internal/store.Store over database/sql and
// github.com/lib/pq. Grounded on abramin-Credo's
// internal/auth/store/revocation/postgres.go: plain SQL strings,
// fmt.Errorf-wrapped errors, ON CONFLICT for idempotent writes.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"ekyc-engine/internal/platform/sentinel"
	"ekyc-engine/internal/store"
)

// Store is a Postgres-backed internal/store.Store.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres at dsn and verifies the connection.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an already-open *sql.DB, for callers that manage the pool
// themselves (e.g. tests against a testcontainers instance).
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ExistsUser reports whether (id, name) is present in the users table.
func (s *Store) ExistsUser(ctx context.Context, id, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE identity_number = $1 AND name = $2)`,
		id, name,
	).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
			return false, fmt.Errorf("postgres: exists user: %w", sentinel.ErrUnavailable)
		}
		return false, fmt.Errorf("postgres: exists user: %w", err)
	}
	return exists, nil
}

// InsertUser inserts a new row, relying on the users table's unique
// constraint on (identity_number, name) to resolve a concurrent-insert
// race: whichever caller's INSERT lands first gets true, the other gets
// false from RowsAffected() == 0, without a second round trip.
func (s *Store) InsertUser(ctx context.Context, fields store.UserFields) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (identity_number, name, doc_type, date_of_issue, date_of_expiry, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (identity_number, name) DO NOTHING
	`, fields.IdentityNumber, fields.Name, fields.DocType, fields.DateOfIssue, fields.DateOfExpiry, fields.Address)
	if err != nil {
		if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
			return false, fmt.Errorf("postgres: insert user: %w", sentinel.ErrUnavailable)
		}
		return false, fmt.Errorf("postgres: insert user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("postgres: insert user rows affected: %w", err)
	}
	return rows == 1, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

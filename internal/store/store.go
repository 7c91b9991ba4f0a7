// Package store declares the relational-store contract the business step
// requires: exists_user and insert_user. Concrete adapters (Postgres,
// Redis-cached decorator, in-memory for tests) live in sibling packages.
package store

import "context"

// UserFields is the row shape insert_user writes, taken directly from an
// AddUserRequest frame's body fields.
type UserFields struct {
	IdentityNumber string
	Name           string
	DocType        string
	DateOfIssue    string
	DateOfExpiry   string
	Address        string
}

// Store is the relational-store contract the business step requires.
// Implementations own their own connection pooling/thread-safety; the
// business step and everything above it treats a Store as a shared,
// concurrency-safe handle.
type Store interface {
	// ExistsUser reports whether the (id, name) pair is present. Callers
	// treat any error the same as a store outage: the business step
	// converts it to false rather than propagating it.
	ExistsUser(ctx context.Context, id, name string) (bool, error)
	// InsertUser creates a new row iff (fields.IdentityNumber, fields.Name)
	// is not already present. Ok(true) means a row was created; Ok(false)
	// means a unique-constraint collision, which the store itself must
	// resolve rather than relying on a preceding ExistsUser call to be
	// race-free.
	InsertUser(ctx context.Context, fields UserFields) (bool, error)
	Close() error
}

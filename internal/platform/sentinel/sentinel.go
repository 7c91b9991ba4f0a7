// Package sentinel holds infrastructure-fact sentinel errors, following
// abramin-Credo's pkg/platform/sentinel convention: stores return these
// (optionally wrapped) so callers can classify a failure without parsing
// driver-specific error strings.
//
// The business step (internal/businessstep) never inspects these directly —
// per spec.md §4.5 and §7, any store error is treated as a plain false —
// but store implementations and their tests share this vocabulary.
package sentinel

import "errors"

var (
	// ErrNotFound means the entity does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a unique-constraint or similar collision occurred.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable means the store or transport is temporarily
	// unreachable.
	ErrUnavailable = errors.New("unavailable")
)

// Package businessstep holds the pure decision logic a shard worker runs
// once it has decoded a request frame: decide what the request is asking
// for, consult the store, and produce the reply frame to publish. It has
// no dependency on the ring buffer, the transport, or any goroutine
// lifecycle, so it is trivially unit-testable.
//
// Grounded on original_source/src/eKYCEngine.cpp's verify_and_respond,
// verify_identity, add_user_to_system and send_response: this package is
// their Go-native, store-interface-based equivalent.
package businessstep

import (
	"context"
	"fmt"

	"ekyc-engine/internal/store"
	"ekyc-engine/internal/wire"
)

// Outcome classifies how a request frame was handled.
type Outcome int

const (
	// OutcomeVerified means a verification request was answered.
	OutcomeVerified Outcome = iota
	// OutcomeUserAdded means an add-user request was answered; Verified
	// reports whether a new row was created.
	OutcomeUserAdded
	// OutcomeIgnored means the frame did not match a recognized
	// (msg, verified=false) request shape and produced no reply.
	OutcomeIgnored
)

// Result is what Process decided, plus the reply frame to publish when
// Reply is non-nil.
type Result struct {
	Outcome Outcome
	// Verified is the verification/add-user boolean carried in Reply.
	// Meaningless when Outcome is OutcomeIgnored.
	Verified bool
	// Reply is the fields for a wire.Encode call, or nil when Outcome is
	// OutcomeIgnored.
	Reply *wire.Fields
}

// Process runs the business decision for a decoded request frame against
// s. It never returns an error for a store failure: per the original
// engine's behavior, any store error degrades to "not verified" /
// "not added" rather than aborting the reply.
func Process(ctx context.Context, s store.Store, frame wire.Frame) (Result, error) {
	verified, err := frame.Verified()
	if err != nil {
		return Result{}, fmt.Errorf("businessstep: %w", err)
	}
	if verified {
		// Only unverified requests ask for a decision; an
		// already-verified frame is not a request this engine acts on.
		return Result{Outcome: OutcomeIgnored}, nil
	}

	switch frame.Msg() {
	case wire.MsgVerificationRequest:
		ok := verifyIdentity(ctx, s, frame.ID(), frame.Name())
		return Result{
			Outcome:  OutcomeVerified,
			Verified: ok,
			Reply:    replyFields(frame, ok),
		}, nil

	case wire.MsgAddUserRequest:
		ok := addUserToSystem(ctx, s, frame)
		return Result{
			Outcome:  OutcomeUserAdded,
			Verified: ok,
			Reply:    replyFields(frame, ok),
		}, nil

	default:
		return Result{Outcome: OutcomeIgnored}, nil
	}
}

// verifyIdentity reports whether (id, name) is a known user. A store error
// is treated the same as "not found": the caller cannot distinguish a
// missing record from a store outage from the wire protocol alone.
func verifyIdentity(ctx context.Context, s store.Store, id, name string) bool {
	exists, err := s.ExistsUser(ctx, id, name)
	if err != nil {
		return false
	}
	return exists
}

// addUserToSystem checks for an existing (id, name) row before inserting,
// per the exists-then-insert order the worker loop is required to follow;
// the store's unique constraint is still the final arbiter of a concurrent
// insert race, since two workers can both pass the exists check before
// either inserts.
func addUserToSystem(ctx context.Context, s store.Store, frame wire.Frame) bool {
	id, name := frame.ID(), frame.Name()

	exists, err := s.ExistsUser(ctx, id, name)
	if err != nil {
		return false
	}
	if exists {
		return false
	}

	fields := store.UserFields{
		IdentityNumber: id,
		Name:           name,
		DocType:        frame.Type(),
		DateOfIssue:    frame.DateOfIssue(),
		DateOfExpiry:   frame.DateOfExpiry(),
		Address:        frame.Address(),
	}
	created, err := s.InsertUser(ctx, fields)
	if err != nil {
		return false
	}
	return created
}

// replyFields builds the reply body: the original request's fields with
// msg replaced by the response discriminator and verified set to the
// outcome.
func replyFields(request wire.Frame, verified bool) *wire.Fields {
	fields := request.ToFields()
	fields.Msg = wire.MsgVerificationResponse
	fields.Verified = verifiedString(verified)
	return &fields
}

func verifiedString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

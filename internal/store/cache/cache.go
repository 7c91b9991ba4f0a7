// Package cache decorates an internal/store.Store with a short-TTL,
// read-through Redis cache for ExistsUser, guarded by a circuit breaker so
// a Redis outage degrades to direct store calls instead of failing the
// request. Grounded on abramin-Credo's internal/platform/redis/client.go
// (go-redis/v9 wrapping) and pkg/platform/audit/publishers/ops/
// circuitbreaker.go (a breaker guarding an optional side path, not the
// mandatory one).
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ekyc-engine/internal/platform/circuit"
	"ekyc-engine/internal/store"
)

// DefaultTTL is how long an ExistsUser result is cached. Deliberately
// short: InsertUser can flip a false to true out-of-band, and a stale
// cached "not found" must not linger.
const DefaultTTL = 2 * time.Second

// Store wraps an underlying store.Store with a Redis-backed cache for
// ExistsUser lookups. InsertUser and Close pass straight through.
type Store struct {
	underlying store.Store
	redis      *redis.Client
	breaker    *circuit.Breaker
	ttl        time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithBreaker overrides the default breaker (5 consecutive Redis failures
// trips it).
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Store) { s.breaker = b }
}

// New wraps underlying with a Redis-backed ExistsUser cache.
func New(underlying store.Store, redisClient *redis.Client, opts ...Option) *Store {
	s := &Store{
		underlying: underlying,
		redis:      redisClient,
		breaker:    circuit.New("exists-user-cache", circuit.WithFailureThreshold(5)),
		ttl:        DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cacheKey(id, name string) string {
	return fmt.Sprintf("ekyc:exists:%s:%s", id, name)
}

// ExistsUser checks Redis first (if the breaker allows it), falling back to
// the underlying store on a cache miss, a Redis error, or an open breaker.
func (s *Store) ExistsUser(ctx context.Context, id, name string) (bool, error) {
	if !s.breaker.IsOpen() {
		if hit, ok := s.tryCache(ctx, id, name); ok {
			return hit, nil
		}
	}

	exists, err := s.underlying.ExistsUser(ctx, id, name)
	if err != nil {
		return false, err
	}

	s.populateCache(ctx, id, name, exists)
	return exists, nil
}

func (s *Store) tryCache(ctx context.Context, id, name string) (hit bool, ok bool) {
	val, err := s.redis.Get(ctx, cacheKey(id, name)).Result()
	if err != nil {
		if err != redis.Nil {
			s.breaker.RecordFailure()
		}
		return false, false
	}
	s.breaker.RecordSuccess()
	return val == "1", true
}

func (s *Store) populateCache(ctx context.Context, id, name string, exists bool) {
	if s.breaker.IsOpen() {
		return
	}
	val := "0"
	if exists {
		val = "1"
	}
	if err := s.redis.Set(ctx, cacheKey(id, name), val, s.ttl).Err(); err != nil {
		s.breaker.RecordFailure()
		return
	}
	s.breaker.RecordSuccess()
}

// InsertUser passes through to the underlying store and invalidates any
// cached ExistsUser entry for the pair, so a subsequent verify sees the
// new row immediately rather than waiting out the TTL.
func (s *Store) InsertUser(ctx context.Context, fields store.UserFields) (bool, error) {
	ok, err := s.underlying.InsertUser(ctx, fields)
	if err != nil {
		return false, err
	}
	if ok {
		_ = s.redis.Del(ctx, cacheKey(fields.IdentityNumber, fields.Name)).Err()
	}
	return ok, nil
}

// Close closes the underlying store. The Redis client is owned by the
// caller that constructed it and is not closed here.
func (s *Store) Close() error {
	return s.underlying.Close()
}

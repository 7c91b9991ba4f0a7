// Package circuit implements a named, threshold-based circuit breaker.
// Reconstructed from abramin-Credo's pkg/platform/circuit/breaker_test.go —
// the pack did not include that package's implementation file, only its
// test, so the New/RecordFailure/RecordSuccess/IsOpen/State/Reset contract
// below is built to satisfy that test's documented behavior: N consecutive
// failures opens the circuit, M consecutive successes while open closes it
// (half-open probing), and any failure while half-open resets the success
// count without reopening past what RecordFailure already reports.
package circuit

import "sync"

// State is the breaker's current state.
type State int

const (
	// StateClosed means calls proceed normally.
	StateClosed State = iota
	// StateOpen means calls should use a fallback / be short-circuited.
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// Change reports whether a RecordFailure/RecordSuccess call caused a state
// transition.
type Change struct {
	Opened bool
	Closed bool
}

// Breaker is a simple consecutive-failure / consecutive-success breaker.
// Zero value is not usable; construct with New.
type Breaker struct {
	mu sync.Mutex

	name             string
	failureThreshold int
	successThreshold int

	state     State
	failures  int
	successes int
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets the number of consecutive failures required to
// open the circuit. Default 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) { b.failureThreshold = n }
}

// WithSuccessThreshold sets the number of consecutive successes required,
// while open, to close the circuit again. Default 1.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) { b.successThreshold = n }
}

// New constructs a closed Breaker named name.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the breaker's name.
func (b *Breaker) Name() string { return b.name }

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// IsOpen reports whether the circuit is currently open.
func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

// RecordFailure records a failed call. useFallback reports whether the
// caller should treat this call (and subsequent ones, until the circuit
// closes again) as failed without attempting the primary path; change
// reports whether this call caused the circuit to open.
func (b *Breaker) RecordFailure() (useFallback bool, change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes = 0
	if b.state == StateOpen {
		return true, Change{}
	}

	b.failures++
	if b.failures >= b.failureThreshold {
		b.state = StateOpen
		return true, Change{Opened: true}
	}
	return false, Change{}
}

// RecordSuccess records a successful call. usePrimary reports whether the
// circuit is (now) closed and the caller may use the primary path; change
// reports whether this call caused the circuit to close.
func (b *Breaker) RecordSuccess() (usePrimary bool, change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateClosed {
		b.failures = 0
		return true, Change{}
	}

	b.successes++
	if b.successes >= b.successThreshold {
		b.state = StateClosed
		b.failures = 0
		b.successes = 0
		return true, Change{Closed: true}
	}
	return false, Change{}
}

// Reset forces the circuit closed and clears all counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}

// Package memory provides a channel-backed Subscriber/Publisher pair for
// local development and tests that need a working transport without a
// broker. It implements the same transport.Subscriber/Publisher contract
// the Kafka adapter does, so engine and worker tests can run without
// testcontainers.
package memory

import (
	"context"
	"sync"

	"ekyc-engine/internal/transport"
)

// Bus is an in-process fragment channel shared by a Subscriber/Publisher
// pair. Passing one Bus to both NewSubscriber and NewPublisher loops replies
// back to the input; two Buses give independent inbound/outbound channels.
type Bus struct {
	ch chan []byte
}

// NewBus creates a bus with the given channel capacity.
func NewBus(capacity int) *Bus {
	return &Bus{ch: make(chan []byte, capacity)}
}

// Send enqueues a fragment for delivery, blocking if the bus is full.
func (b *Bus) Send(fragment []byte) {
	b.ch <- fragment
}

// TrySend enqueues a fragment without blocking, returning false if the bus
// is full.
func (b *Bus) TrySend(fragment []byte) bool {
	select {
	case b.ch <- fragment:
		return true
	default:
		return false
	}
}

// Chan exposes the bus's underlying channel for callers (tests, a
// loopback wiring) that want to read fragments directly rather than
// through a Subscriber.
func (b *Bus) Chan() <-chan []byte {
	return b.ch
}

// Subscriber reads fragments from a Bus and calls onFragment for each.
type Subscriber struct {
	bus *Bus

	mu     sync.Mutex
	closed bool
}

// NewSubscriber wraps bus as a transport.Subscriber.
func NewSubscriber(bus *Bus) *Subscriber {
	return &Subscriber{bus: bus}
}

// Subscribe drains the bus until ctx is cancelled or the bus channel is
// closed. Close does not stop it.
func (s *Subscriber) Subscribe(ctx context.Context, onFragment transport.FragmentHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fragment, ok := <-s.bus.ch:
			if !ok {
				return nil
			}
			onFragment(fragment)
		}
	}
}

// Close is a no-op; the bus itself is owned by whoever created it.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Publisher writes reply payloads onto a Bus. Safe for concurrent Offer
// calls from multiple shard workers, since chan send is itself safe for
// concurrent senders.
type Publisher struct {
	bus *Bus

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps bus as a transport.Publisher.
func NewPublisher(bus *Bus) *Publisher {
	return &Publisher{bus: bus}
}

// Offer enqueues payload onto the bus, returning PublishBackPressured if
// the bus is full rather than blocking.
func (p *Publisher) Offer(ctx context.Context, payload []byte) (transport.PublishResult, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return transport.PublishClosed, nil
	}
	select {
	case <-ctx.Done():
		return transport.PublishNotConnected, ctx.Err()
	default:
	}
	if p.bus.TrySend(payload) {
		return transport.PublishSuccess, nil
	}
	return transport.PublishBackPressured, nil
}

// Close marks the publisher closed; subsequent Offer calls return
// PublishClosed.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Recorder is a test double that appends every offered payload to a slice
// instead of routing it anywhere, used by worker tests that only need to
// assert on the reply's bytes.
type Recorder struct {
	mu       sync.Mutex
	payloads [][]byte
	Result   transport.PublishResult
}

// NewRecorder builds a Recorder that reports PublishSuccess for every Offer.
func NewRecorder() *Recorder {
	return &Recorder{Result: transport.PublishSuccess}
}

// Offer records payload and returns r.Result.
func (r *Recorder) Offer(_ context.Context, payload []byte) (transport.PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := append([]byte(nil), payload...)
	r.payloads = append(r.payloads, cp)
	return r.Result, nil
}

// Close is a no-op.
func (r *Recorder) Close() error { return nil }

// Payloads returns a copy of every payload recorded so far.
func (r *Recorder) Payloads() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.payloads...)
}

// Package transport declares the collaborator interfaces the engine core
// requires from the underlying pub/sub bus: a Subscriber that hands
// complete fragments to a callback from a poller of its own, and a
// Publisher that offers reply frames back onto the bus. Concrete adapters
// (Kafka, in-memory) live in sibling packages; the core never imports them
// directly, only these interfaces.
package transport

import "context"

// PublishResult mirrors the result set spec.md §6 requires from the
// publication collaborator's offer call.
type PublishResult int

const (
	// PublishSuccess means the payload was accepted for delivery.
	PublishSuccess PublishResult = iota
	// PublishNotConnected means no subscriber is currently connected.
	PublishNotConnected
	// PublishBackPressured means the transport's own buffer is full.
	PublishBackPressured
	// PublishAdminAction means an administrative action interrupted the
	// publication (e.g. the underlying stream was reset).
	PublishAdminAction
	// PublishClosed means the publisher has been closed.
	PublishClosed
	// PublishMaxPositionExceeded means the publication reached the end of
	// its addressable position space.
	PublishMaxPositionExceeded
)

func (r PublishResult) String() string {
	switch r {
	case PublishSuccess:
		return "success"
	case PublishNotConnected:
		return "not_connected"
	case PublishBackPressured:
		return "back_pressured"
	case PublishAdminAction:
		return "admin_action"
	case PublishClosed:
		return "closed"
	case PublishMaxPositionExceeded:
		return "max_position_exceeded"
	default:
		return "unknown"
	}
}

// FragmentHandler is invoked once per reassembled fragment. It is called
// from a thread of the Subscriber's own choosing; the design must not
// assume it runs on any particular goroutine.
type FragmentHandler func(fragment []byte)

// Subscriber drains a subscription channel and calls onFragment for each
// application-level message unit the transport reassembles.
type Subscriber interface {
	// Subscribe starts the background poller and blocks until ctx is
	// cancelled or an unrecoverable error occurs.
	Subscribe(ctx context.Context, onFragment FragmentHandler) error
	// Close releases the subscriber's resources. Safe to call after
	// Subscribe's context has been cancelled.
	Close() error
}

// Publisher offers reply payloads back onto the bus. Implementations MUST
// be safe for concurrent Offer calls, since the transport publication
// handle is shared across shard workers.
type Publisher interface {
	Offer(ctx context.Context, payload []byte) (PublishResult, error)
	Close() error
}

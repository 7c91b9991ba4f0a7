// Package ingest implements the single-thread Ingestor: it drains the
// transport's fragment stream and assigns each fragment to exactly one
// shard queue. Grounded on spec.md §4.3.
package ingest

import (
	"log/slog"
	"sync/atomic"
	"time"

	"ekyc-engine/internal/ring"
	"ekyc-engine/internal/shard"
	"ekyc-engine/internal/wire"
)

// Backoff controls the retry policy Ingestor uses against a full shard
// queue, matching internal/ring's WriteWithBackoff parameters.
type Backoff struct {
	Spins   int
	Yields  int
	Timeout time.Duration
}

// DefaultBackoff is spec.md §4.2's suggested idle strategy: busy-spin,
// then yield, then sleep, bounded by a 50ms shard_timeout.
var DefaultBackoff = Backoff{Spins: 64, Yields: 16, Timeout: 50 * time.Millisecond}

// Counters is the Ingestor's contribution to the engine's counter set.
type Counters struct {
	Received            uint64
	Malformed           uint64
	UnknownTemplate     uint64
	DroppedBackpressure uint64
}

// Ingestor assigns each incoming fragment to one of a fixed set of shard
// queues via a shard.Policy. It is not safe for concurrent OnFragment
// calls; the transport Subscriber that drives it is required to call it
// from a single thread of its own.
type Ingestor struct {
	queues  []*ring.Queue
	policy  shard.Policy
	backoff Backoff
	logger  *slog.Logger

	received            atomic.Uint64
	malformed           atomic.Uint64
	unknownTemplate     atomic.Uint64
	droppedBackpressure atomic.Uint64
}

// New builds an Ingestor routing across queues using policy.
func New(queues []*ring.Queue, policy shard.Policy, backoff Backoff, logger *slog.Logger) *Ingestor {
	return &Ingestor{queues: queues, policy: policy, backoff: backoff, logger: logger}
}

// OnFragment runs the per-fragment algorithm from spec.md §4.3: reject too
// short or unrecognized fragments, pick a shard, and enqueue with
// backpressure.
func (in *Ingestor) OnFragment(fragment []byte) {
	in.received.Add(1)

	if len(fragment) < wire.HeaderLength {
		in.malformed.Add(1)
		in.logger.Warn("ingestor: dropping malformed fragment", "length", len(fragment))
		return
	}

	header, err := wire.DecodeHeader(fragment)
	if err != nil {
		in.malformed.Add(1)
		return
	}
	if header.TemplateID != wire.TemplateID {
		in.unknownTemplate.Add(1)
		in.logger.Warn("ingestor: dropping unknown template", "template_id", header.TemplateID)
		return
	}

	idField := in.peekID(fragment)
	s := in.policy.Select(idField)
	q := in.queues[s]

	if !q.WriteWithBackoff(1, fragment, in.backoff.Spins, in.backoff.Yields, in.backoff.Timeout) {
		in.droppedBackpressure.Add(1)
		in.logger.Warn("ingestor: dropped fragment under backpressure", "shard", s)
	}
}

// peekID decodes only the id field, for key-affinity routing; for any other
// policy it returns an empty id without decoding. Only the header length
// and template were checked above, so a decode failure here (an
// unsupported version or an undersized body) yields an empty id rather
// than a second malformed-drop; the worker surfaces the real decode error
// when it processes the record.
func (in *Ingestor) peekID(fragment []byte) string {
	if in.policy.Name() != "key-affinity" {
		return ""
	}
	frame, err := wire.Decode(fragment)
	if err != nil {
		return ""
	}
	return frame.ID()
}

// Counters returns a snapshot of the ingestor's counters. Safe to call
// concurrently with OnFragment.
func (in *Ingestor) Counters() Counters {
	return Counters{
		Received:            in.received.Load(),
		Malformed:           in.malformed.Load(),
		UnknownTemplate:     in.unknownTemplate.Load(),
		DroppedBackpressure: in.droppedBackpressure.Load(),
	}
}

// Package worker implements the per-shard loop: drain the shard's ring
// buffer, decode each record, run the business step against the store,
// and publish the reply. Grounded on spec.md §4.4 and, for the circuit
// breaker's role guarding a degraded store, abramin-Credo's
// pkg/platform/audit/publishers/ops/circuitbreaker.go.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ekyc-engine/internal/businessstep"
	"ekyc-engine/internal/platform/circuit"
	"ekyc-engine/internal/ring"
	"ekyc-engine/internal/store"
	"ekyc-engine/internal/transport"
	"ekyc-engine/internal/wire"
)

var tracer = otel.Tracer("ekyc-engine/internal/worker")

// idleSleep is how long the worker sleeps after an empty read while the
// engine is still running.
const idleSleep = 100 * time.Microsecond

// breakerCooldown is how long the worker sleeps after tripping its
// consecutive-error breaker before resetting and resuming.
const breakerCooldown = 5 * time.Second

// consecutiveErrorThreshold is how many consecutive handle_record failures
// the worker tolerates; the next one (the 11th) trips the breaker.
const consecutiveErrorThreshold = 10

// Counters is the worker's contribution to the engine's counter set.
// All fields are read with atomic loads by Snapshot; see engine.Counters
// for the aggregated view.
type Counters struct {
	Errors        uint64
	RepliesSent   uint64
	RepliesFailed uint64
}

// Worker owns one shard's ring buffer and drives it against a Store and a
// Publisher until Run's context is cancelled and the ring drains.
type Worker struct {
	shardID   int
	queue     *ring.Queue
	store     store.Store
	publisher transport.Publisher
	logger    *slog.Logger

	breaker  *circuit.Breaker
	cooldown time.Duration

	errors        atomic.Uint64
	repliesSent   atomic.Uint64
	repliesFailed atomic.Uint64
}

// Option configures a Worker.
type Option func(*Worker)

// WithCooldown overrides breakerCooldown, for tests that need to observe a
// breaker trip without waiting the full 5s.
func WithCooldown(d time.Duration) Option {
	return func(w *Worker) { w.cooldown = d }
}

// New builds a Worker for shard shardID over queue, using store for the
// business step and publisher to send replies.
func New(shardID int, queue *ring.Queue, s store.Store, publisher transport.Publisher, logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{
		shardID:   shardID,
		queue:     queue,
		store:     s,
		publisher: publisher,
		logger:    logger,
		cooldown:  breakerCooldown,
		// failureThreshold+1: the breaker opens once consecutive_errors
		// exceeds consecutiveErrorThreshold, per spec.md §4.4.
		breaker: circuit.New("worker", circuit.WithFailureThreshold(consecutiveErrorThreshold+1)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drives the shard loop until ctx is cancelled, then drains any
// remaining records before returning. Draining is not time-bounded here;
// the engine's Stop bounds only its wait for the queues to empty before it
// cancels ctx, and then waits for Run to return without a time limit.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		default:
		}

		n := w.queue.Read(w.handleRecord)
		if n == 0 {
			time.Sleep(idleSleep)
		}
	}
}

// drain reads whatever remains in the ring without blocking on new work,
// used once the engine has signalled stop.
func (w *Worker) drain() {
	for w.queue.Read(w.handleRecord) > 0 {
	}
}

func (w *Worker) handleRecord(msgType uint8, payload []byte) ring.HandlerResult {
	if err := w.process(payload); err != nil {
		w.errors.Add(1)
		w.logger.Error("shard worker: handle record failed", "shard", w.shardID, "error", err)

		_, change := w.breaker.RecordFailure()
		if change.Opened {
			w.logger.Warn("shard worker: consecutive error threshold exceeded, cooling down",
				"shard", w.shardID)
			time.Sleep(w.cooldown)
			w.breaker.Reset()
		}
		return ring.Continue
	}
	w.breaker.RecordSuccess()
	return ring.Continue
}

func (w *Worker) process(payload []byte) error {
	ctx, span := tracer.Start(context.Background(), "worker.process",
		trace.WithAttributes(attribute.Int("shard", w.shardID)))
	defer span.End()

	frame, err := wire.Decode(payload)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.String("msg", frame.Msg()))

	result, err := businessstep.Process(ctx, w.store, frame)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if result.Reply == nil {
		return nil
	}

	buf := make([]byte, wire.FrameLength)
	n, err := wire.Encode(buf, *result.Reply)
	if err != nil {
		span.RecordError(err)
		return err
	}

	publishResult, err := w.publisher.Offer(ctx, buf[:n])
	if err != nil || publishResult != transport.PublishSuccess {
		w.repliesFailed.Add(1)
		span.RecordError(fmt.Errorf("publish: %s", publishResult))
		w.logger.Warn("shard worker: publish failed",
			"shard", w.shardID, "result", publishResult, "error", err)
		return nil
	}
	w.repliesSent.Add(1)
	return nil
}

// Snapshot returns the worker's counters. Safe to call concurrently with
// Run.
func (w *Worker) Snapshot() Counters {
	return Counters{
		Errors:        w.errors.Load(),
		RepliesSent:   w.repliesSent.Load(),
		RepliesFailed: w.repliesFailed.Load(),
	}
}

// Package engine owns the full pipeline's lifecycle: construct the shard
// queues, ingestor, and workers; start and stop them together; and expose
// aggregated counters. Grounded on spec.md §4.6, and on abramin-Credo's
// internal/decision/evidence.go for the errgroup.Group fan-out/join
// pattern, generalized here from "cancel the group on first error" (wrong
// for a long-running pipeline, where a single decode error must never
// take the engine down) to "cancel the group when stop() is called."
package engine

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ekyc-engine/internal/ingest"
	"ekyc-engine/internal/ring"
	"ekyc-engine/internal/shard"
	"ekyc-engine/internal/store"
	"ekyc-engine/internal/transport"
	"ekyc-engine/internal/worker"
)

// State is the engine's lifecycle state, per spec.md §4.6's
// Constructed → Running → Stopping → Stopped machine.
type State int

const (
	StateConstructed State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ShardPolicyName selects which shard.Policy New builds.
type ShardPolicyName string

const (
	PolicyRoundRobin  ShardPolicyName = "round-robin"
	PolicyKeyAffinity ShardPolicyName = "key-affinity"
)

// Config is everything New needs to build an Engine. NumShards must be a
// power of two per internal/shard's requirement, and QueueCapacity per
// internal/ring's.
type Config struct {
	NumShards       int
	QueueCapacity   int
	ShardPolicy     ShardPolicyName
	IngestBackoff   ingest.Backoff
	StopGracePeriod time.Duration
}

// DefaultStopGracePeriod is spec.md §4.6's default drain grace period.
const DefaultStopGracePeriod = 500 * time.Millisecond

// Counters is the engine-wide snapshot spec.md §4.6's counters() returns,
// with named fields in place of a map.
type Counters struct {
	Received            uint64
	DroppedBackpressure uint64
	Malformed           uint64
	UnknownTemplate     uint64
	Errors              uint64
	RepliesSent         uint64
	RepliesFailed       uint64
}

// Engine is the pipeline's lifecycle owner: one Ingestor, N shard queues,
// N Workers, driven by a Subscriber/Publisher pair.
type Engine struct {
	cfg        Config
	subscriber transport.Subscriber
	publisher  transport.Publisher
	store      store.Store
	logger     *slog.Logger

	queues   []*ring.Queue
	ingestor *ingest.Ingestor
	workers  []*worker.Worker

	state  State
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New builds the transport handles' collaborators, allocates N shard
// queues, and prepares counters, without starting any goroutine. Matches
// spec.md §4.6's "new(config) → Engine": construction only.
func New(cfg Config, subscriber transport.Subscriber, publisher transport.Publisher, s store.Store, logger *slog.Logger) *Engine {
	queues := make([]*ring.Queue, cfg.NumShards)
	for i := range queues {
		queues[i] = ring.New(cfg.QueueCapacity)
	}

	policy := newPolicy(cfg.ShardPolicy, cfg.NumShards)
	in := ingest.New(queues, policy, cfg.IngestBackoff, logger)

	workers := make([]*worker.Worker, cfg.NumShards)
	for i, q := range queues {
		workers[i] = worker.New(i, q, s, publisher, logger)
	}

	return &Engine{
		cfg:        cfg,
		subscriber: subscriber,
		publisher:  publisher,
		store:      s,
		logger:     logger,
		queues:     queues,
		ingestor:   in,
		workers:    workers,
		state:      StateConstructed,
	}
}

func newPolicy(name ShardPolicyName, numShards int) shard.Policy {
	if name == PolicyKeyAffinity {
		return shard.NewKeyAffinity(numShards)
	}
	return shard.NewRoundRobin(numShards)
}

// Start launches the ingestor and all shard workers and sets the running
// state. It returns once every goroutine has been launched; it does not
// block until they exit — use Stop for that.
func (e *Engine) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)
	e.group = g

	for _, w := range e.workers {
		w := w
		g.Go(func() error {
			w.Run(gctx)
			return nil
		})
	}

	g.Go(func() error {
		err := e.subscriber.Subscribe(gctx, e.ingestor.OnFragment)
		if gctx.Err() != nil {
			return nil
		}
		return err
	})

	e.state = StateRunning
	e.logger.Info("engine: started", "num_shards", e.cfg.NumShards, "shard_policy", e.cfg.ShardPolicy)
}

// Stop moves the engine to Stopping, waits up to StopGracePeriod for the
// shard queues to drain, then cancels the ingestor and workers together,
// joins every goroutine (each worker drains what is left in its queue
// before returning), and closes the transport and store. The ingestor is
// not stopped before the grace-period wait: it keeps enqueuing fragments
// until the cancellation that follows it.
func (e *Engine) Stop() {
	if e.state != StateRunning {
		return
	}
	e.state = StateStopping
	e.logger.Info("engine: stopping")

	e.waitForDrain()
	e.cancel()
	if err := e.group.Wait(); err != nil {
		e.logger.Error("engine: goroutine group returned error on shutdown", "error", err)
	}

	if err := e.subscriber.Close(); err != nil {
		e.logger.Error("engine: closing subscriber", "error", err)
	}
	if err := e.publisher.Close(); err != nil {
		e.logger.Error("engine: closing publisher", "error", err)
	}
	if err := e.store.Close(); err != nil {
		e.logger.Error("engine: closing store", "error", err)
	}

	e.state = StateStopped
	e.logger.Info("engine: stopped")
}

func (e *Engine) waitForDrain() {
	grace := e.cfg.StopGracePeriod
	if grace <= 0 {
		grace = DefaultStopGracePeriod
	}
	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if e.allQueuesEmpty() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	e.logger.Warn("engine: stop grace period elapsed with non-empty shard queues")
}

func (e *Engine) allQueuesEmpty() bool {
	for _, q := range e.queues {
		if q.Size() > 0 {
			return false
		}
	}
	return true
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Counters aggregates the ingestor's and every worker's counters into one
// snapshot, matching spec.md §4.6's counters() shape.
func (e *Engine) Counters() Counters {
	ic := e.ingestor.Counters()
	c := Counters{
		Received:            ic.Received,
		DroppedBackpressure: ic.DroppedBackpressure,
		Malformed:           ic.Malformed,
		UnknownTemplate:     ic.UnknownTemplate,
	}
	for _, w := range e.workers {
		wc := w.Snapshot()
		c.Errors += wc.Errors
		c.RepliesSent += wc.RepliesSent
		c.RepliesFailed += wc.RepliesFailed
	}
	return c
}

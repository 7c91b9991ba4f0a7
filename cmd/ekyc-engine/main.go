// Command ekyc-engine wires environment configuration, logging, metrics,
// the store and transport adapters, and the engine itself, following the
// teacher's cmd/server/main.go shape: build dependencies, start, wait for
// a signal, shut down gracefully.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ekyc-engine/internal/engine"
	"ekyc-engine/internal/ingest"
	"ekyc-engine/internal/platform/config"
	"ekyc-engine/internal/platform/httpserver"
	"ekyc-engine/internal/platform/logger"
	"ekyc-engine/internal/platform/metrics"
	redisplatform "ekyc-engine/internal/platform/redis"
	"ekyc-engine/internal/store"
	"ekyc-engine/internal/store/cache"
	memorystore "ekyc-engine/internal/store/memory"
	"ekyc-engine/internal/store/postgres"
	"ekyc-engine/internal/transport"
	"ekyc-engine/internal/transport/kafka"
	"ekyc-engine/internal/transport/memory"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("config: fatal", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogFormat)
	m := metrics.New()

	s, err := buildStore(cfg, log)
	if err != nil {
		log.Error("store: fatal construction error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subscriber, publisher, err := buildTransport(ctx, cfg)
	if err != nil {
		log.Error("transport: fatal construction error", "error", err)
		_ = s.Close()
		os.Exit(1)
	}

	eng := engine.New(engine.Config{
		NumShards:     cfg.NumShards,
		QueueCapacity: cfg.QueueCapacity,
		ShardPolicy:   engine.ShardPolicyName(cfg.ShardPolicy),
		IngestBackoff: ingest.Backoff{
			Spins:   cfg.ShardSpins,
			Yields:  cfg.ShardYields,
			Timeout: cfg.ShardTimeout,
		},
		StopGracePeriod: cfg.StopGracePeriod,
	}, subscriber, publisher, s, log)

	eng.Start()
	log.Info("ekyc-engine: started", "num_shards", cfg.NumShards)

	router := httpserver.NewRouter(func() bool {
		return eng.State() == engine.StateRunning
	})
	admin := httpserver.New(cfg.MetricsAddr, router)
	go func() {
		if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("admin server: fatal error", "error", err)
		}
	}()

	go reportCounters(ctx, eng, m, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("ekyc-engine: shutdown signal received")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = admin.Shutdown(shutdownCtx)

	eng.Stop()
	log.Info("ekyc-engine: stopped")
}

func buildStore(cfg config.Engine, log *slog.Logger) (store.Store, error) {
	var base store.Store
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := db.Ping(); err != nil {
			return nil, err
		}
		base = postgres.New(db)
	default:
		base = memorystore.New()
	}

	if cfg.Redis.URL == "" {
		return base, nil
	}
	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		return nil, err
	}
	if redisClient == nil {
		return base, nil
	}
	log.Info("store: wrapping with redis-cached decorator", "ttl", cfg.CacheTTL)
	return cache.New(base, redisClient.Client, cache.WithTTL(cfg.CacheTTL)), nil
}

func buildTransport(ctx context.Context, cfg config.Engine) (transport.Subscriber, transport.Publisher, error) {
	if cfg.KafkaBrokers == "" {
		bus := memory.NewBus(1024)
		return memory.NewSubscriber(bus), memory.NewPublisher(bus), nil
	}

	brokers := strings.Split(cfg.KafkaBrokers, ",")
	subscriber, err := kafka.NewSubscriber(ctx, kafka.SubscriberConfig{
		Brokers: brokers,
		Topic:   cfg.SubscriptionChannel,
		GroupID: cfg.KafkaConsumerGroup,
	})
	if err != nil {
		return nil, nil, err
	}
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers: brokers,
		Topic:   cfg.PublicationChannel,
	})
	if err != nil {
		_ = subscriber.Close()
		return nil, nil, err
	}
	return subscriber, publisher, nil
}

// reportCounters periodically syncs the engine's counters onto the
// Prometheus registry until ctx is cancelled.
func reportCounters(ctx context.Context, eng *engine.Engine, m *metrics.Metrics, log *slog.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var prev metrics.Snapshot
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c := eng.Counters()
			cur := metrics.Snapshot{
				Received:            c.Received,
				DroppedBackpressure: c.DroppedBackpressure,
				Malformed:           c.Malformed,
				UnknownTemplate:     c.UnknownTemplate,
				Errors:              c.Errors,
				RepliesSent:         c.RepliesSent,
				RepliesFailed:       c.RepliesFailed,
			}
			m.Sync(prev, cur)
			prev = cur
		}
	}
}

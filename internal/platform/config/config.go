// Package config loads the engine's configuration from environment
// variables, following abramin-Credo's internal/platform/config FromEnv()
// shape: one struct, one loader function, defaults inline, main stays
// lean.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ShardPolicy selects internal/shard's routing strategy.
type ShardPolicy string

const (
	ShardPolicyRoundRobin  ShardPolicy = "round-robin"
	ShardPolicyKeyAffinity ShardPolicy = "key-affinity"
)

// StoreDriver selects which internal/store adapter the engine wires up.
type StoreDriver string

const (
	StoreDriverPostgres StoreDriver = "postgres"
	StoreDriverMemory   StoreDriver = "memory"
)

// LogFormat selects internal/platform/logger's slog handler.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// RedisConfig is what internal/platform/redis.New needs to build a
// go-redis client. URL empty means the cache decorator is not wired in.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Engine is the full configuration surface spec.md §6 requires, plus the
// ambient-only keys SPEC_FULL.md §6 adds (log format, metrics address,
// cache TTL, store driver).
type Engine struct {
	NumShards       int
	QueueCapacity   int
	ShardPolicy     ShardPolicy
	ShardTimeout    time.Duration
	ShardSpins      int
	ShardYields     int
	StopGracePeriod time.Duration

	SubscriptionChannel string
	PublicationChannel  string
	KafkaBrokers        string
	KafkaConsumerGroup  string

	StoreDriver StoreDriver
	PostgresDSN string
	Redis       RedisConfig
	CacheTTL    time.Duration

	MetricsAddr string
	LogFormat   LogFormat
}

// FromEnv builds an Engine config from environment variables, all under
// the EKYC_ prefix, applying spec.md §6's defaults where a variable is
// unset.
func FromEnv() (Engine, error) {
	cfg := Engine{
		NumShards:       envInt("EKYC_NUM_SHARDS", 4),
		QueueCapacity:   envInt("EKYC_QUEUE_CAPACITY", 1<<20),
		ShardPolicy:     ShardPolicy(envString("EKYC_SHARD_POLICY", string(ShardPolicyRoundRobin))),
		ShardTimeout:    envDuration("EKYC_SHARD_TIMEOUT", 50*time.Millisecond),
		ShardSpins:      envInt("EKYC_SHARD_SPINS", 100),
		ShardYields:     envInt("EKYC_SHARD_YIELDS", 1000),
		StopGracePeriod: envDuration("EKYC_STOP_GRACE_PERIOD", 500*time.Millisecond),

		SubscriptionChannel: envString("EKYC_SUBSCRIPTION_CHANNEL", "ekyc-requests"),
		PublicationChannel:  envString("EKYC_PUBLICATION_CHANNEL", "ekyc-responses"),
		KafkaBrokers:        envString("EKYC_KAFKA_BROKERS", ""),
		KafkaConsumerGroup:  envString("EKYC_KAFKA_CONSUMER_GROUP", "ekyc-engine"),

		StoreDriver: StoreDriver(envString("EKYC_STORE_DRIVER", string(StoreDriverMemory))),
		PostgresDSN: envString("EKYC_POSTGRES_DSN", ""),
		Redis: RedisConfig{
			URL:          envString("EKYC_REDIS_URL", ""),
			PoolSize:     envInt("EKYC_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("EKYC_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("EKYC_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("EKYC_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("EKYC_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		CacheTTL: envDuration("EKYC_CACHE_TTL_MS", 2*time.Second),

		MetricsAddr: envString("EKYC_METRICS_ADDR", ":9090"),
		LogFormat:   LogFormat(envString("EKYC_LOG_FORMAT", string(LogFormatJSON))),
	}

	if cfg.NumShards <= 0 || cfg.NumShards&(cfg.NumShards-1) != 0 {
		return Engine{}, fmt.Errorf("config: EKYC_NUM_SHARDS must be a power of two, got %d", cfg.NumShards)
	}
	if cfg.StoreDriver == StoreDriverPostgres && cfg.PostgresDSN == "" {
		return Engine{}, fmt.Errorf("config: EKYC_STORE_DRIVER=postgres requires EKYC_POSTGRES_DSN")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		if ms, err2 := strconv.Atoi(v); err2 == nil {
			return time.Duration(ms) * time.Millisecond
		}
		return fallback
	}
	return d
}

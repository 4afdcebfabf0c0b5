package replay

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:generate mockgen -package=mock -source=interfaces.go -destination=mock/replay.go

// Store keeps recorded response bodies by request key.
// Backend failures are logged by the implementation, never returned.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Put(ctx context.Context, key, body string)
	Close() error
}

// RedisClient defines the subset of Redis operations the shared store needs
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// MetricsRecorder counts replay lookups by outcome ("hit" or "miss")
type MetricsRecorder interface {
	RecordReplay(status string)
}

// NoopMetrics discards replay metrics
type NoopMetrics struct{}

func (NoopMetrics) RecordReplay(status string) {}

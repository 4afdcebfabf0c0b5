package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/status-im/rest-executor/config"
	"github.com/status-im/rest-executor/logger"
	"github.com/status-im/rest-executor/models"
)

// Ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)

// RedisStore keeps recorded responses in Redis so they can be shared
// between processes
type RedisStore struct {
	client RedisClient
	cfg    config.RedisStoreSettings
	logger logger.Logger
	now    func() time.Time
}

// RedisOption is a functional option for configuring RedisStore
type RedisOption func(*RedisStore)

// WithRedisLogger sets the logger for RedisStore
func WithRedisLogger(l logger.Logger) RedisOption {
	return func(rs *RedisStore) {
		if l != nil {
			rs.logger = l
		}
	}
}

// NewRedisStore creates a new RedisStore on top of client
func NewRedisStore(cfg config.RedisStoreSettings, client RedisClient, opts ...RedisOption) *RedisStore {
	applyRedisDefaults(&cfg)

	rs := &RedisStore{
		client: client,
		cfg:    cfg,
		logger: logger.NoopLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(rs)
	}

	return rs
}

// NewRedisClient connects to the Redis server at cfg.URL and pings it
func NewRedisClient(cfg config.RedisStoreSettings) (RedisClient, error) {
	applyRedisDefaults(&cfg)

	redisOpts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.DialTimeout = cfg.DialTimeout
	redisOpts.ReadTimeout = cfg.ReadTimeout
	redisOpts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", redisOpts.Addr, err)
	}

	return client, nil
}

func applyRedisDefaults(cfg *config.RedisStoreSettings) {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "rest:replay:"
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = time.Second
	}
}

// Get returns the recorded body for key
func (rs *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, rs.cfg.ReadTimeout)
	defer cancel()

	data, err := rs.client.Get(ctx, rs.cfg.KeyPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			rs.logger.Warn("Redis replay get failed", "key", key, "error", err)
		}
		return "", false
	}

	var rec models.ReplayRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		rs.logger.Error("Failed to unmarshal Redis replay record", "key", key, "error", err)
		return "", false
	}

	if rec.IsExpired(rs.now()) {
		return "", false
	}

	return rec.Body, true
}

// Put records body under key with the configured TTL
func (rs *RedisStore) Put(ctx context.Context, key, body string) {
	ctx, cancel := context.WithTimeout(ctx, rs.cfg.WriteTimeout)
	defer cancel()

	data, err := json.Marshal(models.NewReplayRecord(body, rs.now(), rs.cfg.TTL))
	if err != nil {
		rs.logger.Error("Failed to marshal Redis replay record", "key", key, "error", err)
		return
	}

	ttl := rs.cfg.TTL
	if ttl < 0 {
		ttl = 0
	}

	if err := rs.client.Set(ctx, rs.cfg.KeyPrefix+key, data, ttl).Err(); err != nil {
		rs.logger.Warn("Failed to set Redis replay record", "key", key, "error", err)
	}
}

// Close closes the Redis connection
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

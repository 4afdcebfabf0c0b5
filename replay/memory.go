package replay

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/status-im/rest-executor/config"
	"github.com/status-im/rest-executor/logger"
	"github.com/status-im/rest-executor/models"
)

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps recorded responses in process using BigCache
type MemoryStore struct {
	cache        *bigcache.BigCache
	logger       logger.Logger
	ttl          time.Duration
	maxEntrySize int
	now          func() time.Time
}

// MemoryOption is a functional option for configuring MemoryStore
type MemoryOption func(*MemoryStore)

// WithMemoryLogger sets the logger for MemoryStore
func WithMemoryLogger(l logger.Logger) MemoryOption {
	return func(ms *MemoryStore) {
		if l != nil {
			ms.logger = l
		}
	}
}

// NewMemoryStore creates a new MemoryStore
func NewMemoryStore(cfg config.MemoryStoreSettings, opts ...MemoryOption) (*MemoryStore, error) {
	if cfg.SizeMB <= 0 {
		cfg.SizeMB = 64
	}
	if cfg.MaxEntrySize <= 0 {
		cfg.MaxEntrySize = 1048576
	}
	if cfg.Shards <= 0 {
		cfg.Shards = 64
	}

	bcConfig := bigcache.DefaultConfig(10 * time.Minute)
	if cfg.TTL > 0 {
		bcConfig.LifeWindow = cfg.TTL
	}
	bcConfig.HardMaxCacheSize = cfg.SizeMB
	bcConfig.MaxEntrySize = cfg.MaxEntrySize
	bcConfig.Shards = cfg.Shards
	bcConfig.Verbose = false

	c, err := bigcache.New(context.Background(), bcConfig)
	if err != nil {
		return nil, err
	}

	ms := &MemoryStore{
		cache:        c,
		logger:       logger.NoopLogger{},
		ttl:          cfg.TTL,
		maxEntrySize: cfg.MaxEntrySize,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(ms)
	}

	return ms, nil
}

// Get returns the recorded body for key
func (ms *MemoryStore) Get(_ context.Context, key string) (string, bool) {
	data, err := ms.cache.Get(key)
	if err != nil {
		if !errors.Is(err, bigcache.ErrEntryNotFound) {
			ms.logger.Warn("Memory replay get failed", "key", key, "error", err)
		}
		return "", false
	}

	var rec models.ReplayRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		ms.logger.Warn("Failed to unmarshal memory replay record", "key", key, "error", err)
		_ = ms.cache.Delete(key)
		return "", false
	}

	if rec.IsExpired(ms.now()) {
		_ = ms.cache.Delete(key)
		return "", false
	}

	return rec.Body, true
}

// Put records body under key. Entries over the configured size are skipped.
func (ms *MemoryStore) Put(_ context.Context, key, body string) {
	data, err := json.Marshal(models.NewReplayRecord(body, ms.now(), ms.ttl))
	if err != nil {
		ms.logger.Error("Failed to marshal memory replay record", "key", key, "error", err)
		return
	}

	if len(data) > ms.maxEntrySize {
		ms.logger.Warn("Replay record too large, skipping memory store",
			"key", key,
			"size", len(data),
			"max_size", ms.maxEntrySize)
		return
	}

	if err := ms.cache.Set(key, data); err != nil {
		ms.logger.Error("Failed to set memory replay record", "key", key, "error", err)
	}
}

// Len returns the number of stored records
func (ms *MemoryStore) Len() int {
	return ms.cache.Len()
}

// Close releases the cache
func (ms *MemoryStore) Close() error {
	return ms.cache.Close()
}

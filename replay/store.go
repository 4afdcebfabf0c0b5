package replay

import (
	"errors"
	"fmt"

	"github.com/status-im/rest-executor/config"
	"github.com/status-im/rest-executor/logger"
)

// Config selects the replay tiers; memory is L1, Redis is L2
type Config = config.ReplaySettings

// NewStore builds the tiered store described by cfg. When no tier is
// enabled an in-memory store is used.
func NewStore(cfg Config, l logger.Logger) (Store, error) {
	if l == nil {
		l = logger.NoopLogger{}
	}

	var stores []Store

	if cfg.Memory.Enabled || !cfg.Redis.Enabled {
		ms, err := NewMemoryStore(cfg.Memory, WithMemoryLogger(l))
		if err != nil {
			return nil, fmt.Errorf("failed to create memory replay store: %w", err)
		}
		stores = append(stores, ms)
	}

	if cfg.Redis.Enabled {
		client, err := NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, errors.Join(err, closeAll(stores))
		}
		l.Info("Connected to Redis replay store", "key_prefix", cfg.Redis.KeyPrefix)
		stores = append(stores, NewRedisStore(cfg.Redis, client, WithRedisLogger(l)))
	}

	if len(stores) == 1 {
		return stores[0], nil
	}

	return NewMultiStore(stores, WithMultiLogger(l)), nil
}

func closeAll(stores []Store) error {
	var errs []error
	for _, s := range stores {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

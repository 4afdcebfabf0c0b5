package replay

import (
	"context"

	"github.com/status-im/rest-executor/logger"
	"github.com/status-im/rest-executor/models"
)

// Ensure MultiStore implements Store
var _ Store = (*MultiStore)(nil)

// MultiStore reads through an ordered list of stores and writes to all of them.
// A hit in a later tier is copied back into the earlier ones.
type MultiStore struct {
	stores []Store
	logger logger.Logger
}

// MultiOption is a functional option for configuring MultiStore
type MultiOption func(*MultiStore)

// WithMultiLogger sets the logger for MultiStore
func WithMultiLogger(l logger.Logger) MultiOption {
	return func(m *MultiStore) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMultiStore creates a MultiStore over stores, fastest first
func NewMultiStore(stores []Store, opts ...MultiOption) *MultiStore {
	m := &MultiStore{
		stores: stores,
		logger: logger.NoopLogger{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Get returns the first recorded body found
func (m *MultiStore) Get(ctx context.Context, key string) (string, bool) {
	result := m.GetWithLevel(ctx, key)
	return result.Body, result.Found
}

// GetWithLevel returns the first recorded body found along with its tier
func (m *MultiStore) GetWithLevel(ctx context.Context, key string) *models.ReplayResult {
	if len(m.stores) == 0 {
		m.logger.Warn("No replay stores available for get operation", "key", key)
		return &models.ReplayResult{Level: models.ReplayLevelMiss}
	}

	for i, s := range m.stores {
		body, found := s.Get(ctx, key)
		if !found {
			continue
		}

		for j := 0; j < i; j++ {
			m.stores[j].Put(ctx, key, body)
		}

		return &models.ReplayResult{
			Body:  body,
			Found: true,
			Level: models.ReplayLevelFromIndex(i),
		}
	}

	return &models.ReplayResult{Level: models.ReplayLevelMiss}
}

// Put records body in every tier
func (m *MultiStore) Put(ctx context.Context, key, body string) {
	if len(m.stores) == 0 {
		m.logger.Warn("No replay stores available for put operation", "key", key)
		return
	}

	for _, s := range m.stores {
		s.Put(ctx, key, body)
	}
}

// Len returns the number of tiers
func (m *MultiStore) Len() int {
	return len(m.stores)
}

// Close closes every tier and joins their errors
func (m *MultiStore) Close() error {
	return closeAll(m.stores)
}

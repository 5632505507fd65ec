package memory

import (
	"context"
	"sync"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// MetricsStore is an in-memory implementation of storage.MetricsStore.
type MetricsStore struct {
	mu   sync.RWMutex
	data map[string]*domain.MetricsSnapshot // keyed by trader ID
}

// NewMetricsStore creates a new in-memory metrics store.
func NewMetricsStore() *MetricsStore {
	return &MetricsStore{
		data: make(map[string]*domain.MetricsSnapshot),
	}
}

// Upsert writes the current metrics snapshot for a trader.
func (s *MetricsStore) Upsert(_ context.Context, m *domain.MetricsSnapshot) error {
	if m == nil || m.TraderID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	metricsCopy := *m
	s.data[m.TraderID] = &metricsCopy
	return nil
}

// GetByTraderID retrieves the current snapshot. Returns ErrNotFound if the
// trader has no metrics yet.
func (s *MetricsStore) GetByTraderID(_ context.Context, traderID string) (*domain.MetricsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.data[traderID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	metricsCopy := *m
	return &metricsCopy, nil
}

// Verify interface compliance at compile time.
var _ storage.MetricsStore = (*MetricsStore)(nil)

package memory

import (
	"context"
	"sync"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// PayoutStore is an in-memory implementation of storage.PayoutStore.
type PayoutStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PayoutRecord // keyed by trader ID
}

// NewPayoutStore creates a new in-memory payout store.
func NewPayoutStore() *PayoutStore {
	return &PayoutStore{
		data: make(map[string]*domain.PayoutRecord),
	}
}

// Upsert writes the payout record keyed by TraderID. CreatedAt is preserved
// across updates.
func (s *PayoutStore) Upsert(_ context.Context, p *domain.PayoutRecord) error {
	if p == nil || p.TraderID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *p
	if existing, exists := s.data[p.TraderID]; exists {
		recordCopy.ID = existing.ID
		recordCopy.CreatedAt = existing.CreatedAt
	}
	s.data[p.TraderID] = &recordCopy
	return nil
}

// GetByTraderID retrieves the payout record. Returns ErrNotFound if the
// trader has never been calculated.
func (s *PayoutStore) GetByTraderID(_ context.Context, traderID string) (*domain.PayoutRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[traderID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	recordCopy := *p
	return &recordCopy, nil
}

// Verify interface compliance at compile time.
var _ storage.PayoutStore = (*PayoutStore)(nil)

package memory

import (
	"context"
	"sort"
	"sync"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// ClosedTradeStore is an in-memory implementation of storage.ClosedTradeStore.
type ClosedTradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ClosedTrade // keyed by trade ID
}

// NewClosedTradeStore creates a new in-memory closed trade store.
func NewClosedTradeStore() *ClosedTradeStore {
	return &ClosedTradeStore{
		data: make(map[string]*domain.ClosedTrade),
	}
}

// Insert adds a closed trade. Returns ErrDuplicateKey if the ID exists.
func (s *ClosedTradeStore) Insert(_ context.Context, t *domain.ClosedTrade) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertLocked(t)
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any
// duplicate.
func (s *ClosedTradeStore) InsertBulk(_ context.Context, trades []*domain.ClosedTrade) error {
	for _, t := range trades {
		if t == nil || t.ID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check all before writing any
	for _, t := range trades {
		if _, exists := s.data[t.ID]; exists {
			return storage.ErrDuplicateKey
		}
	}
	for _, t := range trades {
		if err := s.insertLocked(t); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClosedTradeStore) insertLocked(t *domain.ClosedTrade) error {
	if _, exists := s.data[t.ID]; exists {
		return storage.ErrDuplicateKey
	}
	tradeCopy := *t
	s.data[t.ID] = &tradeCopy
	return nil
}

// ListByAccountIDs retrieves closed trades for the given accounts, ordered
// by close time ASC, honoring the query's bounds and limit.
func (s *ClosedTradeStore) ListByAccountIDs(_ context.Context, accountIDs []string, q domain.ClosedTradeQuery) ([]*domain.ClosedTrade, error) {
	wanted := make(map[string]bool, len(accountIDs))
	for _, id := range accountIDs {
		wanted[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ClosedTrade
	for _, t := range s.data {
		if !wanted[t.AccountID] {
			continue
		}
		if q.From != nil && t.CloseTime.Before(*q.From) {
			continue
		}
		if q.To != nil && t.CloseTime.After(*q.To) {
			continue
		}
		tradeCopy := *t
		result = append(result, &tradeCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CloseTime.Before(result[j].CloseTime)
	})

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.ClosedTradeStore = (*ClosedTradeStore)(nil)

package memory

import (
	"context"
	"sync"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// LegacyScoreStore is an in-memory implementation of storage.LegacyScoreStore.
type LegacyScoreStore struct {
	mu   sync.RWMutex
	data map[string]*domain.LegacyScore // keyed by trading account ID
}

// NewLegacyScoreStore creates a new in-memory legacy score store.
func NewLegacyScoreStore() *LegacyScoreStore {
	return &LegacyScoreStore{
		data: make(map[string]*domain.LegacyScore),
	}
}

// Insert adds a legacy score. Returns ErrDuplicateKey if the account already
// has one.
func (s *LegacyScoreStore) Insert(_ context.Context, score *domain.LegacyScore) error {
	if score == nil || score.TradingAccountID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[score.TradingAccountID]; exists {
		return storage.ErrDuplicateKey
	}

	scoreCopy := *score
	s.data[score.TradingAccountID] = &scoreCopy
	return nil
}

// GetByAccountID retrieves the legacy score for a trading account.
func (s *LegacyScoreStore) GetByAccountID(_ context.Context, accountID string) (*domain.LegacyScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	score, exists := s.data[accountID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	scoreCopy := *score
	return &scoreCopy, nil
}

// ListByAccountIDs retrieves legacy scores for the given accounts, skipping
// accounts without one.
func (s *LegacyScoreStore) ListByAccountIDs(_ context.Context, accountIDs []string) ([]*domain.LegacyScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LegacyScore
	for _, id := range accountIDs {
		if score, exists := s.data[id]; exists {
			scoreCopy := *score
			result = append(result, &scoreCopy)
		}
	}
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.LegacyScoreStore = (*LegacyScoreStore)(nil)

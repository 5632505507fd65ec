package memory

import (
	"context"
	"sort"
	"sync"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// TraderStore is an in-memory implementation of storage.TraderStore.
type TraderStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TraderSummary // keyed by trader ID
}

// NewTraderStore creates a new in-memory trader store.
func NewTraderStore() *TraderStore {
	return &TraderStore{
		data: make(map[string]*domain.TraderSummary),
	}
}

// Insert adds a new trader. Returns ErrDuplicateKey if the ID exists.
func (s *TraderStore) Insert(_ context.Context, t *domain.TraderSummary) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.ID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	traderCopy := *t
	s.data[t.ID] = &traderCopy
	return nil
}

// GetByID retrieves a trader by its ID. Returns ErrNotFound if not exists.
func (s *TraderStore) GetByID(_ context.Context, traderID string) (*domain.TraderSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[traderID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	traderCopy := *t
	return &traderCopy, nil
}

// GetByUserID retrieves the trader linked to a platform user.
func (s *TraderStore) GetByUserID(_ context.Context, userID string) (*domain.TraderSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.data {
		if t.UserID == userID {
			traderCopy := *t
			return &traderCopy, nil
		}
	}
	return nil, storage.ErrNotFound
}

// List retrieves traders ordered by rank ASC with tier filter and pagination.
func (s *TraderStore) List(_ context.Context, q storage.TraderQuery) ([]*domain.TraderSummary, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TraderSummary
	for _, t := range s.data {
		if q.Tier != "" && t.Tier != q.Tier {
			continue
		}
		traderCopy := *t
		result = append(result, &traderCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Rank < result[j].Rank
	})

	total := len(result)
	if q.Offset > 0 {
		if q.Offset >= len(result) {
			return nil, total, nil
		}
		result = result[q.Offset:]
	}
	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, total, nil
}

// UpdateRanking overwrites a trader's score, tier, and rank.
func (s *TraderStore) UpdateRanking(_ context.Context, traderID string, score float64, tier domain.Tier, rank int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.data[traderID]
	if !exists {
		return storage.ErrNotFound
	}
	t.Score = score
	t.Tier = tier
	t.Rank = rank
	return nil
}

// Verify interface compliance at compile time.
var _ storage.TraderStore = (*TraderStore)(nil)

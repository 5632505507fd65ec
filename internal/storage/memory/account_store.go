package memory

import (
	"context"
	"sort"
	"sync"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// TradingAccountStore is an in-memory implementation of
// storage.TradingAccountStore.
type TradingAccountStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradingAccount // keyed by account ID
}

// NewTradingAccountStore creates a new in-memory trading account store.
func NewTradingAccountStore() *TradingAccountStore {
	return &TradingAccountStore{
		data: make(map[string]*domain.TradingAccount),
	}
}

// Insert adds a new account. Returns ErrDuplicateKey if the ID exists.
func (s *TradingAccountStore) Insert(_ context.Context, a *domain.TradingAccount) error {
	if a == nil || a.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.ID]; exists {
		return storage.ErrDuplicateKey
	}

	accountCopy := *a
	s.data[a.ID] = &accountCopy
	return nil
}

// GetByID retrieves an account by its ID. Returns ErrNotFound if not exists.
func (s *TradingAccountStore) GetByID(_ context.Context, accountID string) (*domain.TradingAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[accountID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	accountCopy := *a
	return &accountCopy, nil
}

// ListByTraderID retrieves all accounts owned by a trader, ordered by ID ASC.
func (s *TradingAccountStore) ListByTraderID(_ context.Context, traderID string) ([]*domain.TradingAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradingAccount
	for _, a := range s.data {
		if a.TraderID == traderID {
			accountCopy := *a
			result = append(result, &accountCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.TradingAccountStore = (*TradingAccountStore)(nil)

package memory

import (
	"context"
	"sort"
	"sync"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// EntitlementStore is an in-memory implementation of storage.EntitlementStore.
type EntitlementStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Entitlement // keyed by entitlement ID
}

// NewEntitlementStore creates a new in-memory entitlement store.
func NewEntitlementStore() *EntitlementStore {
	return &EntitlementStore{
		data: make(map[string]*domain.Entitlement),
	}
}

// Insert adds an entitlement. Returns ErrDuplicateKey if the ID exists.
func (s *EntitlementStore) Insert(_ context.Context, e *domain.Entitlement) error {
	if e == nil || e.ID == "" || e.TraderID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.ID]; exists {
		return storage.ErrDuplicateKey
	}

	entitlementCopy := *e
	s.data[e.ID] = &entitlementCopy
	return nil
}

// ListPendingByTraderID retrieves PENDING entitlements for a trader, ordered
// by grant time ASC.
func (s *EntitlementStore) ListPendingByTraderID(_ context.Context, traderID string) ([]*domain.Entitlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Entitlement
	for _, e := range s.data {
		if e.TraderID == traderID && e.Status == domain.EntitlementStatusPending {
			entitlementCopy := *e
			result = append(result, &entitlementCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].GrantedAt.Before(result[j].GrantedAt)
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.EntitlementStore = (*EntitlementStore)(nil)

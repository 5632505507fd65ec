package postgres

import (
	"context"
	"fmt"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// EntitlementStore implements storage.EntitlementStore using PostgreSQL.
type EntitlementStore struct {
	pool *Pool
}

// NewEntitlementStore creates a new EntitlementStore.
func NewEntitlementStore(pool *Pool) *EntitlementStore {
	return &EntitlementStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EntitlementStore = (*EntitlementStore)(nil)

// Insert adds an entitlement. Returns ErrDuplicateKey if the ID exists.
func (s *EntitlementStore) Insert(ctx context.Context, e *domain.Entitlement) error {
	if e == nil || e.ID == "" || e.TraderID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO entitlements (
			id, trader_id, reward_type, status, granted_at
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		e.ID,
		e.TraderID,
		e.RewardType,
		e.Status,
		e.GrantedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert entitlement: %w", err)
	}
	return nil
}

// ListPendingByTraderID retrieves PENDING entitlements for a trader, ordered
// by grant time ASC.
func (s *EntitlementStore) ListPendingByTraderID(ctx context.Context, traderID string) ([]*domain.Entitlement, error) {
	query := `
		SELECT id, trader_id, reward_type, status, granted_at
		FROM entitlements
		WHERE trader_id = $1 AND status = $2
		ORDER BY granted_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, traderID, domain.EntitlementStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending entitlements: %w", err)
	}
	defer rows.Close()

	var entitlements []*domain.Entitlement
	for rows.Next() {
		var e domain.Entitlement
		err := rows.Scan(
			&e.ID,
			&e.TraderID,
			&e.RewardType,
			&e.Status,
			&e.GrantedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan entitlement row: %w", err)
		}
		entitlements = append(entitlements, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entitlement rows: %w", err)
	}

	return entitlements, nil
}

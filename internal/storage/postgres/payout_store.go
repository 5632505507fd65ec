package postgres

import (
	"context"
	"fmt"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// PayoutStore implements storage.PayoutStore using PostgreSQL.
type PayoutStore struct {
	pool *Pool
}

// NewPayoutStore creates a new PayoutStore.
func NewPayoutStore(pool *Pool) *PayoutStore {
	return &PayoutStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PayoutStore = (*PayoutStore)(nil)

// Upsert writes the payout record keyed by trader_id. The original id and
// created_at survive updates.
func (s *PayoutStore) Upsert(ctx context.Context, p *domain.PayoutRecord) error {
	if p == nil || p.TraderID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO payouts (
			id, trader_id, level, payout_percent, average_trades_per_day,
			total_trading_days, max_trades_per_day, next_update_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (trader_id) DO UPDATE SET
			level = EXCLUDED.level,
			payout_percent = EXCLUDED.payout_percent,
			average_trades_per_day = EXCLUDED.average_trades_per_day,
			total_trading_days = EXCLUDED.total_trading_days,
			max_trades_per_day = EXCLUDED.max_trades_per_day,
			next_update_at = EXCLUDED.next_update_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		p.ID,
		p.TraderID,
		string(p.Level),
		p.PayoutPercent,
		p.AverageTradesPerDay,
		p.TotalTradingDays,
		p.MaxTradesPerDay,
		p.NextUpdateAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert payout: %w", err)
	}
	return nil
}

// GetByTraderID retrieves the payout record. Returns ErrNotFound if the
// trader has never been calculated.
func (s *PayoutStore) GetByTraderID(ctx context.Context, traderID string) (*domain.PayoutRecord, error) {
	query := `
		SELECT id, trader_id, level, payout_percent, average_trades_per_day,
		       total_trading_days, max_trades_per_day, next_update_at, created_at, updated_at
		FROM payouts
		WHERE trader_id = $1
	`

	var p domain.PayoutRecord
	var levelStr string
	err := s.pool.QueryRow(ctx, query, traderID).Scan(
		&p.ID,
		&p.TraderID,
		&levelStr,
		&p.PayoutPercent,
		&p.AverageTradesPerDay,
		&p.TotalTradingDays,
		&p.MaxTradesPerDay,
		&p.NextUpdateAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get payout by trader id: %w", err)
	}

	p.Level = domain.PayoutLevel(levelStr)
	return &p, nil
}

package postgres

import (
	"context"
	"fmt"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// MetricsStore implements storage.MetricsStore using PostgreSQL.
type MetricsStore struct {
	pool *Pool
}

// NewMetricsStore creates a new MetricsStore.
func NewMetricsStore(pool *Pool) *MetricsStore {
	return &MetricsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MetricsStore = (*MetricsStore)(nil)

// Upsert writes the current metrics snapshot for a trader.
func (s *MetricsStore) Upsert(ctx context.Context, m *domain.MetricsSnapshot) error {
	if m == nil || m.TraderID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trader_metrics (
			trader_id, win_rate_pct, profit_factor, drawdown_pct, total_trades, trading_days, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (trader_id) DO UPDATE SET
			win_rate_pct = EXCLUDED.win_rate_pct,
			profit_factor = EXCLUDED.profit_factor,
			drawdown_pct = EXCLUDED.drawdown_pct,
			total_trades = EXCLUDED.total_trades,
			trading_days = EXCLUDED.trading_days,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		m.TraderID,
		m.WinRatePct,
		m.ProfitFactor,
		m.DrawdownPct,
		m.TotalTrades,
		m.TradingDays,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert trader metrics: %w", err)
	}
	return nil
}

// GetByTraderID retrieves the current snapshot. Returns ErrNotFound if the
// trader has no metrics yet.
func (s *MetricsStore) GetByTraderID(ctx context.Context, traderID string) (*domain.MetricsSnapshot, error) {
	query := `
		SELECT trader_id, win_rate_pct, profit_factor, drawdown_pct, total_trades, trading_days, updated_at
		FROM trader_metrics
		WHERE trader_id = $1
	`

	var m domain.MetricsSnapshot
	err := s.pool.QueryRow(ctx, query, traderID).Scan(
		&m.TraderID,
		&m.WinRatePct,
		&m.ProfitFactor,
		&m.DrawdownPct,
		&m.TotalTrades,
		&m.TradingDays,
		&m.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trader metrics: %w", err)
	}
	return &m, nil
}

package ranking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"traderank/internal/aggregation"
	"traderank/internal/domain"
	"traderank/internal/idhash"
	"traderank/internal/observability"
	"traderank/internal/payout"
	"traderank/internal/storage"
)

// payoutRefreshInterval is how long a calculated payout stays fresh before
// clients should request a recalculation.
const payoutRefreshInterval = 24 * time.Hour

// CalculatePayout derives the trader's trade statistics, runs the payout
// engine, and upserts the payout record. The stored average is the exact
// quotient maxTradesPerDay/totalTradingDays; rounding it would let a record
// near a band boundary disagree with the band it claims. Repeated calls are
// last-write-wins; the record's ID and creation time survive recalculation.
func (s *Service) CalculatePayout(ctx context.Context, traderID string) (*domain.PayoutRecord, error) {
	stats, err := s.tradeStats(ctx, traderID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, fmt.Errorf("trader %s: %w", traderID, payout.ErrNoTradingDays)
	}

	result, err := s.payouts.Calculate(stats.MaxTradesPerDay, stats.TotalTradingDays)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	nextUpdate := now.Add(payoutRefreshInterval)
	record := &domain.PayoutRecord{
		ID:                  idhash.ComputePayoutID(traderID),
		TraderID:            traderID,
		Level:               result.Band.Level,
		PayoutPercent:       result.Band.PayoutPercent,
		AverageTradesPerDay: result.AverageTradesPerDay,
		TotalTradingDays:    stats.TotalTradingDays,
		MaxTradesPerDay:     stats.MaxTradesPerDay,
		NextUpdateAt:        &nextUpdate,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.stores.Payouts.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("upsert payout: %w", err)
	}
	observability.RecordPayoutCalculated()
	return record, nil
}

// GetPayout retrieves the stored payout record for a trader.
func (s *Service) GetPayout(ctx context.Context, traderID string) (*domain.PayoutRecord, error) {
	return s.stores.Payouts.GetByTraderID(ctx, traderID)
}

// PayoutBands returns the configured payout band catalog in ascending
// activity order.
func (s *Service) PayoutBands() []domain.PayoutBand {
	return s.payouts.Bands()
}

// tradeStats buckets the trader's closed trades by UTC calendar day across
// every linked account. Returns nil when the trader has no accounts or no
// closed trades.
func (s *Service) tradeStats(ctx context.Context, traderID string) (*aggregation.TradeStats, error) {
	trades, err := s.allTrades(ctx, traderID)
	if err != nil {
		return nil, err
	}
	return aggregation.DeriveTradeStats(trades), nil
}

// allTrades loads the full closed-trade history for a trader.
func (s *Service) allTrades(ctx context.Context, traderID string) ([]*domain.ClosedTrade, error) {
	accounts, err := s.stores.Accounts.ListByTraderID(ctx, traderID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, nil
	}

	accountIDs := make([]string, 0, len(accounts))
	for _, a := range accounts {
		accountIDs = append(accountIDs, a.ID)
	}

	trades, err := s.stores.Trades.ListByAccountIDs(ctx, accountIDs, domain.ClosedTradeQuery{})
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	return trades, nil
}

package ranking

import (
	"context"
	"errors"
	"fmt"

	"traderank/internal/aggregation"
	"traderank/internal/domain"
	"traderank/internal/normalization"
	"traderank/internal/storage"
)

// Path-to-next-tier messages keyed off the current payout percent.
const (
	hintReachSilver = "Increase your consistency to reach the 80% payout tier"
	hintReachGold   = "Keep your daily trade average low to reach the 95% payout tier"
	hintTopTier     = "You are in the top payout tier"
)

// recentTradeCount is how many trades the analytics view returns.
const recentTradeCount = 10

// Analytics is the per-user trading analytics view. All fields are zero
// values when the user has no linked trader.
type Analytics struct {
	TraderID         string
	WinRatePct       float64
	ProfitFactor     float64
	DrawdownPct      float64
	TotalTradingDays int
	PayoutPercent    *float64 // nil until a payout has been calculated
	EquityCurve      []aggregation.EquityPoint
	TradesThisWeek   int
	TradesLastWeek   int
	RecentTrades     []*domain.ClosedTrade
	NextTierHint     string
}

// Progress computes the gamification progress view for a platform user.
// Unlinked users get the floor state rather than an error.
func (s *Service) Progress(ctx context.Context, userID string) (*domain.ProgressState, error) {
	trader, err := s.traderForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if trader == nil {
		return s.progress.Compute(0, 0), nil
	}

	percent, days, err := s.payoutInputs(ctx, trader.ID)
	if err != nil {
		return nil, err
	}
	var pct float64
	if percent != nil {
		pct = *percent
	}
	return s.progress.Compute(pct, days), nil
}

// UserAnalytics builds the trading analytics view for a platform user.
func (s *Service) UserAnalytics(ctx context.Context, userID string) (*Analytics, error) {
	trader, err := s.traderForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if trader == nil {
		return &Analytics{}, nil
	}

	out := &Analytics{TraderID: trader.ID}

	metrics, err := s.stores.Metrics.GetByTraderID(ctx, trader.ID)
	switch {
	case err == nil:
		out.WinRatePct = normalization.WinRatePct(metrics.WinRatePct)
		out.ProfitFactor = metrics.ProfitFactor
		out.DrawdownPct = metrics.DrawdownPct
		out.TotalTradingDays = metrics.TradingDays
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("load metrics: %w", err)
	}

	percent, days, err := s.payoutInputs(ctx, trader.ID)
	if err != nil {
		return nil, err
	}
	out.PayoutPercent = percent
	if out.TotalTradingDays == 0 {
		out.TotalTradingDays = days
	}
	out.NextTierHint = nextTierHint(percent)

	trades, err := s.allTrades(ctx, trader.ID)
	if err != nil {
		return nil, err
	}
	out.EquityCurve = aggregation.EquityCurve(trades)
	out.TradesThisWeek, out.TradesLastWeek = aggregation.WeeklyCounts(trades, s.now())
	out.RecentTrades = aggregation.RecentTrades(trades, recentTradeCount)

	return out, nil
}

// traderForUser resolves the trader linked to a platform user, or nil when
// the user is unlinked.
func (s *Service) traderForUser(ctx context.Context, userID string) (*domain.TraderSummary, error) {
	trader, err := s.stores.Traders.GetByUserID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve trader for user %s: %w", userID, err)
	}
	return trader, nil
}

// payoutInputs returns the trader's payout percent (nil when never
// calculated) and the best available trading-day count: the metrics
// snapshot first, then the payout record.
func (s *Service) payoutInputs(ctx context.Context, traderID string) (*float64, int, error) {
	var percent *float64
	days := 0

	record, err := s.stores.Payouts.GetByTraderID(ctx, traderID)
	switch {
	case err == nil:
		p := record.PayoutPercent
		percent = &p
		days = record.TotalTradingDays
	case !errors.Is(err, storage.ErrNotFound):
		return nil, 0, fmt.Errorf("load payout: %w", err)
	}

	metrics, err := s.stores.Metrics.GetByTraderID(ctx, traderID)
	switch {
	case err == nil:
		if metrics.TradingDays > 0 {
			days = metrics.TradingDays
		}
	case !errors.Is(err, storage.ErrNotFound):
		return nil, 0, fmt.Errorf("load metrics: %w", err)
	}

	return percent, days, nil
}

// nextTierHint maps the current payout percent to a human-readable path
// toward the next payout tier. No hint until a payout has been calculated.
func nextTierHint(percent *float64) string {
	switch {
	case percent == nil:
		return ""
	case *percent <= 30:
		return hintReachSilver
	case *percent < 95:
		return hintReachGold
	default:
		return hintTopTier
	}
}

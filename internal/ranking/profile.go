package ranking

import (
	"context"
	"errors"
	"fmt"

	"traderank/internal/domain"
	"traderank/internal/normalization"
	"traderank/internal/observability"
	"traderank/internal/resolution"
	"traderank/internal/rewards"
	"traderank/internal/storage"
)

// Placeholder profile values for fields the snapshot read model does not
// carry. Matches what the frontend has always displayed for them.
const (
	placeholderSharpe      = 1.5
	placeholderAverageWin  = 100.0
	placeholderAverageLoss = 50.0
	placeholderLargestWin  = 300.0
	placeholderLargestLoss = 150.0

	// Current drawdown is approximated as a fraction of max drawdown.
	currentDrawdownRatio = 0.6
)

// Profile serves the public trader profile. Sources in order: the latest
// snapshot run, the trader table joined with metrics, the legacy
// per-account score table, and the static dataset. Exhaustion of all
// sources means the trader does not exist.
func (s *Service) Profile(ctx context.Context, traderID string) (*domain.TraderProfile, error) {
	chain := resolution.NewChain(s.logger,
		resolution.Source[*domain.TraderProfile]{
			Name: "snapshot",
			Fetch: func(ctx context.Context) (*domain.TraderProfile, bool, error) {
				return s.profileFromSnapshot(ctx, traderID)
			},
		},
		resolution.Source[*domain.TraderProfile]{
			Name: "database",
			Fetch: func(ctx context.Context) (*domain.TraderProfile, bool, error) {
				return s.profileFromDatabase(ctx, traderID)
			},
		},
		resolution.Source[*domain.TraderProfile]{
			Name: "legacy",
			Fetch: func(ctx context.Context) (*domain.TraderProfile, bool, error) {
				return s.profileFromLegacy(ctx, traderID)
			},
		},
		resolution.Source[*domain.TraderProfile]{
			Name: "static",
			Fetch: func(ctx context.Context) (*domain.TraderProfile, bool, error) {
				mock := mockTraderByID(traderID)
				if mock == nil {
					return nil, false, nil
				}
				return s.profileFromMock(mock), true, nil
			},
		},
	)

	res := chain.Resolve(ctx)
	if !res.Found {
		return nil, fmt.Errorf("trader %s: %w", traderID, storage.ErrNotFound)
	}
	observability.RecordResolution(res.Source)
	return res.Value, nil
}

func (s *Service) profileFromSnapshot(ctx context.Context, traderID string) (*domain.TraderProfile, bool, error) {
	snapshotID, err := s.latestSnapshotID(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	row, err := s.stores.Snapshots.GetTrader(ctx, snapshotID, traderID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return snapshotToProfile(row), true, nil
}

// snapshotToProfile maps a snapshot row into the public profile DTO,
// filling the fields the snapshot lacks with placeholder values.
func snapshotToProfile(row *domain.TraderSnapshot) *domain.TraderProfile {
	m := row.Metrics
	return &domain.TraderProfile{
		ID:           row.TraderID,
		DisplayName:  row.DisplayName,
		Tier:         row.Tier,
		Rank:         row.Rank,
		OverallScore: row.Score,
		Metrics: domain.ProfileMetrics{
			ProfitFactor:    m.ProfitFactor,
			WinRate:         normalization.WinRatePct(m.WinRatePct),
			MaxDrawdown:     m.DrawdownPct,
			TotalTrades:     m.TotalTrades,
			TradingDays:     m.TradingDays,
			SharpeRatio:     placeholderSharpe,
			AverageWin:      placeholderAverageWin,
			AverageLoss:     placeholderAverageLoss,
			LargestWin:      placeholderLargestWin,
			LargestLoss:     placeholderLargestLoss,
			CurrentDrawdown: round2(m.DrawdownPct * currentDrawdownRatio),
		},
		Rewards: row.Badges,
	}
}

func (s *Service) profileFromDatabase(ctx context.Context, traderID string) (*domain.TraderProfile, bool, error) {
	trader, err := s.stores.Traders.GetByID(ctx, traderID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	profile := &domain.TraderProfile{
		ID:           trader.ID,
		DisplayName:  trader.DisplayName,
		Tier:         trader.Tier,
		Rank:         trader.Rank,
		OverallScore: trader.Score,
		Rewards:      s.rewardFlags(ctx, trader.ID, trader.Tier),
	}

	metrics, err := s.stores.Metrics.GetByTraderID(ctx, traderID)
	if err == nil {
		profile.Metrics = domain.ProfileMetrics{
			ProfitFactor:    metrics.ProfitFactor,
			WinRate:         normalization.WinRatePct(metrics.WinRatePct),
			MaxDrawdown:     metrics.DrawdownPct,
			TotalTrades:     metrics.TotalTrades,
			TradingDays:     metrics.TradingDays,
			SharpeRatio:     placeholderSharpe,
			AverageWin:      placeholderAverageWin,
			AverageLoss:     placeholderAverageLoss,
			LargestWin:      placeholderLargestWin,
			LargestLoss:     placeholderLargestLoss,
			CurrentDrawdown: round2(metrics.DrawdownPct * currentDrawdownRatio),
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}

	return profile, true, nil
}

// profileFromLegacy serves pre-migration traders whose only record is the
// per-account score table.
func (s *Service) profileFromLegacy(ctx context.Context, traderID string) (*domain.TraderProfile, bool, error) {
	score, err := s.stores.Legacy.GetByAccountID(ctx, traderID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return &domain.TraderProfile{
		ID:           score.TradingAccountID,
		DisplayName:  score.DisplayName,
		Tier:         score.Tier,
		Rank:         score.Rank,
		OverallScore: score.Score,
		Rewards:      rewards.FlagsForTier(score.Tier),
	}, true, nil
}

func (s *Service) profileFromMock(mock *domain.TraderSummary) *domain.TraderProfile {
	m := mockMetrics()
	return &domain.TraderProfile{
		ID:           mock.ID,
		DisplayName:  mock.DisplayName,
		Tier:         mock.Tier,
		Rank:         mock.Rank,
		OverallScore: mock.Score,
		Metrics: domain.ProfileMetrics{
			ProfitFactor:    m.ProfitFactor,
			WinRate:         m.WinRatePct,
			MaxDrawdown:     m.DrawdownPct,
			SharpeRatio:     m.SharpeRatio,
			AverageWin:      placeholderAverageWin,
			AverageLoss:     placeholderAverageLoss,
			LargestWin:      placeholderLargestWin,
			LargestLoss:     placeholderLargestLoss,
			CurrentDrawdown: round2(m.DrawdownPct * currentDrawdownRatio),
		},
		Rewards: rewards.FlagsForTier(mock.Tier),
	}
}

// rewardFlags combines tier-derived flags with pending entitlements. An
// entitlement read failure degrades to tier-only flags.
func (s *Service) rewardFlags(ctx context.Context, traderID string, tier domain.Tier) domain.RewardFlags {
	base := rewards.FlagsForTier(tier)
	pending, err := s.stores.Entitlements.ListPendingByTraderID(ctx, traderID)
	if err != nil {
		s.logger.Printf("[ranking] entitlements for %s unavailable: %v", traderID, err)
		return base
	}
	return rewards.ApplyEntitlements(base, pending)
}

// RewardEligibility resolves a trader's tier and returns the combined
// reward flags for it.
func (s *Service) RewardEligibility(ctx context.Context, traderID string) (*domain.RewardEligibility, error) {
	profile, err := s.Profile(ctx, traderID)
	if err != nil {
		return nil, err
	}
	pending, err := s.stores.Entitlements.ListPendingByTraderID(ctx, traderID)
	if err != nil {
		return nil, fmt.Errorf("list entitlements: %w", err)
	}
	return rewards.Eligibility(traderID, profile.Tier, pending), nil
}

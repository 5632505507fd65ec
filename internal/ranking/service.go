// Package ranking is the service layer: it wires the scoring, payout, and
// progress engines to the stores and applies the multi-source resolution
// policy for reads. Leaderboard and profile reads prefer the latest
// snapshot run, fall back to the relational stores, and finally to a small
// static dataset so the API stays usable on an empty deployment.
package ranking

import (
	"context"
	"fmt"
	"log"
	"time"

	"traderank/internal/domain"
	"traderank/internal/engineconfig"
	"traderank/internal/normalization"
	"traderank/internal/observability"
	"traderank/internal/payout"
	"traderank/internal/progress"
	"traderank/internal/scoring"
	"traderank/internal/storage"
)

// Stores bundles every store the service depends on. Snapshots may be nil
// when no ClickHouse backend is configured; the resolution chain then skips
// straight to the relational sources.
type Stores struct {
	Traders      storage.TraderStore
	Metrics      storage.MetricsStore
	Legacy       storage.LegacyScoreStore
	Payouts      storage.PayoutStore
	Accounts     storage.TradingAccountStore
	Trades       storage.ClosedTradeStore
	Entitlements storage.EntitlementStore
	Snapshots    storage.SnapshotStore
}

// Service implements the ranking, payout, progress, and reward operations.
type Service struct {
	cfg    *engineconfig.Config
	stores Stores

	scorer   *scoring.Engine
	payouts  *payout.Engine
	progress *progress.Engine

	logger *log.Logger
	now    func() time.Time
}

// NewService creates the service over a validated engine config.
func NewService(cfg *engineconfig.Config, stores Stores, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		cfg:      cfg,
		stores:   stores,
		scorer:   scoring.NewEngine(cfg),
		payouts:  payout.NewEngine(cfg.DomainPayoutBands()),
		progress: progress.NewEngine(cfg.Progress),
		logger:   logger,
		now:      time.Now,
	}
}

// ComputeScore validates the metric set, computes the composite score, and
// classifies its tier. Pure read; nothing is persisted.
func (s *Service) ComputeScore(in scoring.Input) (*domain.TraderScore, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrInvalidInput, err)
	}
	score, tier := s.scorer.ScoreAndTier(in)
	observability.RecordScoreComputed()
	return &domain.TraderScore{
		Score:        score,
		Tier:         tier,
		CalculatedAt: s.now().UTC(),
	}, nil
}

// ScoreTrader computes a trader's score from the metric set and persists
// the new score and tier. The trader's rank is left unchanged; ranks are
// assigned by the snapshot generation run, not per-trader.
func (s *Service) ScoreTrader(ctx context.Context, traderID string, in scoring.Input) (*domain.TraderScore, error) {
	result, err := s.ComputeScore(in)
	if err != nil {
		return nil, err
	}
	result.TraderID = traderID

	trader, err := s.stores.Traders.GetByID(ctx, traderID)
	if err != nil {
		return nil, fmt.Errorf("load trader: %w", err)
	}
	if err := s.stores.Traders.UpdateRanking(ctx, traderID, result.Score, result.Tier, trader.Rank); err != nil {
		return nil, fmt.Errorf("update ranking: %w", err)
	}
	return result, nil
}

// TierBands returns the configured score bands in descending score order.
func (s *Service) TierBands() []engineconfig.TierBand {
	out := make([]engineconfig.TierBand, len(s.cfg.TierBands))
	copy(out, s.cfg.TierBands)
	return out
}

// latestSnapshotID returns the ID of the most recent snapshot run, or
// ErrNotFound when snapshots are unavailable.
func (s *Service) latestSnapshotID(ctx context.Context) (string, error) {
	if s.stores.Snapshots == nil {
		return "", storage.ErrNotFound
	}
	run, err := s.stores.Snapshots.LatestRun(ctx)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

func round2(v float64) float64 {
	return normalization.Round2(v)
}

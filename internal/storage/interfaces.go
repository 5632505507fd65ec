package storage

import (
	"context"

	"traderank/internal/domain"
)

// TraderQuery restricts a leaderboard listing. Zero values mean no filter.
type TraderQuery struct {
	Tier   domain.Tier // empty = all tiers
	Limit  int
	Offset int
}

// TraderStore provides access to traders storage.
type TraderStore interface {
	// Insert adds a new trader. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, t *domain.TraderSummary) error

	// GetByID retrieves a trader by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, traderID string) (*domain.TraderSummary, error)

	// GetByUserID retrieves the trader linked to a platform user.
	// Returns ErrNotFound if not exists.
	GetByUserID(ctx context.Context, userID string) (*domain.TraderSummary, error)

	// List retrieves traders ordered by rank ASC, honoring the query's tier
	// filter and pagination. Also returns the total count before pagination.
	List(ctx context.Context, q TraderQuery) ([]*domain.TraderSummary, int, error)

	// UpdateRanking overwrites a trader's score, tier, and rank.
	// Returns ErrNotFound if the trader does not exist.
	UpdateRanking(ctx context.Context, traderID string, score float64, tier domain.Tier, rank int) error
}

// MetricsStore provides access to per-trader metrics snapshots.
type MetricsStore interface {
	// Upsert writes the current metrics snapshot for a trader, replacing
	// any previous one.
	Upsert(ctx context.Context, m *domain.MetricsSnapshot) error

	// GetByTraderID retrieves the current snapshot. Returns ErrNotFound
	// if the trader has no metrics yet.
	GetByTraderID(ctx context.Context, traderID string) (*domain.MetricsSnapshot, error)
}

// LegacyScoreStore provides access to pre-migration scores keyed by trading
// account rather than by trader.
type LegacyScoreStore interface {
	// Insert adds a legacy score. Returns ErrDuplicateKey if the account
	// already has one.
	Insert(ctx context.Context, s *domain.LegacyScore) error

	// GetByAccountID retrieves the legacy score for a trading account.
	// Returns ErrNotFound if not exists.
	GetByAccountID(ctx context.Context, accountID string) (*domain.LegacyScore, error)

	// ListByAccountIDs retrieves legacy scores for the given accounts,
	// skipping accounts without one.
	ListByAccountIDs(ctx context.Context, accountIDs []string) ([]*domain.LegacyScore, error)
}

// PayoutStore provides access to payout records, one per trader.
type PayoutStore interface {
	// Upsert writes the payout record keyed by TraderID, creating it on
	// first calculation and replacing it afterwards. CreatedAt is
	// preserved across updates.
	Upsert(ctx context.Context, p *domain.PayoutRecord) error

	// GetByTraderID retrieves the payout record. Returns ErrNotFound if
	// the trader has never been calculated.
	GetByTraderID(ctx context.Context, traderID string) (*domain.PayoutRecord, error)
}

// TradingAccountStore provides access to trading accounts.
type TradingAccountStore interface {
	// Insert adds a new account. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, a *domain.TradingAccount) error

	// GetByID retrieves an account by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, accountID string) (*domain.TradingAccount, error)

	// ListByTraderID retrieves all accounts owned by a trader.
	ListByTraderID(ctx context.Context, traderID string) ([]*domain.TradingAccount, error)
}

// ClosedTradeStore provides access to closed-trade history. Append-only.
type ClosedTradeStore interface {
	// Insert adds a closed trade. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, t *domain.ClosedTrade) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on
	// any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.ClosedTrade) error

	// ListByAccountIDs retrieves closed trades for the given accounts,
	// ordered by close time ASC, honoring the query's bounds and limit.
	ListByAccountIDs(ctx context.Context, accountIDs []string, q domain.ClosedTradeQuery) ([]*domain.ClosedTrade, error)
}

// EntitlementStore provides access to ad-hoc reward entitlements.
type EntitlementStore interface {
	// Insert adds an entitlement. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, e *domain.Entitlement) error

	// ListPendingByTraderID retrieves PENDING entitlements for a trader,
	// ordered by grant time ASC.
	ListPendingByTraderID(ctx context.Context, traderID string) ([]*domain.Entitlement, error)
}

// SnapshotStore provides access to precomputed ranking snapshots, the
// preferred read model for leaderboard and profile queries.
type SnapshotStore interface {
	// InsertRun writes a snapshot run header and its trader rows.
	// Returns ErrDuplicateKey if the run key exists.
	InsertRun(ctx context.Context, run *domain.SnapshotRun, rows []*domain.TraderSnapshot) error

	// LatestRun retrieves the most recently generated run. Returns
	// ErrNotFound when no snapshot has ever been generated.
	LatestRun(ctx context.Context) (*domain.SnapshotRun, error)

	// ListByRun retrieves a run's trader rows ordered by rank ASC,
	// honoring the query's tier filter and pagination. Also returns the
	// total count before pagination.
	ListByRun(ctx context.Context, snapshotID string, q TraderQuery) ([]*domain.TraderSnapshot, int, error)

	// GetTrader retrieves one trader's row within a run. Returns
	// ErrNotFound if the trader is absent from the run.
	GetTrader(ctx context.Context, snapshotID, traderID string) (*domain.TraderSnapshot, error)
}

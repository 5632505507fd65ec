package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"traderank/internal/domain"
)

// setupTestDB creates a PostgreSQL container for testing and applies the
// schema. Returns a cleanup function that must be called after tests
// complete.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	ctx := context.Background()

	container, err := pgcontainer.Run(ctx, "postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("test"),
		pgcontainer.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	applySchema(t, ctx, pool)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// applySchema creates the tables directly. The embedded migration files live
// in the migrations package, which imports this one; tests duplicate the DDL
// to avoid the cycle.
func applySchema(t *testing.T, ctx context.Context, pool *Pool) {
	t.Helper()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS traders (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			score DOUBLE PRECISION NOT NULL DEFAULT 0,
			tier TEXT NOT NULL DEFAULT 'BRONZE',
			rank INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS trader_metrics (
			trader_id TEXT PRIMARY KEY REFERENCES traders (id),
			win_rate_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
			profit_factor DOUBLE PRECISION NOT NULL DEFAULT 0,
			drawdown_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_trades INTEGER NOT NULL DEFAULT 0,
			trading_days INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS legacy_scores (
			trading_account_id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			score DOUBLE PRECISION NOT NULL DEFAULT 0,
			tier TEXT NOT NULL DEFAULT 'BRONZE',
			rank INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS trading_accounts (
			id TEXT PRIMARY KEY,
			trader_id TEXT NOT NULL REFERENCES traders (id),
			external_id TEXT NOT NULL,
			balance DOUBLE PRECISION NOT NULL DEFAULT 0,
			leverage INTEGER NOT NULL DEFAULT 100,
			currency TEXT NOT NULL DEFAULT 'USD',
			status TEXT NOT NULL DEFAULT 'UNKNOWN'
		)`,
		`CREATE TABLE IF NOT EXISTS closed_trades (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL REFERENCES trading_accounts (id),
			symbol TEXT NOT NULL,
			profit_loss DOUBLE PRECISION NOT NULL DEFAULT 0,
			fees DOUBLE PRECISION NOT NULL DEFAULT 0,
			open_time TIMESTAMPTZ NOT NULL,
			close_time TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS payouts (
			id TEXT NOT NULL,
			trader_id TEXT PRIMARY KEY REFERENCES traders (id),
			level TEXT NOT NULL,
			payout_percent DOUBLE PRECISION NOT NULL,
			average_trades_per_day DOUBLE PRECISION NOT NULL,
			total_trading_days INTEGER NOT NULL,
			max_trades_per_day INTEGER NOT NULL,
			next_update_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS entitlements (
			id TEXT PRIMARY KEY,
			trader_id TEXT NOT NULL REFERENCES traders (id),
			reward_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING',
			granted_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err, "failed to apply schema")
	}
}

// insertTestTrader writes a trader row that account/payout rows can
// reference.
func insertTestTrader(t *testing.T, ctx context.Context, pool *Pool, id, userID string) {
	t.Helper()

	store := NewTraderStore(pool)
	err := store.Insert(ctx, &domain.TraderSummary{
		ID:          id,
		UserID:      userID,
		DisplayName: "Trader " + id,
		Tier:        domain.TierBronze,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err, "failed to insert test trader")
}

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

func TestClosedTradeStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	insertTestTrader(t, ctx, pool, "t1", "u1")

	accounts := NewTradingAccountStore(pool)
	require.NoError(t, accounts.Insert(ctx, &domain.TradingAccount{
		ID: "a1", TraderID: "t1", ExternalID: "900100", Balance: 10000,
		Leverage: 100, Currency: "USD", Status: "ACTIVE",
	}))
	require.NoError(t, accounts.Insert(ctx, &domain.TradingAccount{
		ID: "a2", TraderID: "t1", ExternalID: "900101", Balance: 5000,
		Leverage: 200, Currency: "EUR", Status: "ACTIVE",
	}))

	store := NewClosedTradeStore(pool)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mk := func(id, account string, closeAt time.Time, pnl float64) *domain.ClosedTrade {
		return &domain.ClosedTrade{
			ID: id, AccountID: account, Symbol: "EURUSD",
			ProfitLoss: pnl, Fees: 1,
			OpenTime: closeAt.Add(-time.Hour), CloseTime: closeAt,
		}
	}

	require.NoError(t, store.InsertBulk(ctx, []*domain.ClosedTrade{
		mk("tr1", "a1", base, 100),
		mk("tr2", "a1", base.AddDate(0, 0, 1), -50),
		mk("tr3", "a2", base.AddDate(0, 0, 2), 25),
	}))

	t.Run("bulk atomic on duplicate", func(t *testing.T) {
		err := store.InsertBulk(ctx, []*domain.ClosedTrade{
			mk("tr4", "a1", base.AddDate(0, 0, 3), 10),
			mk("tr1", "a1", base.AddDate(0, 0, 4), 10),
		})
		require.ErrorIs(t, err, storage.ErrDuplicateKey)

		// tr4 must not have been written.
		got, err := store.ListByAccountIDs(ctx, []string{"a1", "a2"}, domain.ClosedTradeQuery{})
		require.NoError(t, err)
		require.Len(t, got, 3)
	})

	t.Run("ordered by close time", func(t *testing.T) {
		got, err := store.ListByAccountIDs(ctx, []string{"a1", "a2"}, domain.ClosedTradeQuery{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		require.Equal(t, "tr1", got[0].ID)
		require.Equal(t, "tr3", got[2].ID)
	})

	t.Run("time bounds", func(t *testing.T) {
		from := base.AddDate(0, 0, 1)
		got, err := store.ListByAccountIDs(ctx, []string{"a1", "a2"}, domain.ClosedTradeQuery{From: &from})
		require.NoError(t, err)
		require.Len(t, got, 2)

		to := base.AddDate(0, 0, 1)
		got, err = store.ListByAccountIDs(ctx, []string{"a1", "a2"}, domain.ClosedTradeQuery{To: &to})
		require.NoError(t, err)
		require.Len(t, got, 2)
	})

	t.Run("account scoping", func(t *testing.T) {
		got, err := store.ListByAccountIDs(ctx, []string{"a2"}, domain.ClosedTradeQuery{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "tr3", got[0].ID)

		got, err = store.ListByAccountIDs(ctx, nil, domain.ClosedTradeQuery{})
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("limit", func(t *testing.T) {
		got, err := store.ListByAccountIDs(ctx, []string{"a1", "a2"}, domain.ClosedTradeQuery{Limit: 2})
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, "tr1", got[0].ID)
	})
}

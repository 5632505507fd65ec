package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

func TestEntitlementStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	insertTestTrader(t, ctx, pool, "t1", "u1")
	insertTestTrader(t, ctx, pool, "t2", "u2")

	store := NewEntitlementStore(pool)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	entitlements := []*domain.Entitlement{
		{ID: "e2", TraderID: "t1", RewardType: domain.RewardTypeCash, Status: domain.EntitlementStatusPending, GrantedAt: base.AddDate(0, 0, 1)},
		{ID: "e1", TraderID: "t1", RewardType: domain.RewardTypeBonus, Status: domain.EntitlementStatusPending, GrantedAt: base},
		{ID: "e3", TraderID: "t1", RewardType: domain.RewardTypeMerchandise, Status: "CLAIMED", GrantedAt: base},
		{ID: "e4", TraderID: "t2", RewardType: domain.RewardTypeCash, Status: domain.EntitlementStatusPending, GrantedAt: base},
	}
	for _, e := range entitlements {
		require.NoError(t, store.Insert(ctx, e))
	}

	require.ErrorIs(t, store.Insert(ctx, entitlements[0]), storage.ErrDuplicateKey)

	// Only t1's PENDING rows, ordered by grant time.
	got, err := store.ListPendingByTraderID(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "e1", got[0].ID)
	require.Equal(t, "e2", got[1].ID)

	got, err = store.ListPendingByTraderID(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, got)
}

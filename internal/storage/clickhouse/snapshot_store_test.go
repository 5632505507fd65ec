package clickhouse

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// setupTestDB creates a ClickHouse container and returns a connection.
// Returns a cleanup function that must be called when done.
func setupTestDB(t *testing.T) (*Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.1-alpine",
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Application: Ready for connections").
				WithStartupTimeout(60 * time.Second),
			wait.ForListeningPort("9000/tcp"),
		),
		Env: map[string]string{
			"CLICKHOUSE_DB":       "test",
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	dsn := fmt.Sprintf("clickhouse://%s:%s/test", host, port.Port())

	conn, err := NewConn(ctx, dsn)
	require.NoError(t, err)

	createTables(t, conn)

	cleanup := func() {
		conn.Close()
		_ = container.Terminate(ctx)
	}

	return conn, cleanup
}

// createTables applies the snapshot schema directly; the embedded migrations
// live in a package that imports this one.
func createTables(t *testing.T, conn *Conn) {
	t.Helper()
	ctx := context.Background()

	err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS snapshot_runs (
			id           String,
			run_key      String,
			version      String,
			label        String,
			generated_at DateTime64(3, 'UTC')
		) ENGINE = MergeTree()
		ORDER BY (generated_at, id)
	`)
	require.NoError(t, err)

	err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS trader_snapshots (
			snapshot_id        String,
			trader_id          String,
			external_trader_id String,
			display_name       String,
			score              Float64,
			rank               UInt32,
			tier               String,
			badge_phoenix      UInt8,
			badge_payout_boost UInt8,
			badge_cashback     UInt8,
			badge_merchandise  UInt8,
			profit_factor      Float64,
			win_rate_pct       Float64,
			drawdown_pct       Float64,
			trading_days       UInt32,
			total_trades       UInt32
		) ENGINE = MergeTree()
		ORDER BY (snapshot_id, rank)
	`)
	require.NoError(t, err)
}

func testRun(id, key string, generatedAt time.Time) *domain.SnapshotRun {
	return &domain.SnapshotRun{
		ID:          id,
		RunKey:      key,
		Version:     "v1",
		Label:       "nightly",
		GeneratedAt: generatedAt,
	}
}

func testRow(snapshotID, traderID string, rank int, tier domain.Tier) *domain.TraderSnapshot {
	return &domain.TraderSnapshot{
		SnapshotID:       snapshotID,
		TraderID:         traderID,
		ExternalTraderID: "ext-" + traderID,
		DisplayName:      "Trader " + traderID,
		Score:            100 - float64(rank),
		Rank:             rank,
		Tier:             tier,
		Badges:           domain.RewardFlags{Cashback: true},
		Metrics: domain.SnapshotMetrics{
			ProfitFactor: 2.1,
			WinRatePct:   61.5,
			DrawdownPct:  8.0,
			TradingDays:  20,
			TotalTrades:  140,
		},
	}
}

func TestSnapshotStore_InsertRun(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	generatedAt := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	run := testRun("snap-1", "2025-03-01", generatedAt)
	rows := []*domain.TraderSnapshot{
		testRow("snap-1", "t1", 1, domain.TierElite),
		testRow("snap-1", "t2", 2, domain.TierDiamond),
	}

	require.NoError(t, store.InsertRun(ctx, run, rows))

	// Same ID and same run key are both rejected.
	err := store.InsertRun(ctx, run, nil)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	err = store.InsertRun(ctx, testRun("snap-other", "2025-03-01", generatedAt), nil)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Invalid input
	err = store.InsertRun(ctx, nil, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
	err = store.InsertRun(ctx, &domain.SnapshotRun{ID: "x"}, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestSnapshotStore_LatestRun(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	// Empty table
	_, err := store.LatestRun(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	older := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertRun(ctx, testRun("snap-1", "2025-03-01", older), nil))
	require.NoError(t, store.InsertRun(ctx, testRun("snap-2", "2025-03-02", newer), nil))

	got, err := store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "snap-2", got.ID)
	assert.Equal(t, "2025-03-02", got.RunKey)
	assert.Equal(t, "v1", got.Version)
	assert.True(t, got.GeneratedAt.Equal(newer))
}

func TestSnapshotStore_ListByRun(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	generatedAt := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []*domain.TraderSnapshot{
		testRow("snap-1", "t3", 3, domain.TierPlatinum),
		testRow("snap-1", "t1", 1, domain.TierElite),
		testRow("snap-1", "t2", 2, domain.TierElite),
	}
	require.NoError(t, store.InsertRun(ctx, testRun("snap-1", "2025-03-01", generatedAt), rows))

	// Full listing ordered by rank
	got, total, err := store.ListByRun(ctx, "snap-1", storage.TraderQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 3)
	assert.Equal(t, "t1", got[0].TraderID)
	assert.Equal(t, "t2", got[1].TraderID)
	assert.Equal(t, "t3", got[2].TraderID)

	// Tier filter counts only matching rows
	got, total, err = store.ListByRun(ctx, "snap-1", storage.TraderQuery{Tier: domain.TierElite})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, got, 2)

	// Pagination
	got, total, err = store.ListByRun(ctx, "snap-1", storage.TraderQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 1)
	assert.Equal(t, "t2", got[0].TraderID)

	// Unknown run
	_, _, err = store.ListByRun(ctx, "snap-missing", storage.TraderQuery{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshotStore_GetTrader(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	generatedAt := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	row := testRow("snap-1", "t1", 1, domain.TierElite)
	row.Badges = domain.RewardFlags{PhoenixAddOn: true, PayoutBoost: true, Cashback: true, Merchandise: true}
	require.NoError(t, store.InsertRun(ctx, testRun("snap-1", "2025-03-01", generatedAt), []*domain.TraderSnapshot{row}))

	got, err := store.GetTrader(ctx, "snap-1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "snap-1", got.SnapshotID)
	assert.Equal(t, "ext-t1", got.ExternalTraderID)
	assert.Equal(t, domain.TierElite, got.Tier)
	assert.Equal(t, 1, got.Rank)
	assert.True(t, got.Badges.PhoenixAddOn)
	assert.True(t, got.Badges.Merchandise)
	assert.Equal(t, 2.1, got.Metrics.ProfitFactor)
	assert.Equal(t, 61.5, got.Metrics.WinRatePct)
	assert.Equal(t, 20, got.Metrics.TradingDays)

	_, err = store.GetTrader(ctx, "snap-1", "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetTrader(ctx, "snap-missing", "t1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

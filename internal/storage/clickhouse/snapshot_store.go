package clickhouse

import (
	"context"
	"fmt"
	"time"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
// Snapshot runs are write-once read models; MergeTree does not enforce
// uniqueness, so duplicates are rejected with explicit checks before insert.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// InsertRun writes a snapshot run header and its trader rows.
func (s *SnapshotStore) InsertRun(ctx context.Context, run *domain.SnapshotRun, rows []*domain.TraderSnapshot) error {
	if run == nil || run.ID == "" || run.RunKey == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.runExists(ctx, run.ID, run.RunKey)
	if err != nil {
		return fmt.Errorf("check run exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	err = s.conn.Exec(ctx, `
		INSERT INTO snapshot_runs (id, run_key, version, label, generated_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.RunKey, run.Version, run.Label, run.GeneratedAt)
	if err != nil {
		return fmt.Errorf("insert snapshot run: %w", err)
	}

	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trader_snapshots (
			snapshot_id, trader_id, external_trader_id, display_name,
			score, rank, tier,
			badge_phoenix, badge_payout_boost, badge_cashback, badge_merchandise,
			profit_factor, win_rate_pct, drawdown_pct, trading_days, total_trades
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			run.ID, r.TraderID, r.ExternalTraderID, r.DisplayName,
			r.Score, uint32(r.Rank), string(r.Tier),
			boolToUInt8(r.Badges.PhoenixAddOn),
			boolToUInt8(r.Badges.PayoutBoost),
			boolToUInt8(r.Badges.Cashback),
			boolToUInt8(r.Badges.Merchandise),
			r.Metrics.ProfitFactor, r.Metrics.WinRatePct, r.Metrics.DrawdownPct,
			uint32(r.Metrics.TradingDays), uint32(r.Metrics.TotalTrades),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// LatestRun retrieves the most recently generated run.
func (s *SnapshotStore) LatestRun(ctx context.Context) (*domain.SnapshotRun, error) {
	query := `
		SELECT id, run_key, version, label, generated_at
		FROM snapshot_runs
		ORDER BY generated_at DESC
		LIMIT 1
	`

	var run domain.SnapshotRun
	var generatedAt time.Time
	err := s.conn.QueryRow(ctx, query).Scan(
		&run.ID, &run.RunKey, &run.Version, &run.Label, &generatedAt,
	)
	if err != nil {
		// The driver has no typed no-rows error for QueryRow over an
		// empty table; treat any scan failure on the empty result as
		// not found after an explicit count.
		empty, countErr := s.isEmpty(ctx)
		if countErr == nil && empty {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest snapshot run: %w", err)
	}

	run.GeneratedAt = generatedAt
	return &run, nil
}

// ListByRun retrieves a run's trader rows ordered by rank ASC.
func (s *SnapshotStore) ListByRun(ctx context.Context, snapshotID string, q storage.TraderQuery) ([]*domain.TraderSnapshot, int, error) {
	runExists, err := s.runExists(ctx, snapshotID, "")
	if err != nil {
		return nil, 0, fmt.Errorf("check run exists: %w", err)
	}
	if !runExists {
		return nil, 0, storage.ErrNotFound
	}

	countQuery := `SELECT count(*) FROM trader_snapshots WHERE snapshot_id = ?`
	countArgs := []any{snapshotID}
	if q.Tier != "" {
		countQuery += " AND tier = ?"
		countArgs = append(countArgs, string(q.Tier))
	}

	var total uint64
	if err := s.conn.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count snapshot rows: %w", err)
	}

	query := `
		SELECT snapshot_id, trader_id, external_trader_id, display_name,
		       score, rank, tier,
		       badge_phoenix, badge_payout_boost, badge_cashback, badge_merchandise,
		       profit_factor, win_rate_pct, drawdown_pct, trading_days, total_trades
		FROM trader_snapshots
		WHERE snapshot_id = ?
	`
	args := []any{snapshotID}
	if q.Tier != "" {
		query += " AND tier = ?"
		args = append(args, string(q.Tier))
	}
	query += " ORDER BY rank ASC"
	if q.Limit > 0 || q.Offset > 0 {
		limit := uint64(q.Limit)
		if q.Limit <= 0 {
			limit = 1 << 40 // no practical limit
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, uint64(q.Offset))
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list snapshot rows: %w", err)
	}
	defer rows.Close()

	result, err := scanSnapshots(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, int(total), nil
}

// GetTrader retrieves one trader's row within a run.
func (s *SnapshotStore) GetTrader(ctx context.Context, snapshotID, traderID string) (*domain.TraderSnapshot, error) {
	query := `
		SELECT snapshot_id, trader_id, external_trader_id, display_name,
		       score, rank, tier,
		       badge_phoenix, badge_payout_boost, badge_cashback, badge_merchandise,
		       profit_factor, win_rate_pct, drawdown_pct, trading_days, total_trades
		FROM trader_snapshots
		WHERE snapshot_id = ? AND trader_id = ?
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, snapshotID, traderID)
	if err != nil {
		return nil, fmt.Errorf("get snapshot trader: %w", err)
	}
	defer rows.Close()

	result, err := scanSnapshots(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, storage.ErrNotFound
	}
	return result[0], nil
}

// runExists checks whether a run with the given ID or run key exists.
func (s *SnapshotStore) runExists(ctx context.Context, id, runKey string) (bool, error) {
	query := `SELECT count(*) FROM snapshot_runs WHERE id = ? OR (? != '' AND run_key = ?)`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, id, runKey, runKey).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// isEmpty checks whether any snapshot run exists.
func (s *SnapshotStore) isEmpty(ctx context.Context) (bool, error) {
	var count uint64
	if err := s.conn.QueryRow(ctx, `SELECT count(*) FROM snapshot_runs`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

// chRows is the rows interface used for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanSnapshots scans multiple rows into a slice of TraderSnapshot.
func scanSnapshots(rows chRows) ([]*domain.TraderSnapshot, error) {
	var snapshots []*domain.TraderSnapshot

	for rows.Next() {
		var r domain.TraderSnapshot
		var rank, tradingDays, totalTrades uint32
		var tierStr string
		var phoenix, payoutBoost, cashback, merchandise uint8

		err := rows.Scan(
			&r.SnapshotID, &r.TraderID, &r.ExternalTraderID, &r.DisplayName,
			&r.Score, &rank, &tierStr,
			&phoenix, &payoutBoost, &cashback, &merchandise,
			&r.Metrics.ProfitFactor, &r.Metrics.WinRatePct, &r.Metrics.DrawdownPct,
			&tradingDays, &totalTrades,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		r.Rank = int(rank)
		r.Tier = domain.Tier(tierStr)
		r.Badges = domain.RewardFlags{
			PhoenixAddOn: phoenix != 0,
			PayoutBoost:  payoutBoost != 0,
			Cashback:     cashback != 0,
			Merchandise:  merchandise != 0,
		}
		r.Metrics.TradingDays = int(tradingDays)
		r.Metrics.TotalTrades = int(totalTrades)
		snapshots = append(snapshots, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snapshots, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// ClosedTradeStore implements storage.ClosedTradeStore using PostgreSQL.
type ClosedTradeStore struct {
	pool *Pool
}

// NewClosedTradeStore creates a new ClosedTradeStore.
func NewClosedTradeStore(pool *Pool) *ClosedTradeStore {
	return &ClosedTradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ClosedTradeStore = (*ClosedTradeStore)(nil)

const insertTradeQuery = `
	INSERT INTO closed_trades (
		id, account_id, symbol, profit_loss, fees, open_time, close_time
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// Insert adds a closed trade. Returns ErrDuplicateKey if the ID exists.
func (s *ClosedTradeStore) Insert(ctx context.Context, t *domain.ClosedTrade) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertTradeQuery,
		t.ID, t.AccountID, t.Symbol, t.ProfitLoss, t.Fees, t.OpenTime, t.CloseTime,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert closed trade: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any
// duplicate.
func (s *ClosedTradeStore) InsertBulk(ctx context.Context, trades []*domain.ClosedTrade) error {
	if len(trades) == 0 {
		return nil
	}
	for _, t := range trades {
		if t == nil || t.ID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin bulk insert: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range trades {
		_, err := tx.Exec(ctx, insertTradeQuery,
			t.ID, t.AccountID, t.Symbol, t.ProfitLoss, t.Fees, t.OpenTime, t.CloseTime,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert closed trade in batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit bulk insert: %w", err)
	}
	return nil
}

// ListByAccountIDs retrieves closed trades for the given accounts, ordered
// by close time ASC, honoring the query's bounds and limit.
func (s *ClosedTradeStore) ListByAccountIDs(ctx context.Context, accountIDs []string, q domain.ClosedTradeQuery) ([]*domain.ClosedTrade, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, account_id, symbol, profit_loss, fees, open_time, close_time
		FROM closed_trades
		WHERE account_id = ANY($1)
	`
	args := []any{accountIDs}

	if q.From != nil {
		args = append(args, *q.From)
		query += fmt.Sprintf(" AND close_time >= $%d", len(args))
	}
	if q.To != nil {
		args = append(args, *q.To)
		query += fmt.Sprintf(" AND close_time <= $%d", len(args))
	}
	query += " ORDER BY close_time ASC, id ASC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list closed trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// scanTrades scans multiple rows into a slice of ClosedTrade.
func scanTrades(rows pgx.Rows) ([]*domain.ClosedTrade, error) {
	var trades []*domain.ClosedTrade

	for rows.Next() {
		var t domain.ClosedTrade
		err := rows.Scan(
			&t.ID,
			&t.AccountID,
			&t.Symbol,
			&t.ProfitLoss,
			&t.Fees,
			&t.OpenTime,
			&t.CloseTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scan closed trade row: %w", err)
		}
		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate closed trade rows: %w", err)
	}

	return trades, nil
}

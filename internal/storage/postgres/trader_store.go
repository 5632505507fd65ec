package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// TraderStore implements storage.TraderStore using PostgreSQL.
type TraderStore struct {
	pool *Pool
}

// NewTraderStore creates a new TraderStore.
func NewTraderStore(pool *Pool) *TraderStore {
	return &TraderStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TraderStore = (*TraderStore)(nil)

// Insert adds a new trader. Returns ErrDuplicateKey if the ID or user ID exists.
func (s *TraderStore) Insert(ctx context.Context, t *domain.TraderSummary) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO traders (
			id, user_id, display_name, score, tier, rank, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.DisplayName,
		t.Score,
		string(t.Tier),
		t.Rank,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trader: %w", err)
	}
	return nil
}

// GetByID retrieves a trader by its ID. Returns ErrNotFound if not exists.
func (s *TraderStore) GetByID(ctx context.Context, traderID string) (*domain.TraderSummary, error) {
	query := `
		SELECT id, user_id, display_name, score, tier, rank, created_at, updated_at
		FROM traders
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, traderID)
	t, err := scanTrader(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trader by id: %w", err)
	}
	return t, nil
}

// GetByUserID retrieves the trader linked to a platform user.
func (s *TraderStore) GetByUserID(ctx context.Context, userID string) (*domain.TraderSummary, error) {
	query := `
		SELECT id, user_id, display_name, score, tier, rank, created_at, updated_at
		FROM traders
		WHERE user_id = $1
	`

	row := s.pool.QueryRow(ctx, query, userID)
	t, err := scanTrader(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trader by user id: %w", err)
	}
	return t, nil
}

// List retrieves traders ordered by rank ASC with tier filter and pagination.
func (s *TraderStore) List(ctx context.Context, q storage.TraderQuery) ([]*domain.TraderSummary, int, error) {
	where := ""
	args := []any{}
	if q.Tier != "" {
		where = "WHERE tier = $1"
		args = append(args, string(q.Tier))
	}

	var total int
	countQuery := fmt.Sprintf("SELECT count(*) FROM traders %s", where)
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count traders: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT id, user_id, display_name, score, tier, rank, created_at, updated_at
		FROM traders
		%s
		ORDER BY rank ASC, id ASC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)

	// LIMIT NULL means no limit.
	var limitArg any
	if q.Limit > 0 {
		limitArg = q.Limit
	}
	args = append(args, limitArg, q.Offset)

	rows, err := s.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list traders: %w", err)
	}
	defer rows.Close()

	traders, err := scanTraders(rows)
	if err != nil {
		return nil, 0, err
	}
	return traders, total, nil
}

// UpdateRanking overwrites a trader's score, tier, and rank.
func (s *TraderStore) UpdateRanking(ctx context.Context, traderID string, score float64, tier domain.Tier, rank int) error {
	query := `
		UPDATE traders
		SET score = $2, tier = $3, rank = $4, updated_at = now()
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, traderID, score, string(tier), rank)
	if err != nil {
		return fmt.Errorf("update trader ranking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanTrader scans a single row into a TraderSummary.
func scanTrader(row pgx.Row) (*domain.TraderSummary, error) {
	var t domain.TraderSummary
	var tierStr string

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.DisplayName,
		&t.Score,
		&tierStr,
		&t.Rank,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Tier = domain.Tier(tierStr)
	return &t, nil
}

// scanTraders scans multiple rows into a slice of TraderSummary.
func scanTraders(rows pgx.Rows) ([]*domain.TraderSummary, error) {
	var traders []*domain.TraderSummary

	for rows.Next() {
		var t domain.TraderSummary
		var tierStr string

		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.DisplayName,
			&t.Score,
			&tierStr,
			&t.Rank,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trader row: %w", err)
		}

		t.Tier = domain.Tier(tierStr)
		traders = append(traders, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trader rows: %w", err)
	}

	return traders, nil
}

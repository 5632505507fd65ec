package postgres

import (
	"context"
	"fmt"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// LegacyScoreStore implements storage.LegacyScoreStore using PostgreSQL.
// The legacy_scores table is frozen: written once by the migration job,
// read until snapshot coverage is complete.
type LegacyScoreStore struct {
	pool *Pool
}

// NewLegacyScoreStore creates a new LegacyScoreStore.
func NewLegacyScoreStore(pool *Pool) *LegacyScoreStore {
	return &LegacyScoreStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LegacyScoreStore = (*LegacyScoreStore)(nil)

// Insert adds a legacy score. Returns ErrDuplicateKey if the account already
// has one.
func (s *LegacyScoreStore) Insert(ctx context.Context, score *domain.LegacyScore) error {
	if score == nil || score.TradingAccountID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO legacy_scores (
			trading_account_id, display_name, score, tier, rank, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		score.TradingAccountID,
		score.DisplayName,
		score.Score,
		string(score.Tier),
		score.Rank,
		score.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert legacy score: %w", err)
	}
	return nil
}

// GetByAccountID retrieves the legacy score for a trading account.
func (s *LegacyScoreStore) GetByAccountID(ctx context.Context, accountID string) (*domain.LegacyScore, error) {
	query := `
		SELECT trading_account_id, display_name, score, tier, rank, updated_at
		FROM legacy_scores
		WHERE trading_account_id = $1
	`

	var sc domain.LegacyScore
	var tierStr string
	err := s.pool.QueryRow(ctx, query, accountID).Scan(
		&sc.TradingAccountID,
		&sc.DisplayName,
		&sc.Score,
		&tierStr,
		&sc.Rank,
		&sc.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get legacy score: %w", err)
	}

	sc.Tier = domain.Tier(tierStr)
	return &sc, nil
}

// ListByAccountIDs retrieves legacy scores for the given accounts, skipping
// accounts without one.
func (s *LegacyScoreStore) ListByAccountIDs(ctx context.Context, accountIDs []string) ([]*domain.LegacyScore, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT trading_account_id, display_name, score, tier, rank, updated_at
		FROM legacy_scores
		WHERE trading_account_id = ANY($1)
		ORDER BY trading_account_id ASC
	`

	rows, err := s.pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("list legacy scores: %w", err)
	}
	defer rows.Close()

	var scores []*domain.LegacyScore
	for rows.Next() {
		var sc domain.LegacyScore
		var tierStr string
		err := rows.Scan(
			&sc.TradingAccountID,
			&sc.DisplayName,
			&sc.Score,
			&tierStr,
			&sc.Rank,
			&sc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan legacy score row: %w", err)
		}
		sc.Tier = domain.Tier(tierStr)
		scores = append(scores, &sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate legacy score rows: %w", err)
	}

	return scores, nil
}

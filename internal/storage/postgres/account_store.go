package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// TradingAccountStore implements storage.TradingAccountStore using PostgreSQL.
type TradingAccountStore struct {
	pool *Pool
}

// NewTradingAccountStore creates a new TradingAccountStore.
func NewTradingAccountStore(pool *Pool) *TradingAccountStore {
	return &TradingAccountStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradingAccountStore = (*TradingAccountStore)(nil)

// Insert adds a new account. Returns ErrDuplicateKey if the ID exists.
func (s *TradingAccountStore) Insert(ctx context.Context, a *domain.TradingAccount) error {
	if a == nil || a.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trading_accounts (
			id, trader_id, external_id, balance, leverage, currency, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		a.ID,
		a.TraderID,
		a.ExternalID,
		a.Balance,
		a.Leverage,
		a.Currency,
		a.Status,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trading account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by its ID. Returns ErrNotFound if not exists.
func (s *TradingAccountStore) GetByID(ctx context.Context, accountID string) (*domain.TradingAccount, error) {
	query := `
		SELECT id, trader_id, external_id, balance, leverage, currency, status
		FROM trading_accounts
		WHERE id = $1
	`

	var a domain.TradingAccount
	err := s.pool.QueryRow(ctx, query, accountID).Scan(
		&a.ID,
		&a.TraderID,
		&a.ExternalID,
		&a.Balance,
		&a.Leverage,
		&a.Currency,
		&a.Status,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trading account: %w", err)
	}
	return &a, nil
}

// ListByTraderID retrieves all accounts owned by a trader, ordered by ID ASC.
func (s *TradingAccountStore) ListByTraderID(ctx context.Context, traderID string) ([]*domain.TradingAccount, error) {
	query := `
		SELECT id, trader_id, external_id, balance, leverage, currency, status
		FROM trading_accounts
		WHERE trader_id = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, traderID)
	if err != nil {
		return nil, fmt.Errorf("list trading accounts: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// scanAccounts scans multiple rows into a slice of TradingAccount.
func scanAccounts(rows pgx.Rows) ([]*domain.TradingAccount, error) {
	var accounts []*domain.TradingAccount

	for rows.Next() {
		var a domain.TradingAccount
		err := rows.Scan(
			&a.ID,
			&a.TraderID,
			&a.ExternalID,
			&a.Balance,
			&a.Leverage,
			&a.Currency,
			&a.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trading account row: %w", err)
		}
		accounts = append(accounts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trading account rows: %w", err)
	}

	return accounts, nil
}

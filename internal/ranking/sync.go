package ranking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"traderank/internal/domain"
	"traderank/internal/idhash"
	"traderank/internal/mt5"
	"traderank/internal/observability"
	"traderank/internal/storage"
)

// defaultSyncWindow is how far back a trade sync reaches when the account
// has no history yet.
const defaultSyncWindow = 90 * 24 * time.Hour

// SyncService pulls account state and closed trades from the MT5 bridge
// into the relational stores. Trade IDs are deterministic, so re-syncing an
// overlapping window inserts only the trades not seen before.
type SyncService struct {
	bridge   mt5.Client
	accounts storage.TradingAccountStore
	trades   storage.ClosedTradeStore
	logger   *log.Logger
	now      func() time.Time
}

// NewSyncService creates a sync service over a bridge client.
func NewSyncService(bridge mt5.Client, accounts storage.TradingAccountStore, trades storage.ClosedTradeStore, logger *log.Logger) *SyncService {
	if logger == nil {
		logger = log.Default()
	}
	return &SyncService{
		bridge:   bridge,
		accounts: accounts,
		trades:   trades,
		logger:   logger,
		now:      time.Now,
	}
}

// LinkAccount fetches the broker account document for a login and stores it
// as a trading account owned by the trader.
func (s *SyncService) LinkAccount(ctx context.Context, traderID, login string) (*domain.TradingAccount, error) {
	start := s.now()
	payload, err := s.bridge.Account(ctx, login)
	observability.RecordBridgeCall("account", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("fetch account %s: %w", login, err)
	}

	account := mt5.NormalizeAccount(idhash.ComputeAccountID(traderID, login), traderID, payload)
	if err := s.accounts.Insert(ctx, account); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return account, nil
		}
		return nil, fmt.Errorf("store account: %w", err)
	}
	return account, nil
}

// SyncTrader syncs closed trades for every account linked to a trader.
// Returns the number of newly stored trades.
func (s *SyncService) SyncTrader(ctx context.Context, traderID string) (int, error) {
	accounts, err := s.accounts.ListByTraderID(ctx, traderID)
	if err != nil {
		return 0, fmt.Errorf("list accounts: %w", err)
	}

	total := 0
	for _, account := range accounts {
		n, err := s.SyncAccount(ctx, account)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// SyncAccount fetches closed trades for one account over the sync window
// and stores the ones not seen before.
func (s *SyncService) SyncAccount(ctx context.Context, account *domain.TradingAccount) (int, error) {
	to := s.now().UTC()
	from := to.Add(-defaultSyncWindow)

	start := s.now()
	payloads, err := s.bridge.ClosedTrades(ctx, account.ExternalID, from, to)
	observability.RecordBridgeCall("closed_trades", time.Since(start).Seconds(), err)
	if err != nil {
		return 0, fmt.Errorf("fetch trades for %s: %w", account.ExternalID, err)
	}

	stored, skipped := 0, 0
	for _, payload := range payloads {
		if !mt5.ValidTrade(payload) {
			skipped++
			observability.RecordTradeSkipped()
			continue
		}
		trade := mt5.NormalizeTrade(account.ID, payload)
		if err := s.trades.Insert(ctx, trade); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			return stored, fmt.Errorf("store trade %s: %w", trade.ID, err)
		}
		stored++
	}

	if stored > 0 {
		observability.RecordTradesSynced(stored)
	}
	s.logger.Printf("[sync] account %s: %d trades fetched, %d new, %d invalid skipped", account.ExternalID, len(payloads), stored, skipped)
	return stored, nil
}

// ConsumeStream delivers live closed-trade events for an account into the
// trade store until the context is cancelled or the stream closes.
func (s *SyncService) ConsumeStream(ctx context.Context, stream *mt5.StreamClient, account *domain.TradingAccount) error {
	events, err := stream.Subscribe(ctx, account.ExternalID)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", account.ExternalID, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			observability.RecordStreamEvent()
			if !mt5.ValidTrade(ev.Trade) {
				observability.RecordTradeSkipped()
				continue
			}
			trade := mt5.NormalizeTrade(account.ID, ev.Trade)
			if err := s.trades.Insert(ctx, trade); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
				s.logger.Printf("[sync] store streamed trade %s: %v", trade.ID, err)
			}
		}
	}
}

// ConsumeStreams subscribes every linked account of every known trader to
// the live stream and consumes events until the context is cancelled.
func (s *SyncService) ConsumeStreams(ctx context.Context, stream *mt5.StreamClient, traders storage.TraderStore) error {
	var wg sync.WaitGroup

	const pageSize = 200
	offset := 0
	for {
		page, _, err := traders.List(ctx, storage.TraderQuery{Limit: pageSize, Offset: offset})
		if err != nil {
			wg.Wait()
			return fmt.Errorf("list traders: %w", err)
		}
		if len(page) == 0 {
			break
		}
		for _, trader := range page {
			accounts, err := s.accounts.ListByTraderID(ctx, trader.ID)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					continue
				}
				wg.Wait()
				return fmt.Errorf("list accounts for %s: %w", trader.ID, err)
			}
			for _, account := range accounts {
				wg.Add(1)
				go func(acct *domain.TradingAccount) {
					defer wg.Done()
					if err := s.ConsumeStream(ctx, stream, acct); err != nil && !errors.Is(err, context.Canceled) {
						s.logger.Printf("[sync] stream for account %s stopped: %v", acct.ExternalID, err)
					}
				}(account)
			}
		}
		offset += len(page)
	}

	wg.Wait()
	return nil
}

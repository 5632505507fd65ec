package mt5

import (
	"time"

	"traderank/internal/domain"
	"traderank/internal/idhash"
	"traderank/internal/normalization"
)

// NormalizeAccount converts a raw bridge account document into a domain
// trading account. Malformed values fall back to safe defaults rather than
// failing the sync.
func NormalizeAccount(accountID, traderID string, p *AccountPayload) *domain.TradingAccount {
	return &domain.TradingAccount{
		ID:         accountID,
		TraderID:   traderID,
		ExternalID: p.AccountID,
		Balance:    normalization.Money(p.Balance),
		Leverage:   normalization.Leverage(p.Leverage),
		Currency:   normalization.Currency(p.Currency),
		Status:     normalization.Status(p.Status),
	}
}

// ValidTrade reports whether a raw trade carries the fields a closed trade
// cannot be stored without. Invalid payloads are skipped by callers, not
// coerced into records with fabricated identity.
func ValidTrade(p *TradePayload) bool {
	return p != nil && p.Symbol != "" && p.CloseTime > 0
}

// NormalizeTrade converts a raw bridge trade into a domain closed trade.
// Fees are commission plus swap. The trade ID is derived from the account,
// symbol, close time, and ticket, so re-syncing the same window produces
// the same IDs.
func NormalizeTrade(accountID string, p *TradePayload) *domain.ClosedTrade {
	symbol := normalization.Symbol(p.Symbol)
	return &domain.ClosedTrade{
		ID:         idhash.ComputeTradeID(accountID, symbol, p.CloseTime, p.Ticket),
		AccountID:  accountID,
		Symbol:     symbol,
		ProfitLoss: normalization.Money(p.Profit),
		Fees:       normalization.Money(p.Commission + p.Swap),
		OpenTime:   time.UnixMilli(p.OpenTime).UTC(),
		CloseTime:  time.UnixMilli(p.CloseTime).UTC(),
	}
}

// NormalizeTrades converts a batch of raw trades, dropping invalid payloads.
func NormalizeTrades(accountID string, payloads []*TradePayload) []*domain.ClosedTrade {
	trades := make([]*domain.ClosedTrade, 0, len(payloads))
	for _, p := range payloads {
		if !ValidTrade(p) {
			continue
		}
		trades = append(trades, NormalizeTrade(accountID, p))
	}
	return trades
}

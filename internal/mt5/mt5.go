// Package mt5 talks to the MT5 bridge service: account state, closed-trade
// history, and the live trade event stream. When bridge credentials are
// absent the package runs in mock mode and serves deterministic data, so
// the rest of the system works in local development.
package mt5

import (
	"context"
	"time"
)

// AccountPayload is the raw account document from the bridge. Values are
// unvalidated; Normalize before use.
type AccountPayload struct {
	AccountID string  `json:"accountId"`
	Balance   float64 `json:"balance"`
	Leverage  float64 `json:"leverage"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
}

// TradePayload is one raw closed trade from the bridge. Times are unix
// milliseconds.
type TradePayload struct {
	Ticket     string  `json:"ticket"`
	Symbol     string  `json:"symbol"`
	Volume     float64 `json:"volume"`
	OpenPrice  float64 `json:"openPrice"`
	ClosePrice float64 `json:"closePrice"`
	Profit     float64 `json:"profit"`
	Commission float64 `json:"commission"`
	Swap       float64 `json:"swap"`
	OpenTime   int64   `json:"openTime"`
	CloseTime  int64   `json:"closeTime"`
}

// Client fetches account state and trade history from the bridge.
type Client interface {
	// Account retrieves the account document for a broker login.
	Account(ctx context.Context, login string) (*AccountPayload, error)

	// ClosedTrades retrieves closed trades for a login within [from, to].
	ClosedTrades(ctx context.Context, login string, from, to time.Time) ([]*TradePayload, error)
}

// Config holds bridge connection settings.
type Config struct {
	BaseURL   string
	StreamURL string
	APIKey    string
}

// MockMode reports whether the config lacks real bridge credentials.
func (c Config) MockMode() bool {
	return c.BaseURL == "" || c.APIKey == ""
}

// NewClient returns a bridge client for the config: an HTTP client against
// the real bridge, or the deterministic mock when credentials are missing.
func NewClient(cfg Config) Client {
	if cfg.MockMode() {
		return NewMockClient()
	}
	return NewHTTPClient(cfg.BaseURL, cfg.APIKey)
}

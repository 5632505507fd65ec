package domain

import "time"

// TradingAccount is an MT5 trading account linked to a trader.
type TradingAccount struct {
	ID         string
	TraderID   string
	ExternalID string // broker-side account number
	Balance    float64
	Leverage   int
	Currency   string
	Status     string
}

// ClosedTrade is a single closed trade from a trading account. Append-only
// history owned by the ingestion collaborator; read-only input here.
type ClosedTrade struct {
	ID         string
	AccountID  string
	Symbol     string
	ProfitLoss float64
	Fees       float64
	OpenTime   time.Time
	CloseTime  time.Time
}

// NetPnL returns profit/loss after fees.
func (t *ClosedTrade) NetPnL() float64 {
	return t.ProfitLoss - t.Fees
}

// ClosedTradeQuery restricts a closed-trade listing. Zero values mean
// unbounded; results are always ordered by close time ascending.
type ClosedTradeQuery struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

package domain

import "time"

// MetricsSnapshot holds per-trader computed trading statistics at a point in
// time. Produced wholesale by an external aggregation run or derived
// on-demand from raw trades; immutable once written.
type MetricsSnapshot struct {
	TraderID     string
	WinRatePct   float64 // 0-100
	ProfitFactor float64 // gross win / gross loss; 2.0 by convention when no losses
	DrawdownPct  float64 // 0-100
	TotalTrades  int
	TradingDays  int // distinct calendar days with at least one closed trade
	UpdatedAt    time.Time
}

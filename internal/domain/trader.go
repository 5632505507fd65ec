package domain

import "time"

// TraderSummary is one row of the public leaderboard.
type TraderSummary struct {
	ID          string
	UserID      string
	DisplayName string
	Score       float64
	Tier        Tier
	Rank        int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProfileMetrics is the metrics block of a public trader profile.
type ProfileMetrics struct {
	ProfitFactor    float64
	WinRate         float64 // percentage 0-100
	MaxDrawdown     float64 // percentage 0-100
	TotalProfit     float64
	TotalTrades     int
	TradingDays     int
	SharpeRatio     float64
	AverageWin      float64
	AverageLoss     float64
	LargestWin      float64
	LargestLoss     float64
	CurrentDrawdown float64
}

// TraderProfile is the full public profile for a single trader.
type TraderProfile struct {
	ID           string
	DisplayName  string
	Tier         Tier
	Rank         int
	OverallScore float64
	Metrics      ProfileMetrics
	Rewards      RewardFlags
}

// TraderScore is the computed score/tier pair for a trader.
type TraderScore struct {
	TraderID     string
	Score        float64
	Tier         Tier
	CalculatedAt time.Time
}

// LegacyScore is the pre-migration score record keyed by trading account
// rather than by trader. Retained for backward compatibility while reads
// migrate to snapshot-based profiles.
type LegacyScore struct {
	TradingAccountID string
	DisplayName      string
	Score            float64
	Tier             Tier
	Rank             int
	UpdatedAt        time.Time
}

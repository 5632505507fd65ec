package domain

import "time"

// SnapshotRun identifies one batch snapshot generation. The latest run is
// the preferred source for leaderboard and profile reads.
type SnapshotRun struct {
	ID          string
	RunKey      string
	Version     string
	Label       string
	GeneratedAt time.Time
}

// SnapshotMetrics is the metrics summary embedded in a trader snapshot.
type SnapshotMetrics struct {
	ProfitFactor float64
	WinRatePct   float64
	DrawdownPct  float64
	TradingDays  int
	TotalTrades  int
}

// TraderSnapshot is one trader's row within a snapshot run: precomputed
// score, rank, tier, reward badges, and metrics summary.
type TraderSnapshot struct {
	SnapshotID       string
	TraderID         string
	ExternalTraderID string
	DisplayName      string
	Score            float64
	Rank             int
	Tier             Tier
	Badges           RewardFlags
	Metrics          SnapshotMetrics
}

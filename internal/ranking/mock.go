package ranking

import (
	"time"

	"traderank/internal/domain"
	"traderank/internal/scoring"
)

// Static fallback dataset served when every real source comes up empty.
// Keeps the public API populated on a fresh deployment.

var mockBaseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func mockTraders() []*domain.TraderSummary {
	return []*domain.TraderSummary{
		{
			ID:          "mock-1",
			UserID:      "mock-user-1",
			DisplayName: "Alpha Trader",
			Score:       96.2,
			Tier:        domain.TierElite,
			Rank:        1,
			CreatedAt:   mockBaseTime,
			UpdatedAt:   mockBaseTime,
		},
		{
			ID:          "mock-2",
			UserID:      "mock-user-2",
			DisplayName: "Beta Trader",
			Score:       88.4,
			Tier:        domain.TierDiamond,
			Rank:        2,
			CreatedAt:   mockBaseTime,
			UpdatedAt:   mockBaseTime,
		},
		{
			ID:          "mock-3",
			UserID:      "mock-user-3",
			DisplayName: "Gamma Trader",
			Score:       74.1,
			Tier:        domain.TierPlatinum,
			Rank:        3,
			CreatedAt:   mockBaseTime,
			UpdatedAt:   mockBaseTime,
		},
	}
}

// mockMetrics is the metric set attached to static fallback profiles.
func mockMetrics() scoring.Input {
	return scoring.Input{
		ProfitFactor:   2.5,
		WinRatePct:     65.0,
		DrawdownPct:    10.0,
		SharpeRatio:    1.8,
		ConsistencyPct: 75.0,
		RiskPct:        80.0,
	}
}

func mockTraderByID(id string) *domain.TraderSummary {
	for _, t := range mockTraders() {
		if t.ID == id {
			return t
		}
	}
	return nil
}

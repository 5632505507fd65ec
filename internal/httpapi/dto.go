package httpapi

import (
	"time"

	"traderank/internal/aggregation"
	"traderank/internal/domain"
	"traderank/internal/engineconfig"
	"traderank/internal/ranking"
	"traderank/internal/rewards"
)

// Wire DTOs and their mapping functions. Every response type is mapped
// explicitly from domain values; domain structs never leak onto the wire.

// TraderDTO is one leaderboard row.
type TraderDTO struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	Score       float64 `json:"score"`
	Tier        string  `json:"tier"`
	Rank        int     `json:"rank"`
}

func toTraderDTO(t *domain.TraderSummary) TraderDTO {
	return TraderDTO{
		ID:          t.ID,
		DisplayName: t.DisplayName,
		Score:       t.Score,
		Tier:        string(t.Tier),
		Rank:        t.Rank,
	}
}

func toTraderDTOs(traders []*domain.TraderSummary) []TraderDTO {
	out := make([]TraderDTO, 0, len(traders))
	for _, t := range traders {
		out = append(out, toTraderDTO(t))
	}
	return out
}

// ProfileMetricsDTO is the metrics block of a trader profile.
type ProfileMetricsDTO struct {
	ProfitFactor    float64 `json:"profitFactor"`
	WinRate         float64 `json:"winRate"`
	MaxDrawdown     float64 `json:"maxDrawdown"`
	TotalProfit     float64 `json:"totalProfit"`
	TotalTrades     int     `json:"totalTrades"`
	TradingDays     int     `json:"tradingDays"`
	SharpeRatio     float64 `json:"sharpeRatio"`
	AverageWin      float64 `json:"averageWin"`
	AverageLoss     float64 `json:"averageLoss"`
	LargestWin      float64 `json:"largestWin"`
	LargestLoss     float64 `json:"largestLoss"`
	CurrentDrawdown float64 `json:"currentDrawdown"`
}

// RewardFlagsDTO marks reward category eligibility.
type RewardFlagsDTO struct {
	PhoenixAddOn bool `json:"phoenixAddOn"`
	PayoutBoost  bool `json:"payoutBoost"`
	Cashback     bool `json:"cashback"`
	Merchandise  bool `json:"merchandise"`
}

func toRewardFlagsDTO(f domain.RewardFlags) RewardFlagsDTO {
	return RewardFlagsDTO{
		PhoenixAddOn: f.PhoenixAddOn,
		PayoutBoost:  f.PayoutBoost,
		Cashback:     f.Cashback,
		Merchandise:  f.Merchandise,
	}
}

// ProfileDTO is the full public trader profile.
type ProfileDTO struct {
	ID           string            `json:"id"`
	DisplayName  string            `json:"displayName"`
	Tier         string            `json:"tier"`
	Rank         int               `json:"rank"`
	OverallScore float64           `json:"overallScore"`
	Metrics      ProfileMetricsDTO `json:"metrics"`
	Rewards      RewardFlagsDTO    `json:"rewards"`
}

func toProfileDTO(p *domain.TraderProfile) ProfileDTO {
	m := p.Metrics
	return ProfileDTO{
		ID:           p.ID,
		DisplayName:  p.DisplayName,
		Tier:         string(p.Tier),
		Rank:         p.Rank,
		OverallScore: p.OverallScore,
		Metrics: ProfileMetricsDTO{
			ProfitFactor:    m.ProfitFactor,
			WinRate:         m.WinRate,
			MaxDrawdown:     m.MaxDrawdown,
			TotalProfit:     m.TotalProfit,
			TotalTrades:     m.TotalTrades,
			TradingDays:     m.TradingDays,
			SharpeRatio:     m.SharpeRatio,
			AverageWin:      m.AverageWin,
			AverageLoss:     m.AverageLoss,
			LargestWin:      m.LargestWin,
			LargestLoss:     m.LargestLoss,
			CurrentDrawdown: m.CurrentDrawdown,
		},
		Rewards: toRewardFlagsDTO(p.Rewards),
	}
}

// ScoreDTO is a computed score/tier pair.
type ScoreDTO struct {
	TraderID     string    `json:"traderId,omitempty"`
	Score        float64   `json:"score"`
	Tier         string    `json:"tier"`
	CalculatedAt time.Time `json:"calculatedAt"`
}

func toScoreDTO(s *domain.TraderScore) ScoreDTO {
	return ScoreDTO{
		TraderID:     s.TraderID,
		Score:        s.Score,
		Tier:         string(s.Tier),
		CalculatedAt: s.CalculatedAt,
	}
}

// PayoutDTO is the stored payout state for a trader.
type PayoutDTO struct {
	TraderID            string     `json:"traderId"`
	Level               string     `json:"level"`
	PayoutPercent       float64    `json:"payoutPercent"`
	AverageTradesPerDay float64    `json:"averageTradesPerDay"`
	TotalTradingDays    int        `json:"totalTradingDays"`
	MaxTradesPerDay     int        `json:"maxTradesPerDay"`
	NextUpdateAt        *time.Time `json:"nextUpdateAt,omitempty"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func toPayoutDTO(p *domain.PayoutRecord) PayoutDTO {
	return PayoutDTO{
		TraderID:            p.TraderID,
		Level:               string(p.Level),
		PayoutPercent:       p.PayoutPercent,
		AverageTradesPerDay: p.AverageTradesPerDay,
		TotalTradingDays:    p.TotalTradingDays,
		MaxTradesPerDay:     p.MaxTradesPerDay,
		NextUpdateAt:        p.NextUpdateAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// PayoutBandDTO is one configured payout band.
type PayoutBandDTO struct {
	Level         string   `json:"level"`
	MinAverage    float64  `json:"minAverage"`
	MaxAverage    *float64 `json:"maxAverage"` // null on the unbounded band
	PayoutPercent float64  `json:"payoutPercent"`
	Color         string   `json:"color"`
	Description   string   `json:"description"`
}

func toPayoutBandDTOs(bands []domain.PayoutBand) []PayoutBandDTO {
	out := make([]PayoutBandDTO, 0, len(bands))
	for _, b := range bands {
		dto := PayoutBandDTO{
			Level:         string(b.Level),
			MinAverage:    b.MinAverage,
			PayoutPercent: b.PayoutPercent,
			Color:         b.Color,
			Description:   b.Description,
		}
		if !isInf(b.MaxAverage) {
			max := b.MaxAverage
			dto.MaxAverage = &max
		}
		out = append(out, dto)
	}
	return out
}

// TierBandDTO is one configured score band with the rewards it unlocks.
type TierBandDTO struct {
	Tier     string         `json:"tier"`
	MinScore float64        `json:"minScore"`
	Rewards  RewardFlagsDTO `json:"rewards"`
}

func toTierBandDTOs(bands []engineconfig.TierBand) []TierBandDTO {
	out := make([]TierBandDTO, 0, len(bands))
	for _, b := range bands {
		out = append(out, TierBandDTO{
			Tier:     string(b.Tier),
			MinScore: b.MinScore,
			Rewards:  toRewardFlagsDTO(rewards.FlagsForTier(b.Tier)),
		})
	}
	return out
}

// RewardTargetDTO is one gamification target.
type RewardTargetDTO struct {
	ID             int    `json:"id"`
	Label          string `json:"label"`
	RequiredPoints int    `json:"requiredPoints"`
	Unlocked       bool   `json:"unlocked"`
}

// ProgressDTO is the derived progress view for a user.
type ProgressDTO struct {
	CurrentPoints       int               `json:"currentPoints"`
	NextRewardThreshold int               `json:"nextRewardThreshold"`
	Targets             []RewardTargetDTO `json:"targets"`
}

func toProgressDTO(p *domain.ProgressState) ProgressDTO {
	targets := make([]RewardTargetDTO, 0, len(p.Targets))
	for _, t := range p.Targets {
		targets = append(targets, RewardTargetDTO{
			ID:             t.ID,
			Label:          t.Label,
			RequiredPoints: t.RequiredPoints,
			Unlocked:       t.Unlocked,
		})
	}
	return ProgressDTO{
		CurrentPoints:       p.CurrentPoints,
		NextRewardThreshold: p.NextRewardThreshold,
		Targets:             targets,
	}
}

// TradeDTO is one closed trade in the analytics view.
type TradeDTO struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	ProfitLoss float64   `json:"profitLoss"`
	Fees       float64   `json:"fees"`
	NetPnL     float64   `json:"netPnl"`
	OpenTime   time.Time `json:"openTime"`
	CloseTime  time.Time `json:"closeTime"`
}

func toTradeDTOs(trades []*domain.ClosedTrade) []TradeDTO {
	out := make([]TradeDTO, 0, len(trades))
	for _, t := range trades {
		out = append(out, TradeDTO{
			ID:         t.ID,
			Symbol:     t.Symbol,
			ProfitLoss: t.ProfitLoss,
			Fees:       t.Fees,
			NetPnL:     t.NetPnL(),
			OpenTime:   t.OpenTime,
			CloseTime:  t.CloseTime,
		})
	}
	return out
}

// EquityPointDTO is one point of the cumulative P&L curve.
type EquityPointDTO struct {
	Date   string  `json:"date"`
	Equity float64 `json:"equity"`
}

func toEquityCurveDTO(points []aggregation.EquityPoint) []EquityPointDTO {
	out := make([]EquityPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, EquityPointDTO{Date: p.Date, Equity: p.Equity})
	}
	return out
}

// AnalyticsDTO is the per-user trading analytics view.
type AnalyticsDTO struct {
	TraderID         string           `json:"traderId,omitempty"`
	WinRate          float64          `json:"winRate"`
	ProfitFactor     float64          `json:"profitFactor"`
	MaxDrawdown      float64          `json:"maxDrawdown"`
	TotalTradingDays int              `json:"totalTradingDays"`
	PayoutPercent    *float64         `json:"payoutPercent"` // null until calculated
	EquityCurve      []EquityPointDTO `json:"equityCurve"`
	TradesThisWeek   int              `json:"tradesThisWeek"`
	TradesLastWeek   int              `json:"tradesLastWeek"`
	RecentTrades     []TradeDTO       `json:"recentTrades"`
	NextTierHint     string           `json:"nextTierHint,omitempty"`
}

func toAnalyticsDTO(a *ranking.Analytics) AnalyticsDTO {
	return AnalyticsDTO{
		TraderID:         a.TraderID,
		WinRate:          a.WinRatePct,
		ProfitFactor:     a.ProfitFactor,
		MaxDrawdown:      a.DrawdownPct,
		TotalTradingDays: a.TotalTradingDays,
		PayoutPercent:    a.PayoutPercent,
		EquityCurve:      toEquityCurveDTO(a.EquityCurve),
		TradesThisWeek:   a.TradesThisWeek,
		TradesLastWeek:   a.TradesLastWeek,
		RecentTrades:     toTradeDTOs(a.RecentTrades),
		NextTierHint:     a.NextTierHint,
	}
}

// ScoreRequest is the metric set submitted for scoring.
type ScoreRequest struct {
	ProfitFactor float64 `json:"profitFactor"`
	WinRate      float64 `json:"winRate"`
	MaxDrawdown  float64 `json:"maxDrawdown"`
	SharpeRatio  float64 `json:"sharpeRatio"`
	Consistency  float64 `json:"consistency"`
	RiskScore    float64 `json:"riskScore"`
}

// Package aggregation derives per-day and per-week statistics from raw
// closed-trade history. All day bucketing is UTC calendar days keyed by the
// trade's close time.
package aggregation

import (
	"sort"
	"time"

	"traderank/internal/domain"
	"traderank/internal/normalization"
)

const dayFormat = "2006-01-02"

// TradeStats summarizes trading activity for payout calculation.
type TradeStats struct {
	MaxTradesPerDay  int
	TotalTradingDays int
}

// DeriveTradeStats buckets trades into UTC calendar days and returns the
// busiest day's count and the number of distinct trading days. Returns nil
// when there are no trades; callers treat nil as "no data", not an error.
func DeriveTradeStats(trades []*domain.ClosedTrade) *TradeStats {
	if len(trades) == 0 {
		return nil
	}

	perDay := make(map[string]int)
	for _, t := range trades {
		perDay[t.CloseTime.UTC().Format(dayFormat)]++
	}

	max := 0
	for _, n := range perDay {
		if n > max {
			max = n
		}
	}
	return &TradeStats{MaxTradesPerDay: max, TotalTradingDays: len(perDay)}
}

// EquityPoint is one day of the cumulative equity curve.
type EquityPoint struct {
	Date   string // UTC day, YYYY-MM-DD
	Equity float64
}

// EquityCurve returns the cumulative net profit by UTC day, ascending.
// Net profit is profit/loss after fees, rounded to cents per point.
func EquityCurve(trades []*domain.ClosedTrade) []EquityPoint {
	if len(trades) == 0 {
		return nil
	}

	perDay := make(map[string]float64)
	for _, t := range trades {
		perDay[t.CloseTime.UTC().Format(dayFormat)] += t.NetPnL()
	}

	days := make([]string, 0, len(perDay))
	for d := range perDay {
		days = append(days, d)
	}
	sort.Strings(days)

	points := make([]EquityPoint, len(days))
	cumulative := 0.0
	for i, d := range days {
		cumulative += perDay[d]
		points[i] = EquityPoint{Date: d, Equity: normalization.Money(cumulative)}
	}
	return points
}

// WeeklyCounts returns the number of trades closed in the ISO week
// containing now and in the week before it. ISO weeks run Monday-Sunday.
func WeeklyCounts(trades []*domain.ClosedTrade, now time.Time) (thisWeek, lastWeek int) {
	thisYear, thisNum := now.UTC().ISOWeek()
	lastYear, lastNum := now.UTC().AddDate(0, 0, -7).ISOWeek()

	for _, t := range trades {
		y, n := t.CloseTime.UTC().ISOWeek()
		switch {
		case y == thisYear && n == thisNum:
			thisWeek++
		case y == lastYear && n == lastNum:
			lastWeek++
		}
	}
	return thisWeek, lastWeek
}

// RecentTrades returns up to limit trades ordered by close time descending.
// The input slice is not modified.
func RecentTrades(trades []*domain.ClosedTrade, limit int) []*domain.ClosedTrade {
	if limit <= 0 || len(trades) == 0 {
		return nil
	}

	sorted := make([]*domain.ClosedTrade, len(trades))
	copy(sorted, trades)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CloseTime.After(sorted[j].CloseTime)
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

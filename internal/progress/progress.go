// Package progress derives the gamification progress view from a trader's
// payout percent and trading-day count. The view is recomputed on every
// request and never persisted.
package progress

import (
	"fmt"
	"math"

	"traderank/internal/domain"
	"traderank/internal/engineconfig"
)

// Engine computes progress points and reward targets.
type Engine struct {
	cfg engineconfig.Progress
}

// NewEngine returns a progress engine over the given parameters.
func NewEngine(cfg engineconfig.Progress) *Engine {
	return &Engine{cfg: cfg}
}

// Compute derives the progress state. payoutPercent is 0 when the trader has
// no payout record yet. Points are the payout percent plus capped per-day
// activity points, floored at the configured minimum. The scale is
// open-ended: points above 100 are valid and unlock every target.
func (e *Engine) Compute(payoutPercent float64, tradingDays int) *domain.ProgressState {
	dayPoints := tradingDays * e.cfg.PointsPerDay
	if dayPoints > e.cfg.DayPointsCap {
		dayPoints = e.cfg.DayPointsCap
	}

	points := int(math.Round(payoutPercent + float64(dayPoints)))
	if points < e.cfg.MinimumPoints {
		points = e.cfg.MinimumPoints
	}

	targets := make([]domain.RewardTarget, len(e.cfg.Thresholds))
	next := 100
	nextFound := false
	for i, threshold := range e.cfg.Thresholds {
		unlocked := points >= threshold
		targets[i] = domain.RewardTarget{
			ID:             i + 1,
			Label:          fmt.Sprintf("Reward %d", i+1),
			RequiredPoints: threshold,
			Unlocked:       unlocked,
		}
		if !unlocked && !nextFound {
			next = threshold
			nextFound = true
		}
	}

	return &domain.ProgressState{
		CurrentPoints:       points,
		NextRewardThreshold: next,
		Targets:             targets,
	}
}

// Package scoring computes the composite trader score and maps scores to
// ranking tiers. All functions are pure; the same input always yields the
// same score.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"traderank/internal/domain"
	"traderank/internal/engineconfig"
	"traderank/internal/normalization"
)

// ErrNotFinite is returned when a score input contains NaN or infinity.
var ErrNotFinite = errors.New("non-finite metric")

// Input is the metric set a score is computed from. Percentages are on the
// 0-100 scale; callers normalize before scoring.
type Input struct {
	ProfitFactor   float64
	WinRatePct     float64
	DrawdownPct    float64
	SharpeRatio    float64
	ConsistencyPct float64
	RiskPct        float64
}

// Validate rejects inputs containing NaN or infinity.
func (in Input) Validate() error {
	fields := map[string]float64{
		"profitFactor": in.ProfitFactor,
		"winRate":      in.WinRatePct,
		"drawdown":     in.DrawdownPct,
		"sharpe":       in.SharpeRatio,
		"consistency":  in.ConsistencyPct,
		"risk":         in.RiskPct,
	}
	for name, v := range fields {
		if !normalization.IsFinite(v) {
			return fmt.Errorf("%s: %w", name, ErrNotFinite)
		}
	}
	return nil
}

// Engine scores traders using a validated parameter set.
type Engine struct {
	cfg *engineconfig.Config
}

// NewEngine returns a scoring engine over cfg. The config must already be
// validated.
func NewEngine(cfg *engineconfig.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Score computes the weighted composite score on the 0-100 scale, rounded
// to 2 decimal places. Each raw metric is first projected onto 0-100:
// profit factor and Sharpe ratio are scaled and capped, drawdown is
// inverted (deeper drawdown scores lower), the rest are used as-is.
func (e *Engine) Score(in Input) float64 {
	w := e.cfg.Weights

	profitFactor := math.Min(in.ProfitFactor*20, 100)
	winRate := in.WinRatePct
	drawdown := math.Max(0, 100-in.DrawdownPct*5)
	sharpe := math.Min(in.SharpeRatio*30, 100)

	total := profitFactor*w.ProfitFactor +
		winRate*w.WinRate +
		drawdown*w.Drawdown +
		sharpe*w.Sharpe +
		in.ConsistencyPct*w.Consistency +
		in.RiskPct*w.Risk

	return normalization.Round2(total)
}

// Tier maps a score to its ranking tier. Bands are checked highest-first;
// a score on a boundary belongs to the higher band.
func (e *Engine) Tier(score float64) domain.Tier {
	for _, b := range e.cfg.TierBands {
		if score >= b.MinScore {
			return b.Tier
		}
	}
	// Scores below every band (negative input) land in the lowest tier.
	return e.cfg.TierBands[len(e.cfg.TierBands)-1].Tier
}

// ScoreAndTier computes both in one call.
func (e *Engine) ScoreAndTier(in Input) (float64, domain.Tier) {
	score := e.Score(in)
	return score, e.Tier(score)
}

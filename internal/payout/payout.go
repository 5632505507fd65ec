// Package payout maps trading activity to a payout band. Lower average
// trade counts fall into higher-paying bands; the band levels are named in
// the opposite order of the ranking tiers and that naming is load-bearing
// for downstream consumers.
package payout

import (
	"errors"

	"traderank/internal/domain"
)

// ErrNoTradingDays is returned when a payout is requested for a trader with
// zero or negative trading days.
var ErrNoTradingDays = errors.New("total trading days must be positive")

// Result is the outcome of one payout calculation.
type Result struct {
	AverageTradesPerDay float64
	Band                domain.PayoutBand
}

// Engine classifies trading activity into payout bands.
type Engine struct {
	bands []domain.PayoutBand
}

// NewEngine returns a payout engine over the given bands. Bands must be
// contiguous and ascending by MinAverage, with the last band unbounded;
// engineconfig validation guarantees this.
func NewEngine(bands []domain.PayoutBand) *Engine {
	return &Engine{bands: bands}
}

// Bands returns the configured band catalog.
func (e *Engine) Bands() []domain.PayoutBand {
	out := make([]domain.PayoutBand, len(e.bands))
	copy(out, e.bands)
	return out
}

// Calculate derives the payout band from the busiest day's trade count and
// the number of distinct trading days. The average is matched against bands
// as [MinAverage, MaxAverage): an average exactly on a boundary belongs to
// the higher-activity band.
func (e *Engine) Calculate(maxTradesPerDay, totalTradingDays int) (*Result, error) {
	if totalTradingDays <= 0 {
		return nil, ErrNoTradingDays
	}

	avg := float64(maxTradesPerDay) / float64(totalTradingDays)
	for _, b := range e.bands {
		if avg >= b.MinAverage && avg < b.MaxAverage {
			return &Result{AverageTradesPerDay: avg, Band: b}, nil
		}
	}
	// The last band is unbounded, so this is only reachable with a
	// misconfigured band set.
	last := e.bands[len(e.bands)-1]
	return &Result{AverageTradesPerDay: avg, Band: last}, nil
}

package domain

import "time"

// PayoutBand is one configured payout tier: an average-trades-per-day range
// mapped to a payout percent. Lower averages pay out more: consistency is
// rewarded over volume.
type PayoutBand struct {
	MinAverage    float64
	MaxAverage    float64
	PayoutPercent float64
	Level         PayoutLevel
	Color         string
	Description   string
}

// PayoutRecord is the persisted payout state for a trader. Upserted (keyed
// by TraderID) on every calculate operation; never deleted.
type PayoutRecord struct {
	ID                  string
	TraderID            string
	Level               PayoutLevel
	PayoutPercent       float64
	AverageTradesPerDay float64
	TotalTradingDays    int
	MaxTradesPerDay     int
	NextUpdateAt        *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

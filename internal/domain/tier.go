package domain

// Tier is the trader ranking category derived from the composite score.
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
	TierDiamond  Tier = "DIAMOND"
	TierElite    Tier = "ELITE"
)

// Tiers lists all tiers in ascending score order.
var Tiers = []Tier{TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond, TierElite}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond, TierElite:
		return true
	}
	return false
}

// PayoutLevel is the payout category derived from trading-activity average.
// Note the inversion relative to ranking tiers: GOLD is the least active
// band and carries the highest payout percent, BRONZE the lowest.
type PayoutLevel string

const (
	PayoutLevelGold   PayoutLevel = "GOLD"
	PayoutLevelSilver PayoutLevel = "SILVER"
	PayoutLevelBronze PayoutLevel = "BRONZE"
)

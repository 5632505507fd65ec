package domain

import "time"

// RewardFlags marks which reward categories a trader is eligible for.
type RewardFlags struct {
	PhoenixAddOn bool
	PayoutBoost  bool
	Cashback     bool
	Merchandise  bool
}

// Reward entitlement types and statuses.
const (
	RewardTypeBonus       = "BONUS"
	RewardTypeCash        = "CASH"
	RewardTypeMerchandise = "MERCHANDISE"

	EntitlementStatusPending = "PENDING"
)

// Entitlement is an ad-hoc reward grant for a trader, OR-combined with the
// tier-derived base flags while its status is PENDING.
type Entitlement struct {
	ID         string
	TraderID   string
	RewardType string
	Status     string
	GrantedAt  time.Time
}

// RewardEligibility is the combined eligibility result for a trader.
type RewardEligibility struct {
	TraderID string
	Rewards  RewardFlags
}

// Package rewards derives reward eligibility flags from ranking tier and
// pending ad-hoc entitlements.
package rewards

import "traderank/internal/domain"

// FlagsForTier returns the base eligibility for a ranking tier. Higher tiers
// strictly include the rewards of the tiers below them.
func FlagsForTier(tier domain.Tier) domain.RewardFlags {
	switch tier {
	case domain.TierSilver:
		return domain.RewardFlags{Cashback: true}
	case domain.TierGold:
		return domain.RewardFlags{Cashback: true, PayoutBoost: true}
	case domain.TierPlatinum:
		return domain.RewardFlags{Cashback: true, PayoutBoost: true, Merchandise: true}
	case domain.TierDiamond, domain.TierElite:
		return domain.RewardFlags{
			PhoenixAddOn: true,
			PayoutBoost:  true,
			Cashback:     true,
			Merchandise:  true,
		}
	default:
		// BRONZE and unknown tiers earn nothing.
		return domain.RewardFlags{}
	}
}

// ApplyEntitlements ORs the flags granted by pending entitlements into base.
// Entitlements whose status is not PENDING, and unknown reward types, are
// ignored.
func ApplyEntitlements(base domain.RewardFlags, entitlements []*domain.Entitlement) domain.RewardFlags {
	out := base
	for _, e := range entitlements {
		if e.Status != domain.EntitlementStatusPending {
			continue
		}
		switch e.RewardType {
		case domain.RewardTypeBonus:
			out.PhoenixAddOn = true
			out.PayoutBoost = true
		case domain.RewardTypeCash:
			out.Cashback = true
		case domain.RewardTypeMerchandise:
			out.Merchandise = true
		}
	}
	return out
}

// Eligibility combines tier-derived flags with pending entitlements for a
// trader.
func Eligibility(traderID string, tier domain.Tier, entitlements []*domain.Entitlement) *domain.RewardEligibility {
	return &domain.RewardEligibility{
		TraderID: traderID,
		Rewards:  ApplyEntitlements(FlagsForTier(tier), entitlements),
	}
}

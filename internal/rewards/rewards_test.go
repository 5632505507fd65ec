package rewards

import (
	"testing"

	"traderank/internal/domain"
)

func TestFlagsForTier(t *testing.T) {
	tests := []struct {
		tier domain.Tier
		want domain.RewardFlags
	}{
		{domain.TierBronze, domain.RewardFlags{}},
		{domain.TierSilver, domain.RewardFlags{Cashback: true}},
		{domain.TierGold, domain.RewardFlags{Cashback: true, PayoutBoost: true}},
		{domain.TierPlatinum, domain.RewardFlags{Cashback: true, PayoutBoost: true, Merchandise: true}},
		{domain.TierDiamond, domain.RewardFlags{PhoenixAddOn: true, PayoutBoost: true, Cashback: true, Merchandise: true}},
		{domain.TierElite, domain.RewardFlags{PhoenixAddOn: true, PayoutBoost: true, Cashback: true, Merchandise: true}},
		{domain.Tier("BOGUS"), domain.RewardFlags{}},
	}

	for _, tt := range tests {
		if got := FlagsForTier(tt.tier); got != tt.want {
			t.Errorf("FlagsForTier(%v) = %+v, want %+v", tt.tier, got, tt.want)
		}
	}
}

func TestApplyEntitlements(t *testing.T) {
	base := FlagsForTier(domain.TierBronze)

	entitlements := []*domain.Entitlement{
		{RewardType: domain.RewardTypeBonus, Status: domain.EntitlementStatusPending},
		{RewardType: domain.RewardTypeCash, Status: "CLAIMED"}, // not pending, ignored
	}

	got := ApplyEntitlements(base, entitlements)
	want := domain.RewardFlags{PhoenixAddOn: true, PayoutBoost: true}
	if got != want {
		t.Errorf("ApplyEntitlements() = %+v, want %+v", got, want)
	}
}

func TestApplyEntitlementsUnknownType(t *testing.T) {
	got := ApplyEntitlements(domain.RewardFlags{}, []*domain.Entitlement{
		{RewardType: "VACATION", Status: domain.EntitlementStatusPending},
	})
	if got != (domain.RewardFlags{}) {
		t.Errorf("unknown reward type granted flags: %+v", got)
	}
}

func TestEligibilityCombines(t *testing.T) {
	// SILVER grants cashback; a pending MERCHANDISE entitlement adds to it.
	got := Eligibility("trader-1", domain.TierSilver, []*domain.Entitlement{
		{RewardType: domain.RewardTypeMerchandise, Status: domain.EntitlementStatusPending},
	})

	want := domain.RewardFlags{Cashback: true, Merchandise: true}
	if got.Rewards != want {
		t.Errorf("Eligibility() rewards = %+v, want %+v", got.Rewards, want)
	}
	if got.TraderID != "trader-1" {
		t.Errorf("trader ID = %q", got.TraderID)
	}
}

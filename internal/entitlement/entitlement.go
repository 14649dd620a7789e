package entitlement

import (
	"fmt"
	"strings"
)

// Tier is the user's purchased access level.
type Tier string

const (
	TierFree     Tier = "free"
	TierLifetime Tier = "lifetime"
	TierPro      Tier = "pro"
)

// ParseTier resolves a case-insensitive tier name.
func ParseTier(raw string) (Tier, error) {
	switch tier := Tier(strings.ToLower(strings.TrimSpace(raw))); tier {
	case TierFree, TierLifetime, TierPro:
		return tier, nil
	case "":
		return TierFree, nil
	default:
		return "", fmt.Errorf("unknown entitlement tier %q", raw)
	}
}

// Paid reports whether the tier was purchased.
func (t Tier) Paid() bool {
	return t == TierLifetime || t == TierPro
}

// Feature is a capability gated by tier.
type Feature string

const (
	// FeatureUnlimitedObserve lifts the daily trait-answer limit.
	FeatureUnlimitedObserve Feature = "unlimited_observe"
	// FeatureCapture enables photo identification.
	FeatureCapture Feature = "capture"
	// FeatureBothMode enables re-scoring photo results with verified traits.
	FeatureBothMode Feature = "both_mode"
	// FeatureAllSpecies unlocks browsing beyond the free species set.
	FeatureAllSpecies Feature = "all_species"
	// FeatureJournal enables saving identifications.
	FeatureJournal Feature = "journal"
)

// Gate answers entitlement questions for the current user.
type Gate interface {
	// UnlimitedMatching reports whether the daily answer quota is lifted.
	UnlimitedMatching() bool
	Allows(feature Feature) bool
}

// TierGate derives entitlements from a fixed tier.
type TierGate struct {
	tier Tier
}

var _ Gate = TierGate{}

// NewTierGate returns a gate for tier.
func NewTierGate(tier Tier) TierGate {
	return TierGate{tier: tier}
}

// Tier returns the gate's tier.
func (g TierGate) Tier() Tier {
	return g.tier
}

// UnlimitedMatching is true for every paid tier.
func (g TierGate) UnlimitedMatching() bool {
	return g.Allows(FeatureUnlimitedObserve)
}

// Allows reports whether feature is unlocked. Every feature requires a paid tier.
func (g TierGate) Allows(feature Feature) bool {
	switch feature {
	case FeatureUnlimitedObserve, FeatureAllSpecies, FeatureJournal:
		return g.tier.Paid()
	case FeatureCapture, FeatureBothMode:
		return g.tier == TierPro || g.tier == TierLifetime
	default:
		return false
	}
}

package entitlement_test

import (
	"testing"

	"botanize/internal/entitlement"
)

func TestParseTier(t *testing.T) {
	cases := map[string]entitlement.Tier{
		"free":      entitlement.TierFree,
		" Lifetime": entitlement.TierLifetime,
		"PRO":       entitlement.TierPro,
		"":          entitlement.TierFree,
	}
	for input, want := range cases {
		got, err := entitlement.ParseTier(input)
		if err != nil || got != want {
			t.Fatalf("ParseTier(%q) = %q, %v; want %q", input, got, err, want)
		}
	}
	if _, err := entitlement.ParseTier("platinum"); err == nil {
		t.Fatal("expected error for unknown tier")
	}
}

func TestTierGate(t *testing.T) {
	free := entitlement.NewTierGate(entitlement.TierFree)
	if free.UnlimitedMatching() || free.Allows(entitlement.FeatureCapture) || free.Allows(entitlement.FeatureJournal) {
		t.Fatal("free tier must not unlock paid features")
	}
	for _, tier := range []entitlement.Tier{entitlement.TierLifetime, entitlement.TierPro} {
		gate := entitlement.NewTierGate(tier)
		if !gate.UnlimitedMatching() {
			t.Fatalf("%s should have unlimited matching", tier)
		}
		for _, feature := range []entitlement.Feature{
			entitlement.FeatureCapture,
			entitlement.FeatureBothMode,
			entitlement.FeatureAllSpecies,
			entitlement.FeatureJournal,
		} {
			if !gate.Allows(feature) {
				t.Fatalf("%s should unlock %s", tier, feature)
			}
		}
		if gate.Allows(entitlement.Feature("teleport")) {
			t.Fatalf("%s should not unlock unknown features", tier)
		}
	}
}

package forecast

import (
	"math"
	"testing"
)

func TestClassifyAQI(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		label string
		tier  Tier
	}{
		{"zero", 0, "Good", TierGood},
		{"good upper bound", 50, "Good", TierGood},
		{"just above good", 50.0001, "Moderate", TierModerate},
		{"moderate", 51, "Moderate", TierModerate},
		{"moderate upper bound", 100, "Moderate", TierModerate},
		{"sensitive", 101, "Unhealthy for Sensitive", TierSensitive},
		{"sensitive upper bound", 150, "Unhealthy for Sensitive", TierSensitive},
		{"unhealthy", 150.5, "Unhealthy", TierUnhealthy},
		{"unhealthy upper bound", 200, "Unhealthy", TierUnhealthy},
		{"very unhealthy", 201, "Very Unhealthy", TierVeryUnhealthy},
		{"very unhealthy upper bound", 300, "Very Unhealthy", TierVeryUnhealthy},
		{"hazardous", 301, "Hazardous", TierHazardous},
		{"huge", 1e9, "Hazardous", TierHazardous},
		{"infinite", math.Inf(1), "Hazardous", TierHazardous},
		{"negative", -5, "Good", TierGood},
		{"nan", math.NaN(), "Good", TierGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyAQI(tt.value)
			if got.Label != tt.label || got.Tier != tt.tier {
				t.Errorf("ClassifyAQI(%v) = %+v, want {%s %d}", tt.value, got, tt.label, tt.tier)
			}
		})
	}
}

func TestTier_Severity(t *testing.T) {
	tiers := []Tier{TierGood, TierModerate, TierSensitive, TierUnhealthy, TierVeryUnhealthy, TierHazardous}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].Severity() <= tiers[i-1].Severity() {
			t.Errorf("%s should be more severe than %s", tiers[i].CSSClass(), tiers[i-1].CSSClass())
		}
	}
}

func TestTier_CSSClassUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, tier := range []Tier{TierGood, TierModerate, TierSensitive, TierUnhealthy, TierVeryUnhealthy, TierHazardous} {
		class := tier.CSSClass()
		if seen[class] {
			t.Errorf("duplicate css class %q", class)
		}
		seen[class] = true
	}
}

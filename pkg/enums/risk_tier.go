package enums

import "fmt"

// RiskTier maps to the risk_tier enum in Postgres.
type RiskTier string

const (
	RiskTierLow    RiskTier = "low"
	RiskTierMedium RiskTier = "medium"
	RiskTierHigh   RiskTier = "high"
)

var validRiskTiers = []RiskTier{
	RiskTierLow,
	RiskTierMedium,
	RiskTierHigh,
}

// IsValid reports whether the value matches the canonical risk tier enum.
func (r RiskTier) IsValid() bool {
	for _, candidate := range validRiskTiers {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRiskTier converts raw input into RiskTier.
func ParseRiskTier(value string) (RiskTier, error) {
	for _, candidate := range validRiskTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid risk tier %q", value)
}

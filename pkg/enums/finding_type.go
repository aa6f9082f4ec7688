package enums

import "fmt"

// FindingType maps to the finding_type enum in Postgres.
type FindingType string

const (
	FindingTypeTieIn        FindingType = "tie_in"
	FindingTypeCutoff       FindingType = "cutoff"
	FindingTypeConfirmation FindingType = "confirmation"
	FindingTypeAging        FindingType = "aging"
	FindingTypeAnalytical   FindingType = "analytical"
)

var validFindingTypes = []FindingType{
	FindingTypeTieIn,
	FindingTypeCutoff,
	FindingTypeConfirmation,
	FindingTypeAging,
	FindingTypeAnalytical,
}

// IsValid reports whether the value matches the canonical finding type enum.
func (t FindingType) IsValid() bool {
	for _, candidate := range validFindingTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseFindingType converts raw input into FindingType.
func ParseFindingType(value string) (FindingType, error) {
	for _, candidate := range validFindingTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid finding type %q", value)
}

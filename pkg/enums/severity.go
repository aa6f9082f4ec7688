package enums

import "fmt"

// Severity maps to the severity enum in Postgres.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var validSeverities = []Severity{
	SeverityLow,
	SeverityMedium,
	SeverityHigh,
}

// IsValid reports whether the value matches the canonical severity enum.
func (s Severity) IsValid() bool {
	for _, candidate := range validSeverities {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSeverity converts raw input into Severity.
func ParseSeverity(value string) (Severity, error) {
	for _, candidate := range validSeverities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid severity %q", value)
}

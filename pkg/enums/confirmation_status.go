package enums

import "fmt"

// ConfirmationStatus maps to the confirmation_status enum in Postgres.
type ConfirmationStatus string

const (
	ConfirmationStatusSent        ConfirmationStatus = "sent"
	ConfirmationStatusReceived    ConfirmationStatus = "received"
	ConfirmationStatusException   ConfirmationStatus = "exception"
	ConfirmationStatusNonResponse ConfirmationStatus = "non_response"
)

var validConfirmationStatuses = []ConfirmationStatus{
	ConfirmationStatusSent,
	ConfirmationStatusReceived,
	ConfirmationStatusException,
	ConfirmationStatusNonResponse,
}

// IsValid reports whether the value matches the canonical confirmation status enum.
func (s ConfirmationStatus) IsValid() bool {
	for _, candidate := range validConfirmationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseConfirmationStatus converts raw input into ConfirmationStatus.
func ParseConfirmationStatus(value string) (ConfirmationStatus, error) {
	for _, candidate := range validConfirmationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid confirmation status %q", value)
}

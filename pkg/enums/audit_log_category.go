package enums

import "fmt"

// AuditLogCategory maps to the audit_log_category enum in Postgres.
type AuditLogCategory string

const (
	AuditLogCategoryData      AuditLogCategory = "data"
	AuditLogCategoryProcedure AuditLogCategory = "procedure"
	AuditLogCategorySystem    AuditLogCategory = "system"
	AuditLogCategoryReporting AuditLogCategory = "reporting"
)

var validAuditLogCategories = []AuditLogCategory{
	AuditLogCategoryData,
	AuditLogCategoryProcedure,
	AuditLogCategorySystem,
	AuditLogCategoryReporting,
}

// IsValid reports whether the value matches the canonical audit log category enum.
func (c AuditLogCategory) IsValid() bool {
	for _, candidate := range validAuditLogCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseAuditLogCategory converts raw input into AuditLogCategory.
func ParseAuditLogCategory(value string) (AuditLogCategory, error) {
	for _, candidate := range validAuditLogCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit log category %q", value)
}

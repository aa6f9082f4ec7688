package models

import (
	"time"

	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditFinding is one exception raised by an audit procedure. Findings
// accumulate across runs; re-running a procedure replaces only the findings
// of its own type.
type AuditFinding struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EngagementID uuid.UUID       `gorm:"column:engagement_id;type:uuid;not null;index"`
	Type         enums.FindingType `gorm:"column:type;type:finding_type;not null;index"`
	Severity     enums.Severity  `gorm:"column:severity;type:severity;not null"`
	Reference    string          `gorm:"column:reference;not null"`
	Description  string          `gorm:"column:description;not null"`
	// AmountDifference is the signed monetary magnitude of the exception.
	AmountDifference decimal.Decimal `gorm:"column:amount_difference;type:numeric(18,2);not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}

package models

import (
	"time"

	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/google/uuid"
)

// AuditLogEntry is one append-only action trail record.
type AuditLogEntry struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EngagementID *uuid.UUID             `gorm:"column:engagement_id;type:uuid;index"`
	Actor        string                 `gorm:"column:actor;not null"`
	Action       string                 `gorm:"column:action;not null"`
	Details      string                 `gorm:"column:details;not null"`
	Category     enums.AuditLogCategory `gorm:"column:category;type:audit_log_category;not null"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime"`
}

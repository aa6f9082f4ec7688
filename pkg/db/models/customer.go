package models

import (
	"time"

	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/google/uuid"
)

// Customer is derived from the first Finance row per distinct customer
// reference. Read-only for every procedure downstream of the join.
type Customer struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EngagementID uuid.UUID      `gorm:"column:engagement_id;type:uuid;not null;index"`
	CustomerNo   string         `gorm:"column:customer_no;not null;uniqueIndex:idx_customers_engagement_no,priority:2"`
	Name         string         `gorm:"column:name;not null"`
	Email        *string        `gorm:"column:email"`
	Address      *string        `gorm:"column:address"`
	RiskTier     enums.RiskTier `gorm:"column:risk_tier;type:risk_tier;not null;default:'medium'"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
}

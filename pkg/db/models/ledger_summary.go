package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerSummary is the general-ledger control account total being audited.
// One row per engagement; re-ingestion upserts it.
type LedgerSummary struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EngagementID uuid.UUID       `gorm:"column:engagement_id;type:uuid;not null;uniqueIndex"`
	AccountCode  string          `gorm:"column:account_code;not null"`
	AccountName  string          `gorm:"column:account_name;not null"`
	Balance      decimal.Decimal `gorm:"column:balance;type:numeric(18,2);not null"`
	AsOfDate     time.Time       `gorm:"column:as_of_date;type:date;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

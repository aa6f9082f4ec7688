package models

import (
	"time"

	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConfirmationRequest is one third-party balance confirmation drawn by the
// sampler. Responses are recorded against it later in the engagement.
type ConfirmationRequest struct {
	ID             uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EngagementID   uuid.UUID                `gorm:"column:engagement_id;type:uuid;not null;index"`
	InvoiceID      uuid.UUID                `gorm:"column:invoice_id;type:uuid;not null"`
	InvoiceNo      string                   `gorm:"column:invoice_no;not null"`
	CustomerName   string                   `gorm:"column:customer_name;not null"`
	CustomerEmail  string                   `gorm:"column:customer_email;not null"`
	RecordedAmount decimal.Decimal          `gorm:"column:recorded_amount;type:numeric(18,2);not null"`
	ConfirmedAmount *decimal.Decimal        `gorm:"column:confirmed_amount;type:numeric(18,2)"`
	Difference     decimal.Decimal          `gorm:"column:difference;type:numeric(18,2);not null"`
	Status         enums.ConfirmationStatus `gorm:"column:status;type:confirmation_status;not null;default:'sent'"`
	CreatedAt      time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

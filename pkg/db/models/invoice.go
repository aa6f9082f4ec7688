package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is the unified record the three-way join produces from Finance,
// Warehouse and Sales evidence. Immutable within one reconciliation run;
// re-ingestion supersedes the whole population.
type Invoice struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EngagementID uuid.UUID       `gorm:"column:engagement_id;type:uuid;not null;index"`
	InvoiceNo    string          `gorm:"column:invoice_no;not null;uniqueIndex:idx_invoices_engagement_no,priority:2"`
	CustomerNo   string          `gorm:"column:customer_no;not null;index"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric(18,2);not null"`

	InvoiceDate   time.Time `gorm:"column:invoice_date;type:date;not null"`
	DueDate       time.Time `gorm:"column:due_date;type:date;not null"`
	RecordingDate time.Time `gorm:"column:recording_date;type:date;not null"`
	ShippingDate  time.Time `gorm:"column:shipping_date;type:date;not null"`

	// Cross-references from the Warehouse and Sales sources. Nil means the
	// corroborating evidence was never matched.
	SONumber     *string `gorm:"column:so_number"`
	DONumber     *string `gorm:"column:do_number"`
	PONumber     *string `gorm:"column:po_number"`
	TaxInvoiceNo *string `gorm:"column:tax_invoice_no"`

	Description *string `gorm:"column:description"`
	Currency    string  `gorm:"column:currency;not null;default:'IDR'"`

	// ShippingDateAssumed marks rows with no Warehouse match, where the
	// shipping date fell back to the invoice date. The fallback is a policy
	// choice, not a neutral unknown, so downstream procedures can see it.
	ShippingDateAssumed bool `gorm:"column:shipping_date_assumed;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// HasDeliveryProof reports whether the invoice carries a delivery-order
// reference from the Warehouse source.
func (i Invoice) HasDeliveryProof() bool {
	return i.DONumber != nil && *i.DONumber != ""
}

// DeliveryOrderLabel returns the DO reference for display, or "N/A".
func (i Invoice) DeliveryOrderLabel() string {
	if i.HasDeliveryProof() {
		return *i.DONumber
	}
	return "N/A"
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Engagement is one audit engagement: a client, a fiscal year and the
// reporting date every procedure is evaluated against. Ingesting new source
// data replaces the engagement's invoice population wholesale.
type Engagement struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientName        string    `gorm:"column:client_name;not null"`
	FiscalYear        string    `gorm:"column:fiscal_year;not null"`
	ReportingDate     time.Time `gorm:"column:reporting_date;type:date;not null"`
	DocumentMatchRate float64   `gorm:"column:document_match_rate;type:numeric(5,2);not null;default:0"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

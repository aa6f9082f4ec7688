// Package cutoff tests revenue recognition timing around the reporting
// date. Only invoices whose recording or shipping date falls inside the
// review window are examined; everything else is presumed correct-period.
package cutoff

import (
	"fmt"
	"time"

	"github.com/angelmondragon/arrecon-backend/pkg/dates"
	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
)

// DefaultWindowDays bounds the review window on each side of the
// reporting date.
const DefaultWindowDays = 7

// Detect classifies each in-window invoice against the reporting date.
// Premature: booked on or before the reporting date but shipped after it.
// Unrecorded: shipped on or before the reporting date but booked after it.
// An invoice raises at most one finding per run.
func Detect(invoices []models.Invoice, reportingDate time.Time, windowDays int) []models.AuditFinding {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	reporting := dates.Midnight(reportingDate)
	windowStart := dates.AddDays(reporting, -windowDays)
	windowEnd := dates.AddDays(reporting, windowDays)

	inWindow := func(d time.Time) bool {
		return !d.Before(windowStart) && !d.After(windowEnd)
	}

	var found []models.AuditFinding
	for _, inv := range invoices {
		recorded := dates.Midnight(inv.RecordingDate)
		shipped := dates.Midnight(inv.ShippingDate)
		if !inWindow(recorded) && !inWindow(shipped) {
			continue
		}

		switch {
		case !recorded.After(reporting) && shipped.After(reporting):
			found = append(found, models.AuditFinding{
				Type:     enums.FindingTypeCutoff,
				Severity: enums.SeverityHigh,
				Reference: fmt.Sprintf("CUTOFF-PREM-%s", inv.InvoiceNo),
				Description: fmt.Sprintf(
					"Premature recognition: invoice %s recorded %s but goods shipped %s (DO %s)",
					inv.InvoiceNo, recorded.Format("2006-01-02"), shipped.Format("2006-01-02"), inv.DeliveryOrderLabel(),
				),
				AmountDifference: inv.Amount,
			})
		case !shipped.After(reporting) && recorded.After(reporting):
			found = append(found, models.AuditFinding{
				Type:     enums.FindingTypeCutoff,
				Severity: enums.SeverityHigh,
				Reference: fmt.Sprintf("CUTOFF-UNREC-%s", inv.InvoiceNo),
				Description: fmt.Sprintf(
					"Unrecorded revenue: goods shipped %s (DO %s) but invoice %s only recorded %s",
					shipped.Format("2006-01-02"), inv.DeliveryOrderLabel(), inv.InvoiceNo, recorded.Format("2006-01-02"),
				),
				AmountDifference: inv.Amount,
			})
		}
	}
	return found
}

// Package confirmations draws the external confirmation sample and tracks
// customer responses against recorded balances.
package confirmations

import (
	"math/rand"
	"sort"

	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// topCount is the number of largest invoices always included in the
// sample before any random selection happens.
const topCount = 3

// Sample selects confirmation targets: the three largest invoices by
// amount, then random picks from the remainder until size is reached.
// Ties keep population order. rng drives the random picks so callers can
// seed for reproducibility.
func Sample(invoices []models.Invoice, customers []models.Customer, size int, rng *rand.Rand) []models.ConfirmationRequest {
	if len(invoices) == 0 || size <= 0 {
		return nil
	}
	if size > len(invoices) {
		size = len(invoices)
	}

	sorted := make([]models.Invoice, len(invoices))
	copy(sorted, invoices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})

	top := topCount
	if top > size {
		top = size
	}
	selected := make([]models.Invoice, 0, size)
	selected = append(selected, sorted[:top]...)

	remaining := sorted[top:]
	extra := size - top
	if extra > 0 && len(remaining) > 0 {
		if extra > len(remaining) {
			extra = len(remaining)
		}
		for _, idx := range rng.Perm(len(remaining))[:extra] {
			selected = append(selected, remaining[idx])
		}
	}

	byCustomerNo := make(map[string]models.Customer, len(customers))
	for _, c := range customers {
		byCustomerNo[c.CustomerNo] = c
	}

	requests := make([]models.ConfirmationRequest, 0, len(selected))
	for _, inv := range selected {
		name, email := "Unknown", "N/A"
		if cust, ok := byCustomerNo[inv.CustomerNo]; ok {
			name = cust.Name
			if cust.Email != nil && *cust.Email != "" {
				email = *cust.Email
			}
		}
		requests = append(requests, models.ConfirmationRequest{
			InvoiceID:      inv.ID,
			InvoiceNo:      inv.InvoiceNo,
			CustomerName:   name,
			CustomerEmail:  email,
			RecordedAmount: inv.Amount,
			Difference:     decimal.Zero,
			Status:         enums.ConfirmationStatusSent,
		})
	}
	return requests
}

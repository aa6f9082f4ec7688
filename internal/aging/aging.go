// Package aging buckets receivables by age and values the loss allowance
// per bucket. The calculation is a pure fold over the invoice population:
// idempotent, order-independent and free of side effects.
package aging

import (
	"time"

	"github.com/angelmondragon/arrecon-backend/pkg/dates"
	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// noFloor marks the first bucket as unbounded below so negative ages
// (invoices dated after the reporting date) still land somewhere.
const noFloor = -1 << 31

// Bucket is one aging band with its accumulated amount and allowance.
type Bucket struct {
	Label           string          `json:"label"`
	MinDays         int             `json:"min_days"`
	MaxDays         *int            `json:"max_days"` // nil means unbounded upward
	Amount          decimal.Decimal `json:"amount"`
	AllowanceRate   decimal.Decimal `json:"allowance_rate"` // percent, 0-100
	AllowanceAmount decimal.Decimal `json:"allowance_amount"`
}

// NetRealizable returns the bucket amount net of its allowance.
func (b Bucket) NetRealizable() decimal.Decimal {
	return b.Amount.Sub(b.AllowanceAmount)
}

// Result carries the five buckets plus the aggregate totals.
type Result struct {
	Buckets        []Bucket        `json:"buckets"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalAllowance decimal.Decimal `json:"total_allowance"`
	NetRealizable  decimal.Decimal `json:"net_realizable"`
}

func intPtr(v int) *int { return &v }

// DefaultBuckets returns the five standard aging bands with their default
// allowance rates. The labels follow the established working-paper format.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{Label: "Belum Jatuh Tempo", MinDays: noFloor, MaxDays: intPtr(0), Amount: decimal.Zero, AllowanceRate: decimal.RequireFromString("0.5"), AllowanceAmount: decimal.Zero},
		{Label: "1-30 Hari", MinDays: 1, MaxDays: intPtr(30), Amount: decimal.Zero, AllowanceRate: decimal.NewFromInt(2), AllowanceAmount: decimal.Zero},
		{Label: "31-60 Hari", MinDays: 31, MaxDays: intPtr(60), Amount: decimal.Zero, AllowanceRate: decimal.NewFromInt(5), AllowanceAmount: decimal.Zero},
		{Label: "61-90 Hari", MinDays: 61, MaxDays: intPtr(90), Amount: decimal.Zero, AllowanceRate: decimal.NewFromInt(15), AllowanceAmount: decimal.Zero},
		{Label: "> 90 Hari", MinDays: 91, MaxDays: nil, Amount: decimal.Zero, AllowanceRate: decimal.NewFromInt(50), AllowanceAmount: decimal.Zero},
	}
}

func (b Bucket) contains(age int) bool {
	if age < b.MinDays {
		return false
	}
	return b.MaxDays == nil || age <= *b.MaxDays
}

// Calculate ages every invoice against the reporting date and accumulates
// amounts into the unique bucket covering that age. rateOverrides maps a
// bucket label to a replacement allowance rate (percent); absent labels keep
// their defaults.
func Calculate(invoices []models.Invoice, reportingDate time.Time, rateOverrides map[string]decimal.Decimal) Result {
	buckets := DefaultBuckets()
	for i := range buckets {
		if rate, ok := rateOverrides[buckets[i].Label]; ok {
			buckets[i].AllowanceRate = rate
		}
	}

	for _, inv := range invoices {
		age := dates.DaysBetween(inv.InvoiceDate, reportingDate)
		for i := range buckets {
			if buckets[i].contains(age) {
				buckets[i].Amount = buckets[i].Amount.Add(inv.Amount)
				break
			}
		}
	}

	result := Result{
		TotalAmount:    decimal.Zero,
		TotalAllowance: decimal.Zero,
	}
	hundred := decimal.NewFromInt(100)
	for i := range buckets {
		buckets[i].AllowanceAmount = buckets[i].Amount.Mul(buckets[i].AllowanceRate).Div(hundred)
		result.TotalAmount = result.TotalAmount.Add(buckets[i].Amount)
		result.TotalAllowance = result.TotalAllowance.Add(buckets[i].AllowanceAmount)
	}
	result.NetRealizable = result.TotalAmount.Sub(result.TotalAllowance)
	result.Buckets = buckets
	return result
}

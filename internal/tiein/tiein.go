// Package tiein reconciles the general-ledger control balance to the
// invoice subledger and, when they disagree, attributes the variance to a
// concrete cause: a round manual journal entry, a double-recorded invoice,
// an invoice with no delivery proof, or revenue shipped but never posted.
// Whatever survives those checks is flagged as an unexplained residual.
package tiein

import (
	"fmt"

	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Params are the thresholds driving the decomposition. Zero values fall
// back to the standard engagement defaults.
type Params struct {
	// Materiality is the absolute variance below which the ledger and
	// subledger are considered tied in.
	Materiality decimal.Decimal
	// Tolerance is the matching slack when pairing a variance against a
	// candidate invoice amount.
	Tolerance decimal.Decimal
	// RoundMultiple is the divisor a positive variance must divide evenly
	// by to be attributed to a manual journal entry.
	RoundMultiple decimal.Decimal
}

// DefaultParams mirrors the standard engagement thresholds.
func DefaultParams() Params {
	return Params{
		Materiality:   decimal.NewFromInt(1_000),
		Tolerance:     decimal.NewFromInt(100),
		RoundMultiple: decimal.NewFromInt(1_000_000),
	}
}

func (p Params) normalized() Params {
	d := DefaultParams()
	if p.Materiality.IsZero() {
		p.Materiality = d.Materiality
	}
	if p.Tolerance.IsZero() {
		p.Tolerance = d.Tolerance
	}
	if p.RoundMultiple.IsZero() {
		p.RoundMultiple = d.RoundMultiple
	}
	return p
}

// ReconciliationItem is one line of the bridging schedule from the ledger
// balance toward the subledger total.
type ReconciliationItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference"`
	RiskTag     string          `json:"risk_tag"`
}

// Result is the outcome of one decomposition run.
type Result struct {
	LedgerBalance  decimal.Decimal      `json:"ledger_balance"`
	SubledgerTotal decimal.Decimal      `json:"subledger_total"`
	Variance       decimal.Decimal      `json:"variance"`
	Matched        bool                 `json:"matched"`
	Findings       []models.AuditFinding `json:"findings"`
	Items          []ReconciliationItem `json:"items"`
	// AdjustedLedger is the ledger balance after applying every
	// reconciliation item.
	AdjustedLedger decimal.Decimal `json:"adjusted_ledger"`
}

func withinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(tolerance)
}

// Decompose runs the cause checks in fixed priority order. A positive
// variance (ledger above subledger) is tested for a manual journal entry,
// then a double recording. A negative variance is tested against invoices
// lacking delivery proof, then against unposted shipped revenue. At most
// one deduction-side candidate is consumed per run; any residual above
// materiality is reported as unexplained.
func Decompose(ledgerBalance decimal.Decimal, invoices []models.Invoice, p Params) Result {
	p = p.normalized()

	subledger := decimal.Zero
	for _, inv := range invoices {
		subledger = subledger.Add(inv.Amount)
	}
	variance := ledgerBalance.Sub(subledger)

	result := Result{
		LedgerBalance:  ledgerBalance,
		SubledgerTotal: subledger,
		Variance:       variance,
	}

	if variance.Abs().LessThanOrEqual(p.Materiality) {
		result.Matched = true
		result.AdjustedLedger = ledgerBalance
		return result
	}

	switch {
	case variance.IsPositive():
		if variance.Mod(p.RoundMultiple).IsZero() {
			result.Findings = append(result.Findings, models.AuditFinding{
				Type:      enums.FindingTypeTieIn,
				Severity:  enums.SeverityHigh,
				Reference: "REC-JE-MANUAL",
				Description: fmt.Sprintf(
					"Round manual journal entry of %s inflating the ledger with no subledger support",
					variance.StringFixed(2),
				),
				AmountDifference: variance,
			})
			result.Items = append(result.Items, ReconciliationItem{
				Description: "Reverse unsupported manual journal entry",
				Amount:      variance.Neg(),
				Reference:   "REC-JE-MANUAL",
				RiskTag:     "High Risk",
			})
			variance = decimal.Zero
		} else if suspect, ok := firstMatching(invoices, variance, p.Tolerance, nil); ok {
			result.Findings = append(result.Findings, models.AuditFinding{
				Type:      enums.FindingTypeTieIn,
				Severity:  enums.SeverityHigh,
				Reference: fmt.Sprintf("REC-DBL-%s", suspect.InvoiceNo),
				Description: fmt.Sprintf(
					"Invoice %s appears recorded twice in the ledger (%s)",
					suspect.InvoiceNo, suspect.Amount.StringFixed(2),
				),
				AmountDifference: suspect.Amount,
			})
			result.Items = append(result.Items, ReconciliationItem{
				Description: fmt.Sprintf("Remove duplicate posting of invoice %s", suspect.InvoiceNo),
				Amount:      suspect.Amount.Neg(),
				Reference:   fmt.Sprintf("REC-DBL-%s", suspect.InvoiceNo),
				RiskTag:     "Error",
			})
			variance = variance.Sub(suspect.Amount)
		}

	case variance.IsNegative():
		remaining := variance.Abs()

		noProof := func(inv models.Invoice) bool { return !inv.HasDeliveryProof() }
		if suspect, ok := firstMatching(invoices, remaining, p.Tolerance, noProof); ok {
			result.Findings = append(result.Findings, models.AuditFinding{
				Type:      enums.FindingTypeTieIn,
				Severity:  enums.SeverityMedium,
				Reference: fmt.Sprintf("REC-INVALID-%s", suspect.InvoiceNo),
				Description: fmt.Sprintf(
					"Invoice %s (%s) has no delivery order and matches the ledger shortfall",
					suspect.InvoiceNo, suspect.Amount.StringFixed(2),
				),
				AmountDifference: suspect.Amount,
			})
			result.Items = append(result.Items, ReconciliationItem{
				Description: fmt.Sprintf("Derecognize invoice %s lacking delivery proof", suspect.InvoiceNo),
				Amount:      suspect.Amount.Neg(),
				Reference:   fmt.Sprintf("REC-INVALID-%s", suspect.InvoiceNo),
				RiskTag:     "3-Way Fail",
			})
			remaining = remaining.Sub(suspect.Amount)
		}

		if remaining.IsPositive() {
			if suspect, ok := firstMatching(invoices, remaining, p.Tolerance, nil); ok {
				result.Findings = append(result.Findings, models.AuditFinding{
					Type:      enums.FindingTypeTieIn,
					Severity:  enums.SeverityHigh,
					Reference: fmt.Sprintf("REC-UNREC-%s", suspect.InvoiceNo),
					Description: fmt.Sprintf(
						"Invoice %s (%s) shipped but never posted to the ledger",
						suspect.InvoiceNo, suspect.Amount.StringFixed(2),
					),
					AmountDifference: suspect.Amount,
				})
				result.Items = append(result.Items, ReconciliationItem{
					Description: fmt.Sprintf("Accrue unposted revenue for invoice %s", suspect.InvoiceNo),
					Amount:      suspect.Amount,
					Reference:   fmt.Sprintf("REC-UNREC-%s", suspect.InvoiceNo),
					RiskTag:     "Cutoff",
				})
				remaining = remaining.Sub(suspect.Amount)
			}
		}

		variance = remaining.Neg()
	}

	if variance.Abs().GreaterThan(p.Materiality) {
		result.Findings = append(result.Findings, models.AuditFinding{
			Type:      enums.FindingTypeTieIn,
			Severity:  enums.SeverityHigh,
			Reference: "REC-UNKNOWN",
			Description: fmt.Sprintf(
				"Unexplained residual variance of %s after cause analysis",
				variance.StringFixed(2),
			),
			AmountDifference: variance,
		})
		result.Items = append(result.Items, ReconciliationItem{
			Description: "Unexplained residual variance pending investigation",
			Amount:      variance.Neg(),
			Reference:   "REC-UNKNOWN",
			RiskTag:     "Unknown",
		})
	}

	result.AdjustedLedger = ledgerBalance
	for _, item := range result.Items {
		result.AdjustedLedger = result.AdjustedLedger.Add(item.Amount)
	}
	return result
}

// firstMatching returns the first invoice, in population order, whose
// amount is within tolerance of target and passes the optional filter.
func firstMatching(invoices []models.Invoice, target, tolerance decimal.Decimal, filter func(models.Invoice) bool) (models.Invoice, bool) {
	for _, inv := range invoices {
		if filter != nil && !filter(inv) {
			continue
		}
		if withinTolerance(inv.Amount, target, tolerance) {
			return inv, true
		}
	}
	return models.Invoice{}, false
}

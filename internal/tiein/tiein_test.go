package tiein

import (
	"strings"
	"testing"

	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

func amt(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func population() []models.Invoice {
	do1, do3 := "DO-001", "DO-003"
	return []models.Invoice{
		{InvoiceNo: "INV-001", Amount: amt(1_452_500), DONumber: &do1},
		{InvoiceNo: "INV-002", Amount: amt(500_000)}, // no delivery proof
		{InvoiceNo: "INV-003", Amount: amt(2_750_000), DONumber: &do3},
	}
}

func subtotal(invoices []models.Invoice) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range invoices {
		total = total.Add(inv.Amount)
	}
	return total
}

func TestDecomposeMatchedWithinMateriality(t *testing.T) {
	invoices := population()
	ledger := subtotal(invoices).Add(amt(999))

	res := Decompose(ledger, invoices, DefaultParams())

	if !res.Matched {
		t.Fatalf("variance below materiality must tie in, got variance %s", res.Variance)
	}
	if len(res.Findings) != 0 || len(res.Items) != 0 {
		t.Errorf("matched run must not produce findings or items")
	}
	if !res.AdjustedLedger.Equal(ledger) {
		t.Errorf("AdjustedLedger = %s, want untouched ledger %s", res.AdjustedLedger, ledger)
	}
}

func TestDecomposeManualJournalEntry(t *testing.T) {
	invoices := population()
	ledger := subtotal(invoices).Add(amt(2_000_000))

	res := Decompose(ledger, invoices, DefaultParams())

	if res.Matched {
		t.Fatal("material variance must not report matched")
	}
	if len(res.Findings) != 1 || res.Findings[0].Reference != "REC-JE-MANUAL" {
		t.Fatalf("findings = %+v, want single REC-JE-MANUAL", res.Findings)
	}
	if !res.Findings[0].AmountDifference.Equal(amt(2_000_000)) {
		t.Errorf("AmountDifference = %s, want 2000000", res.Findings[0].AmountDifference)
	}
	if !res.AdjustedLedger.Equal(res.SubledgerTotal) {
		t.Errorf("AdjustedLedger = %s, want subledger total %s", res.AdjustedLedger, res.SubledgerTotal)
	}
}

func TestDecomposeDoubleRecording(t *testing.T) {
	invoices := population()
	ledger := subtotal(invoices).Add(amt(1_452_500))

	res := Decompose(ledger, invoices, DefaultParams())

	if len(res.Findings) != 1 || res.Findings[0].Reference != "REC-DBL-INV-001" {
		t.Fatalf("findings = %+v, want single REC-DBL-INV-001", res.Findings)
	}
	if len(res.Items) != 1 || !res.Items[0].Amount.Equal(amt(-1_452_500)) {
		t.Fatalf("items = %+v, want single -1452500 adjustment", res.Items)
	}
	if !res.AdjustedLedger.Equal(res.SubledgerTotal) {
		t.Errorf("AdjustedLedger = %s, want %s", res.AdjustedLedger, res.SubledgerTotal)
	}
}

func TestDecomposeManualEntryTakesPriorityOverDouble(t *testing.T) {
	do := "DO-100"
	invoices := []models.Invoice{{InvoiceNo: "INV-100", Amount: amt(3_000_000), DONumber: &do}}
	ledger := subtotal(invoices).Add(amt(3_000_000)) // round multiple AND an invoice amount

	res := Decompose(ledger, invoices, DefaultParams())

	if len(res.Findings) != 1 || res.Findings[0].Reference != "REC-JE-MANUAL" {
		t.Fatalf("round-multiple check runs first, findings = %+v", res.Findings)
	}
}

func TestDecomposeInvoiceWithoutDeliveryProof(t *testing.T) {
	invoices := population()
	ledger := subtotal(invoices).Sub(amt(500_000))

	res := Decompose(ledger, invoices, DefaultParams())

	if len(res.Findings) != 1 {
		t.Fatalf("findings = %+v, want exactly one", res.Findings)
	}
	f := res.Findings[0]
	if f.Reference != "REC-INVALID-INV-002" {
		t.Errorf("reference = %q", f.Reference)
	}
	if !f.AmountDifference.Equal(amt(500_000)) {
		t.Errorf("AmountDifference = %s, want 500000", f.AmountDifference)
	}
	if !strings.Contains(f.Description, "INV-002") {
		t.Errorf("description = %q", f.Description)
	}
}

func TestDecomposeUnpostedRevenue(t *testing.T) {
	do1, do2 := "DO-001", "DO-002"
	invoices := []models.Invoice{
		{InvoiceNo: "INV-001", Amount: amt(1_000_000), DONumber: &do1},
		{InvoiceNo: "INV-002", Amount: amt(800_000), DONumber: &do2},
	}
	ledger := subtotal(invoices).Sub(amt(800_000))

	res := Decompose(ledger, invoices, DefaultParams())

	if len(res.Findings) != 1 || res.Findings[0].Reference != "REC-UNREC-INV-002" {
		t.Fatalf("findings = %+v, want single REC-UNREC-INV-002", res.Findings)
	}
	if len(res.Items) != 1 || !res.Items[0].Amount.Equal(amt(800_000)) {
		t.Fatalf("accrual item must be positive, items = %+v", res.Items)
	}
	if !res.AdjustedLedger.Equal(res.SubledgerTotal) {
		t.Errorf("AdjustedLedger = %s, want %s", res.AdjustedLedger, res.SubledgerTotal)
	}
}

func TestDecomposeUnexplainedResidual(t *testing.T) {
	invoices := population()
	ledger := subtotal(invoices).Add(amt(123_456))

	res := Decompose(ledger, invoices, DefaultParams())

	if len(res.Findings) != 1 || res.Findings[0].Reference != "REC-UNKNOWN" {
		t.Fatalf("findings = %+v, want single REC-UNKNOWN", res.Findings)
	}
	if !res.Findings[0].AmountDifference.Equal(amt(123_456)) {
		t.Errorf("AmountDifference = %s, want 123456", res.Findings[0].AmountDifference)
	}
	if !res.AdjustedLedger.Equal(res.SubledgerTotal) {
		t.Errorf("residual item must bridge to the subledger, got %s", res.AdjustedLedger)
	}
}

func TestDecomposeToleranceMatching(t *testing.T) {
	invoices := population()
	// 50 inside the default tolerance of 100.
	ledger := subtotal(invoices).Add(amt(1_452_550))

	res := Decompose(ledger, invoices, DefaultParams())

	if len(res.Findings) != 1 || res.Findings[0].Reference != "REC-DBL-INV-001" {
		t.Fatalf("near-match within tolerance must pair, findings = %+v", res.Findings)
	}
}

func TestDecomposeEmptyPopulation(t *testing.T) {
	res := Decompose(amt(5_000_000), nil, DefaultParams())

	if res.Matched {
		t.Fatal("material variance against an empty subledger must not match")
	}
	// 5,000,000 divides the round multiple, so it reads as a manual entry.
	if len(res.Findings) != 1 || res.Findings[0].Reference != "REC-JE-MANUAL" {
		t.Fatalf("findings = %+v", res.Findings)
	}
	if !res.AdjustedLedger.IsZero() {
		t.Errorf("AdjustedLedger = %s, want 0", res.AdjustedLedger)
	}
}

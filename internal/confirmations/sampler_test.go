package confirmations

import (
	"math/rand"
	"testing"

	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func samplePopulation() ([]models.Invoice, []models.Customer) {
	amounts := []int64{5_000_000, 900_000, 4_200_000, 150_000, 3_100_000, 700_000, 250_000}
	invoices := make([]models.Invoice, 0, len(amounts))
	for i, amount := range amounts {
		invoices = append(invoices, models.Invoice{
			ID:         uuid.New(),
			InvoiceNo:  string(rune('A' + i)),
			CustomerNo: "C1",
			Amount:     decimal.NewFromInt(amount),
		})
	}
	email := "billing@alpha.example"
	customers := []models.Customer{{CustomerNo: "C1", Name: "Alpha Trading", Email: &email}}
	return invoices, customers
}

func TestSampleAlwaysIncludesTopThree(t *testing.T) {
	invoices, customers := samplePopulation()

	for seed := int64(1); seed <= 20; seed++ {
		sample := Sample(invoices, customers, 5, rand.New(rand.NewSource(seed)))
		if len(sample) != 5 {
			t.Fatalf("seed %d: sample size = %d, want 5", seed, len(sample))
		}
		got := map[string]bool{}
		for _, req := range sample {
			got[req.InvoiceNo] = true
		}
		for _, top := range []string{"A", "C", "E"} {
			if !got[top] {
				t.Fatalf("seed %d: top invoice %s missing from sample", seed, top)
			}
		}
	}
}

func TestSampleSeededDeterminism(t *testing.T) {
	invoices, customers := samplePopulation()

	first := Sample(invoices, customers, 5, rand.New(rand.NewSource(42)))
	second := Sample(invoices, customers, 5, rand.New(rand.NewSource(42)))

	for i := range first {
		if first[i].InvoiceNo != second[i].InvoiceNo {
			t.Fatalf("same seed must draw the same sample: %s vs %s at %d", first[i].InvoiceNo, second[i].InvoiceNo, i)
		}
	}
}

func TestSampleClampsToPopulation(t *testing.T) {
	invoices, customers := samplePopulation()

	sample := Sample(invoices[:2], customers, 5, rand.New(rand.NewSource(1)))
	if len(sample) != 2 {
		t.Fatalf("sample size = %d, want entire population of 2", len(sample))
	}
}

func TestSampleRequestShape(t *testing.T) {
	invoices, customers := samplePopulation()

	sample := Sample(invoices, customers, 3, rand.New(rand.NewSource(1)))
	for _, req := range sample {
		if req.Status != enums.ConfirmationStatusSent {
			t.Errorf("status = %s, want sent", req.Status)
		}
		if !req.Difference.IsZero() {
			t.Errorf("fresh request difference = %s", req.Difference)
		}
		if req.CustomerName != "Alpha Trading" || req.CustomerEmail != "billing@alpha.example" {
			t.Errorf("customer lookup failed: %s / %s", req.CustomerName, req.CustomerEmail)
		}
	}
}

func TestSampleUnknownCustomerFallback(t *testing.T) {
	invoices, _ := samplePopulation()

	sample := Sample(invoices, nil, 3, rand.New(rand.NewSource(1)))
	if sample[0].CustomerName != "Unknown" || sample[0].CustomerEmail != "N/A" {
		t.Errorf("fallback identity = %s / %s", sample[0].CustomerName, sample[0].CustomerEmail)
	}
}

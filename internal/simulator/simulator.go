// Package simulator produces a realistic synthetic engagement dataset:
// a base invoice population that always reconciles, plus coin-flip
// injection of cutoff misstatements and a sabotaged ledger balance for
// the procedures to catch. All randomness flows through the injected
// source so a seed reproduces the dataset exactly.
package simulator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Dataset is one generated engagement snapshot.
type Dataset struct {
	Invoices      []models.Invoice
	Customers     []models.Customer
	LedgerBalance decimal.Decimal
	AccountCode   string
	AccountName   string
	AsOfDate      time.Time
	// CutoffInjected and LedgerSabotaged describe which defects this
	// dataset carries, for the caller's summary.
	CutoffInjected  bool
	LedgerSabotaged bool
}

type profile struct {
	no    string
	name  string
	email string
	tier  enums.RiskTier
}

var customerProfiles = []profile{
	{"C-001", "PT Sinar Jaya Abadi", "finance@sinarjaya.co.id", enums.RiskTierLow},
	{"C-002", "CV Maju Mundur", "accounting@majumundur.com", enums.RiskTierMedium},
	{"C-003", "Toko Bangunan Sejahtera", "owner@tokosejahtera.com", enums.RiskTierHigh},
	{"C-004", "PT Teknindo Solusi", "ap@teknindo.com", enums.RiskTierLow},
	{"C-005", "UD Bali Makmur", "admin@balimakmur.net", enums.RiskTierMedium},
	{"C-006", "PT Global Ekspor", "exim@globalekspor.id", enums.RiskTierHigh},
}

var itemCatalog = []string{
	"Laptop Business Series",
	"Server Rack 42U",
	"Switch Catalyst 24 Port",
	"Kabel Fiber Optic 1000m",
	"Lisensi Software Enterprise",
	"Jasa Konsultasi Implementasi",
	"Sparepart Mesin Produksi",
}

func strPtr(s string) *string { return &s }

// Generate builds a dataset for the given fiscal year. The base
// population of 60-90 invoices is fully documented and clean; the two
// coin flips decide whether cutoff pairs and a ledger misstatement are
// layered on top.
func Generate(year int, rng *rand.Rand) Dataset {
	customers := make([]models.Customer, 0, len(customerProfiles))
	for _, p := range customerProfiles {
		email := p.email
		customers = append(customers, models.Customer{
			CustomerNo: p.no,
			Name:       p.name,
			Email:      &email,
			RiskTier:   p.tier,
		})
	}

	periodEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	shortYear := year % 100

	count := 60 + rng.Intn(30)
	invoices := make([]models.Invoice, 0, count+2)
	for i := 0; i < count; i++ {
		invoiceDate := periodEnd.AddDate(0, 0, -rng.Intn(120))
		cust := customerProfiles[rng.Intn(len(customerProfiles))]
		amount := decimal.NewFromInt(int64(rng.Intn(45_000))*1_000 + 2_500_000)

		suffix := 1000 + i
		invoices = append(invoices, models.Invoice{
			InvoiceNo:     fmt.Sprintf("INV/%d/%d", year, suffix),
			CustomerNo:    cust.no,
			Amount:        amount,
			InvoiceDate:   invoiceDate,
			DueDate:       invoiceDate.AddDate(0, 0, 30),
			RecordingDate: invoiceDate,
			ShippingDate:  invoiceDate,
			SONumber:      strPtr(fmt.Sprintf("SO-%d-%d", year, suffix)),
			DONumber:      strPtr(fmt.Sprintf("DO-%d-%d", year, suffix)),
			PONumber:      strPtr(fmt.Sprintf("PO-%s-%d", cust.no[2:], rng.Intn(900)+100)),
			TaxInvoiceNo:  strPtr(fmt.Sprintf("010.000-%02d.%d00", shortYear, suffix)),
			Description:   strPtr(fmt.Sprintf("%s - Qty %d", itemCatalog[rng.Intn(len(itemCatalog))], rng.Intn(50)+1)),
			Currency:      "IDR",
		})
	}

	dataset := Dataset{
		Customers:   customers,
		AccountCode: "1-1200",
		AccountName: "Piutang Usaha - Pihak Ketiga",
		AsOfDate:    periodEnd,
	}

	if rng.Float64() > 0.5 {
		dataset.CutoffInjected = true
		// Premature: booked in December, shipped the following January.
		invoices = append(invoices, models.Invoice{
			InvoiceNo:     fmt.Sprintf("INV/%d/9991", year),
			CustomerNo:    customerProfiles[0].no,
			Amount:        decimal.NewFromInt(85_500_000),
			InvoiceDate:   time.Date(year, time.December, 30, 0, 0, 0, 0, time.UTC),
			DueDate:       time.Date(year+1, time.January, 30, 0, 0, 0, 0, time.UTC),
			RecordingDate: time.Date(year, time.December, 30, 0, 0, 0, 0, time.UTC),
			ShippingDate:  time.Date(year+1, time.January, 4, 0, 0, 0, 0, time.UTC),
			SONumber:      strPtr(fmt.Sprintf("SO-%d-9991", year)),
			DONumber:      strPtr(fmt.Sprintf("DO-%d-0004", year+1)),
			PONumber:      strPtr("PO-EXT-001"),
			TaxInvoiceNo:  strPtr(fmt.Sprintf("010.000-%02d.9991", shortYear)),
			Description:   strPtr("Pengiriman Akhir Tahun (Pending)"),
			Currency:      "IDR",
		})
		// Unrecorded: shipped in December, booked the following January.
		invoices = append(invoices, models.Invoice{
			InvoiceNo:     fmt.Sprintf("INV/%d/9992", year),
			CustomerNo:    customerProfiles[1].no,
			Amount:        decimal.NewFromInt(62_000_000),
			InvoiceDate:   time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC),
			DueDate:       time.Date(year+1, time.January, 28, 0, 0, 0, 0, time.UTC),
			RecordingDate: time.Date(year+1, time.January, 3, 0, 0, 0, 0, time.UTC),
			ShippingDate:  time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC),
			SONumber:      strPtr(fmt.Sprintf("SO-%d-9992", year)),
			DONumber:      strPtr(fmt.Sprintf("DO-%d-9992", year)),
			PONumber:      strPtr("PO-EXT-002"),
			TaxInvoiceNo:  strPtr(fmt.Sprintf("010.000-%02d.9992", shortYear)),
			Description:   strPtr("Barang Terkirim Belum Tagih"),
			Currency:      "IDR",
		})
	} else {
		invoices = append(invoices, models.Invoice{
			InvoiceNo:     fmt.Sprintf("INV/%d/9995", year),
			CustomerNo:    customerProfiles[0].no,
			Amount:        decimal.NewFromInt(90_000_000),
			InvoiceDate:   time.Date(year, time.December, 30, 0, 0, 0, 0, time.UTC),
			DueDate:       time.Date(year+1, time.January, 30, 0, 0, 0, 0, time.UTC),
			RecordingDate: time.Date(year, time.December, 30, 0, 0, 0, 0, time.UTC),
			ShippingDate:  time.Date(year, time.December, 30, 0, 0, 0, 0, time.UTC),
			SONumber:      strPtr(fmt.Sprintf("SO-%d-9995", year)),
			DONumber:      strPtr(fmt.Sprintf("DO-%d-9995", year)),
			PONumber:      strPtr("PO-CLEAN-01"),
			TaxInvoiceNo:  strPtr(fmt.Sprintf("010.000-%02d.9995", shortYear)),
			Description:   strPtr("Penjualan Rutin Q4"),
			Currency:      "IDR",
		})
	}

	trueTotal := decimal.Zero
	for _, inv := range invoices {
		trueTotal = trueTotal.Add(inv.Amount)
	}
	balance := trueTotal

	if rng.Float64() > 0.5 {
		dataset.LedgerSabotaged = true
		if rng.Float64() > 0.6 {
			balance = balance.Sub(invoices[rng.Intn(len(invoices))].Amount)
		}
		if rng.Float64() > 0.6 {
			balance = balance.Add(invoices[rng.Intn(len(invoices))].Amount)
		}
		if balance.Equal(trueTotal) {
			balance = balance.Add(decimal.NewFromInt(10_000_000))
		}
	}

	dataset.Invoices = invoices
	dataset.LedgerBalance = balance
	return dataset
}

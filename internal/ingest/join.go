// Package ingest turns the three uploaded source extracts (Finance,
// Warehouse, Sales) into one unified invoice population. Finance is the
// authoritative spine; Warehouse and Sales rows only enrich invoices the
// Finance extract already names.
package ingest

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/angelmondragon/arrecon-backend/pkg/errors"

	"github.com/angelmondragon/arrecon-backend/pkg/dates"
	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/angelmondragon/arrecon-backend/pkg/money"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// FinanceRow is one line of the AR subledger extract. Amount and date
// fields arrive untyped because upstream exports disagree on formats.
type FinanceRow struct {
	InvoiceID     string `json:"invoice_id"`
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	Amount        any    `json:"amount"`
	InvoiceDate   any    `json:"invoice_date"`
	DueDate       any    `json:"due_date"`
	RecordingDate any    `json:"recording_date"`
}

// WarehouseRow is one delivery-order line from the logistics extract.
type WarehouseRow struct {
	DeliveryOrderNo string `json:"delivery_order_no"`
	InvoiceRef      any    `json:"invoice_ref"`
	ShippingDate    any    `json:"shipping_date"`
}

// SalesRow is one sales-order line from the commercial extract.
type SalesRow struct {
	SalesOrderNo string `json:"sales_order_no"`
	InvoiceRef   any    `json:"invoice_ref"`
	PONumber     string `json:"po_number"`
	TaxInvoiceNo string `json:"tax_invoice_no"`
	Description  string `json:"description"`
}

// JoinInput bundles the three extracts plus the fiscal year used as the
// fallback period start for unparseable invoice dates.
type JoinInput struct {
	Finance    []FinanceRow
	Warehouse  []WarehouseRow
	Sales      []SalesRow
	FiscalYear int
}

// JoinWarnings counts data-quality defects the join tolerated instead of
// rejecting. They surface to the caller but never abort the run.
type JoinWarnings struct {
	UnparsedAmounts  int
	UnparsedDates    int
	GeneratedIDs     int
	MissingWarehouse int
	MissingSales     int
}

func (w JoinWarnings) err() error {
	var errs error
	if w.UnparsedAmounts > 0 {
		errs = multierr.Append(errs, fmt.Errorf("%d amounts defaulted to zero", w.UnparsedAmounts))
	}
	if w.UnparsedDates > 0 {
		errs = multierr.Append(errs, fmt.Errorf("%d dates fell back to the period start", w.UnparsedDates))
	}
	if w.GeneratedIDs > 0 {
		errs = multierr.Append(errs, fmt.Errorf("%d invoices had no identifier and received a generated one", w.GeneratedIDs))
	}
	return errs
}

// JoinResult is the unified population plus its data-quality ledger.
type JoinResult struct {
	Invoices  []models.Invoice
	Customers []models.Customer
	// DocumentMatchRate is the percentage of invoices corroborated by a
	// delivery order. Zero when no Warehouse extract was supplied at all.
	DocumentMatchRate decimal.Decimal
	Warnings          JoinWarnings
	// WarningDetail aggregates the tolerated defects, nil when clean.
	WarningDetail error
}

// joinKey coerces untyped invoice references so "1001", 1001 and 1001.0
// all collide. Spreadsheet exports flip between those freely.
func joinKey(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return decimal.NewFromFloat(v).String()
	case float32:
		return decimal.NewFromFloat32(v).String()
	case int:
		return decimal.NewFromInt(int64(v)).String()
	case int64:
		return decimal.NewFromInt(v).String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Join runs the three-way match. Finance rows drive the output one to
// one; the first Warehouse and Sales row matching an invoice reference
// wins and the rest are ignored.
func Join(input JoinInput) (JoinResult, error) {
	if len(input.Finance) == 0 {
		return JoinResult{}, apperrors.New(apperrors.CodeValidation, "finance extract is required and was empty")
	}

	year := input.FiscalYear
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	periodStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

	warehouseByRef := make(map[string]WarehouseRow, len(input.Warehouse))
	for _, row := range input.Warehouse {
		key := joinKey(row.InvoiceRef)
		if key == "" {
			continue
		}
		if _, exists := warehouseByRef[key]; !exists {
			warehouseByRef[key] = row
		}
	}
	salesByRef := make(map[string]SalesRow, len(input.Sales))
	for _, row := range input.Sales {
		key := joinKey(row.InvoiceRef)
		if key == "" {
			continue
		}
		if _, exists := salesByRef[key]; !exists {
			salesByRef[key] = row
		}
	}

	var (
		result      JoinResult
		withProof   int
		customerSet = map[string]bool{}
	)

	for i, row := range input.Finance {
		invoiceNo := strings.TrimSpace(row.InvoiceID)
		if invoiceNo == "" {
			result.Warnings.GeneratedIDs++
			invoiceNo = fmt.Sprintf("INV-GEN-%04d", i+1)
		}

		amount, ok := money.Parse(row.Amount)
		if !ok {
			result.Warnings.UnparsedAmounts++
		}

		invoiceDate, ok := dates.Parse(row.InvoiceDate)
		if !ok {
			result.Warnings.UnparsedDates++
			invoiceDate = periodStart
		}
		dueDate, ok := dates.Parse(row.DueDate)
		if !ok {
			dueDate = invoiceDate
		}
		recordingDate, ok := dates.Parse(row.RecordingDate)
		if !ok {
			recordingDate = invoiceDate
		}

		inv := models.Invoice{
			InvoiceNo:     invoiceNo,
			CustomerNo:    strings.TrimSpace(row.CustomerID),
			Amount:        amount,
			InvoiceDate:   invoiceDate,
			DueDate:       dueDate,
			RecordingDate: recordingDate,
			Currency:      "IDR",
		}

		key := joinKey(row.InvoiceID)
		if wh, found := warehouseByRef[key]; found && key != "" {
			do := strings.TrimSpace(wh.DeliveryOrderNo)
			if do != "" {
				inv.DONumber = &do
				withProof++
			}
			if shipped, ok := dates.Parse(wh.ShippingDate); ok {
				inv.ShippingDate = shipped
			} else {
				inv.ShippingDate = invoiceDate
				inv.ShippingDateAssumed = true
			}
		} else {
			result.Warnings.MissingWarehouse++
			inv.ShippingDate = invoiceDate
			inv.ShippingDateAssumed = true
		}

		if sales, found := salesByRef[key]; found && key != "" {
			if so := strings.TrimSpace(sales.SalesOrderNo); so != "" {
				inv.SONumber = &so
			}
			if po := strings.TrimSpace(sales.PONumber); po != "" {
				inv.PONumber = &po
			}
			if tax := strings.TrimSpace(sales.TaxInvoiceNo); tax != "" {
				inv.TaxInvoiceNo = &tax
			}
			if desc := strings.TrimSpace(sales.Description); desc != "" {
				inv.Description = &desc
			}
		} else {
			result.Warnings.MissingSales++
		}

		result.Invoices = append(result.Invoices, inv)

		customerNo := strings.TrimSpace(row.CustomerID)
		if customerNo != "" && !customerSet[customerNo] {
			customerSet[customerNo] = true
			name := strings.TrimSpace(row.CustomerName)
			if name == "" {
				name = "Customer " + customerNo
			}
			result.Customers = append(result.Customers, models.Customer{
				CustomerNo: customerNo,
				Name:       name,
				RiskTier:   enums.RiskTierMedium,
			})
		}
	}

	if len(input.Warehouse) > 0 {
		rate := decimal.NewFromInt(int64(withProof)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(len(result.Invoices))))
		result.DocumentMatchRate = rate.Round(2)
	}

	result.WarningDetail = result.Warnings.err()
	return result, nil
}

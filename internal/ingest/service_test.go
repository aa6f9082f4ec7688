package ingest

import (
	"context"
	"io"
	"testing"
	"time"

	apperrors "github.com/angelmondragon/arrecon-backend/pkg/errors"

	"github.com/angelmondragon/arrecon-backend/internal/auditlog"
	"github.com/angelmondragon/arrecon-backend/internal/engagements"
	"github.com/angelmondragon/arrecon-backend/internal/invoices"
	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/angelmondragon/arrecon-backend/pkg/logger"
	"github.com/angelmondragon/arrecon-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeEngagementsRepo struct {
	engagement    *models.Engagement
	matchRate     float64
	ledgerSummary *models.LedgerSummary
}

func (f *fakeEngagementsRepo) WithTx(tx *gorm.DB) engagements.Repository { return f }

func (f *fakeEngagementsRepo) Create(ctx context.Context, engagement *models.Engagement) error {
	return nil
}

func (f *fakeEngagementsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error) {
	if f.engagement == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.engagement, nil
}

func (f *fakeEngagementsRepo) List(ctx context.Context) ([]models.Engagement, error) {
	return nil, nil
}

func (f *fakeEngagementsRepo) UpdateMatchRate(ctx context.Context, id uuid.UUID, rate float64) error {
	f.matchRate = rate
	return nil
}

func (f *fakeEngagementsRepo) UpsertLedgerSummary(ctx context.Context, summary *models.LedgerSummary) error {
	f.ledgerSummary = summary
	return nil
}

func (f *fakeEngagementsRepo) GetLedgerSummary(ctx context.Context, engagementID uuid.UUID) (*models.LedgerSummary, error) {
	if f.ledgerSummary == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.ledgerSummary, nil
}

type fakeInvoicesRepo struct {
	invoices  []models.Invoice
	customers []models.Customer
}

func (f *fakeInvoicesRepo) WithTx(tx *gorm.DB) invoices.Repository { return f }

func (f *fakeInvoicesRepo) ReplaceSnapshot(ctx context.Context, engagementID uuid.UUID, invs []models.Invoice, custs []models.Customer) error {
	f.invoices = invs
	f.customers = custs
	return nil
}

func (f *fakeInvoicesRepo) ListByEngagement(ctx context.Context, engagementID uuid.UUID) ([]models.Invoice, error) {
	return f.invoices, nil
}

func (f *fakeInvoicesRepo) ListCustomers(ctx context.Context, engagementID uuid.UUID) ([]models.Customer, error) {
	return f.customers, nil
}

func (f *fakeInvoicesRepo) CountByEngagement(ctx context.Context, engagementID uuid.UUID) (int64, error) {
	return int64(len(f.invoices)), nil
}

type fakeTrail struct {
	entries []auditlog.Entry
}

func (f *fakeTrail) Record(ctx context.Context, entry auditlog.Entry) {
	f.entries = append(f.entries, entry)
}

func (f *fakeTrail) List(ctx context.Context, engagementID uuid.UUID, params pagination.Params) ([]models.AuditLogEntry, string, error) {
	return nil, "", nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testEngagement() *models.Engagement {
	return &models.Engagement{
		ID:            uuid.New(),
		ClientName:    "PT Maju Bersama",
		FiscalYear:    "2023",
		ReportingDate: time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestService_IngestPersistsPopulation(t *testing.T) {
	engRepo := &fakeEngagementsRepo{engagement: testEngagement()}
	invRepo := &fakeInvoicesRepo{}
	trail := &fakeTrail{}

	svc, err := NewService(engRepo, invRepo, trail, testLogger())
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	input := IngestInput{
		Finance: []FinanceRow{
			{InvoiceID: "INV-1", CustomerID: "C1", CustomerName: "Alpha", Amount: "1,000,000", InvoiceDate: "2023-11-01"},
			{InvoiceID: "INV-2", CustomerID: "C2", CustomerName: "Beta", Amount: 500000.0, InvoiceDate: "2023-12-01"},
		},
		Warehouse: []WarehouseRow{
			{DeliveryOrderNo: "DO-1", InvoiceRef: "INV-1", ShippingDate: "2023-11-02"},
		},
		LedgerBalance: "1,500,000",
	}

	res, err := svc.Ingest(context.Background(), engRepo.engagement.ID, input)
	if err != nil {
		t.Fatalf("Ingest error: %v", err)
	}

	if res.InvoiceCount != 2 || res.CustomerCount != 2 {
		t.Errorf("counts = %d invoices / %d customers", res.InvoiceCount, res.CustomerCount)
	}
	if len(invRepo.invoices) != 2 {
		t.Fatalf("snapshot holds %d invoices", len(invRepo.invoices))
	}
	if engRepo.matchRate != 50 {
		t.Errorf("match rate = %v, want 50", engRepo.matchRate)
	}
	if !res.LedgerRecorded || engRepo.ledgerSummary == nil {
		t.Fatal("ledger summary must be recorded")
	}
	if !engRepo.ledgerSummary.Balance.Equal(decimal.NewFromInt(1_500_000)) {
		t.Errorf("ledger balance = %s", engRepo.ledgerSummary.Balance)
	}
	if len(trail.entries) != 1 {
		t.Errorf("expected one audit trail entry, got %d", len(trail.entries))
	}
}

func TestService_IngestUnknownEngagement(t *testing.T) {
	svc, _ := NewService(&fakeEngagementsRepo{}, &fakeInvoicesRepo{}, &fakeTrail{}, testLogger())

	_, err := svc.Ingest(context.Background(), uuid.New(), IngestInput{
		Finance: []FinanceRow{{InvoiceID: "INV-1", CustomerID: "C1", Amount: 1}},
	})
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestService_IngestRejectsBadLedgerBalance(t *testing.T) {
	engRepo := &fakeEngagementsRepo{engagement: testEngagement()}
	svc, _ := NewService(engRepo, &fakeInvoicesRepo{}, &fakeTrail{}, testLogger())

	_, err := svc.Ingest(context.Background(), engRepo.engagement.ID, IngestInput{
		Finance:       []FinanceRow{{InvoiceID: "INV-1", CustomerID: "C1", Amount: 1, InvoiceDate: "2023-01-01"}},
		LedgerBalance: "not a balance",
	})
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

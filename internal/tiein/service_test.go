package tiein

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/angelmondragon/arrecon-backend/pkg/errors"

	"github.com/angelmondragon/arrecon-backend/internal/auditlog"
	"github.com/angelmondragon/arrecon-backend/internal/engagements"
	"github.com/angelmondragon/arrecon-backend/internal/findings"
	"github.com/angelmondragon/arrecon-backend/internal/invoices"
	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/angelmondragon/arrecon-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeEngagementsRepo struct {
	engagement *models.Engagement
	summary    *models.LedgerSummary
}

func (f *fakeEngagementsRepo) WithTx(tx *gorm.DB) engagements.Repository { return f }
func (f *fakeEngagementsRepo) Create(ctx context.Context, e *models.Engagement) error {
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
	return nil
}
func (f *fakeEngagementsRepo) UpsertLedgerSummary(ctx context.Context, s *models.LedgerSummary) error {
	return nil
}
func (f *fakeEngagementsRepo) GetLedgerSummary(ctx context.Context, id uuid.UUID) (*models.LedgerSummary, error) {
	if f.summary == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.summary, nil
}

type fakeInvoicesRepo struct {
	population []models.Invoice
}

func (f *fakeInvoicesRepo) WithTx(tx *gorm.DB) invoices.Repository { return f }
func (f *fakeInvoicesRepo) ReplaceSnapshot(ctx context.Context, id uuid.UUID, invs []models.Invoice, custs []models.Customer) error {
	return nil
}
func (f *fakeInvoicesRepo) ListByEngagement(ctx context.Context, id uuid.UUID) ([]models.Invoice, error) {
	return f.population, nil
}
func (f *fakeInvoicesRepo) ListCustomers(ctx context.Context, id uuid.UUID) ([]models.Customer, error) {
	return nil, nil
}
func (f *fakeInvoicesRepo) CountByEngagement(ctx context.Context, id uuid.UUID) (int64, error) {
	return int64(len(f.population)), nil
}

type fakeFindingsRepo struct {
	replacedType enums.FindingType
	replaced     []models.AuditFinding
	calls        int
}

func (f *fakeFindingsRepo) WithTx(tx *gorm.DB) findings.Repository { return f }
func (f *fakeFindingsRepo) ReplaceByType(ctx context.Context, id uuid.UUID, t enums.FindingType, batch []models.AuditFinding) error {
	f.replacedType = t
	f.replaced = batch
	f.calls++
	return nil
}
func (f *fakeFindingsRepo) List(ctx context.Context, id uuid.UUID, filter findings.ListFilter, params pagination.Params) ([]models.AuditFinding, string, error) {
	return f.replaced, "", nil
}
func (f *fakeFindingsRepo) CountByType(ctx context.Context, id uuid.UUID) (map[enums.FindingType]int64, error) {
	return nil, nil
}

type fakeTrail struct {
	entries []auditlog.Entry
}

func (f *fakeTrail) Record(ctx context.Context, entry auditlog.Entry) {
	f.entries = append(f.entries, entry)
}
func (f *fakeTrail) List(ctx context.Context, id uuid.UUID, params pagination.Params) ([]models.AuditLogEntry, string, error) {
	return nil, "", nil
}

func testSetup(balance decimal.Decimal, population []models.Invoice) (*fakeEngagementsRepo, *fakeInvoicesRepo, *fakeFindingsRepo, *fakeTrail) {
	engagement := &models.Engagement{
		ID:            uuid.New(),
		FiscalYear:    "2023",
		ReportingDate: time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	return &fakeEngagementsRepo{
			engagement: engagement,
			summary: &models.LedgerSummary{
				EngagementID: engagement.ID,
				AccountCode:  "1-1200",
				AccountName:  "Accounts Receivable - Trade",
				Balance:      balance,
			},
		},
		&fakeInvoicesRepo{population: population},
		&fakeFindingsRepo{},
		&fakeTrail{}
}

func TestService_RunStoresTieInFindings(t *testing.T) {
	invoices := population()
	balance := subtotal(invoices).Add(amt(2_000_000))
	engRepo, invRepo, findRepo, trail := testSetup(balance, invoices)

	svc, err := NewService(engRepo, invRepo, findRepo, trail, nil, DefaultParams())
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	res, err := svc.Run(context.Background(), engRepo.engagement.ID)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.Matched {
		t.Fatal("material variance must not match")
	}
	if findRepo.replacedType != enums.FindingTypeTieIn || findRepo.calls != 1 {
		t.Errorf("replace calls = %d for type %s", findRepo.calls, findRepo.replacedType)
	}
	if len(findRepo.replaced) != 1 || findRepo.replaced[0].Reference != "REC-JE-MANUAL" {
		t.Errorf("stored findings = %+v", findRepo.replaced)
	}
	if len(trail.entries) != 1 {
		t.Errorf("trail entries = %d", len(trail.entries))
	}
}

func TestService_RunRequiresLedgerSummary(t *testing.T) {
	engRepo, invRepo, findRepo, trail := testSetup(amt(0), nil)
	engRepo.summary = nil

	svc, _ := NewService(engRepo, invRepo, findRepo, trail, nil, DefaultParams())

	_, err := svc.Run(context.Background(), engRepo.engagement.ID)
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeStateConflict {
		t.Fatalf("expected state-conflict error, got %v", err)
	}
	if findRepo.calls != 0 {
		t.Error("findings must not change when the run aborts")
	}
}

func TestService_RunIdempotent(t *testing.T) {
	invoices := population()
	balance := subtotal(invoices).Add(amt(1_452_500))
	engRepo, invRepo, findRepo, trail := testSetup(balance, invoices)

	svc, _ := NewService(engRepo, invRepo, findRepo, trail, nil, DefaultParams())

	for i := 0; i < 2; i++ {
		if _, err := svc.Run(context.Background(), engRepo.engagement.ID); err != nil {
			t.Fatalf("run %d error: %v", i+1, err)
		}
	}
	if findRepo.calls != 2 {
		t.Fatalf("ReplaceByType calls = %d", findRepo.calls)
	}
	if len(findRepo.replaced) != 1 || findRepo.replaced[0].Reference != "REC-DBL-INV-001" {
		t.Errorf("re-run must leave the same single finding, got %+v", findRepo.replaced)
	}
}

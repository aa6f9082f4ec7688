package cutoff

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/arrecon-backend/internal/auditlog"
	"github.com/angelmondragon/arrecon-backend/internal/engagements"
	"github.com/angelmondragon/arrecon-backend/internal/findings"
	"github.com/angelmondragon/arrecon-backend/internal/invoices"
	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/angelmondragon/arrecon-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeEngagementsRepo struct {
	engagement *models.Engagement
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
	return nil, gorm.ErrRecordNotFound
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

func TestService_RunReplacesCutoffFindings(t *testing.T) {
	engagement := &models.Engagement{
		ID:            uuid.New(),
		FiscalYear:    "2023",
		ReportingDate: time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	findingsRepo := &fakeFindingsRepo{}
	trail := &fakeTrail{}

	invoicesRepo := &fakeInvoicesRepo{population: []models.Invoice{
		cutoffInvoice("INV-P1", d(2023, time.December, 30), d(2024, time.January, 3)),
		cutoffInvoice("INV-OK", d(2023, time.December, 1), d(2023, time.December, 2)),
	}}

	svc, err := NewService(&fakeEngagementsRepo{engagement: engagement}, invoicesRepo, findingsRepo, trail, nil, 0)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	res, err := svc.Run(context.Background(), engagement.ID)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.WindowDays != DefaultWindowDays {
		t.Errorf("WindowDays = %d", res.WindowDays)
	}
	if len(res.Findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(res.Findings))
	}
	if findingsRepo.replacedType != enums.FindingTypeCutoff {
		t.Errorf("replaced type = %s", findingsRepo.replacedType)
	}
	if findingsRepo.calls != 1 {
		t.Errorf("ReplaceByType calls = %d", findingsRepo.calls)
	}
	if len(trail.entries) != 1 || trail.entries[0].Category != enums.AuditLogCategoryProcedure {
		t.Errorf("trail entries = %+v", trail.entries)
	}
}

func TestService_RunCleanPopulationStillReplaces(t *testing.T) {
	engagement := &models.Engagement{
		ID:            uuid.New(),
		ReportingDate: time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	findingsRepo := &fakeFindingsRepo{}

	svc, _ := NewService(&fakeEngagementsRepo{engagement: engagement}, &fakeInvoicesRepo{}, findingsRepo, &fakeTrail{}, nil, 7)

	if _, err := svc.Run(context.Background(), engagement.ID); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if findingsRepo.calls != 1 {
		t.Fatal("an empty result must still clear prior findings")
	}
	if len(findingsRepo.replaced) != 0 {
		t.Errorf("replaced = %d findings, want 0", len(findingsRepo.replaced))
	}
}

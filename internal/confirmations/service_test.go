package confirmations

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
	customers  []models.Customer
}

func (f *fakeInvoicesRepo) WithTx(tx *gorm.DB) invoices.Repository { return f }
func (f *fakeInvoicesRepo) ReplaceSnapshot(ctx context.Context, id uuid.UUID, invs []models.Invoice, custs []models.Customer) error {
	return nil
}
func (f *fakeInvoicesRepo) ListByEngagement(ctx context.Context, id uuid.UUID) ([]models.Invoice, error) {
	return f.population, nil
}
func (f *fakeInvoicesRepo) ListCustomers(ctx context.Context, id uuid.UUID) ([]models.Customer, error) {
	return f.customers, nil
}
func (f *fakeInvoicesRepo) CountByEngagement(ctx context.Context, id uuid.UUID) (int64, error) {
	return int64(len(f.population)), nil
}

type fakeRequestsRepo struct {
	stored []models.ConfirmationRequest
}

func (f *fakeRequestsRepo) WithTx(tx *gorm.DB) Repository { return f }
func (f *fakeRequestsRepo) Replace(ctx context.Context, engagementID uuid.UUID, requests []models.ConfirmationRequest) error {
	for i := range requests {
		requests[i].EngagementID = engagementID
		if requests[i].ID == uuid.Nil {
			requests[i].ID = uuid.New()
		}
	}
	f.stored = requests
	return nil
}
func (f *fakeRequestsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ConfirmationRequest, error) {
	for i := range f.stored {
		if f.stored[i].ID == id {
			req := f.stored[i]
			return &req, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeRequestsRepo) Update(ctx context.Context, request *models.ConfirmationRequest) error {
	for i := range f.stored {
		if f.stored[i].ID == request.ID {
			f.stored[i] = *request
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
func (f *fakeRequestsRepo) ListByEngagement(ctx context.Context, engagementID uuid.UUID) ([]models.ConfirmationRequest, error) {
	return f.stored, nil
}

type fakeFindingsRepo struct {
	replaced []models.AuditFinding
	calls    int
}

func (f *fakeFindingsRepo) WithTx(tx *gorm.DB) findings.Repository { return f }
func (f *fakeFindingsRepo) ReplaceByType(ctx context.Context, id uuid.UUID, t enums.FindingType, batch []models.AuditFinding) error {
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

func newTestService(t *testing.T) (Service, *fakeRequestsRepo, *fakeFindingsRepo, uuid.UUID) {
	t.Helper()

	engagement := &models.Engagement{
		ID:            uuid.New(),
		FiscalYear:    "2023",
		ReportingDate: time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	invoicePopulation, customers := samplePopulation()

	requests := &fakeRequestsRepo{}
	findingsRepo := &fakeFindingsRepo{}
	svc, err := NewService(
		&fakeEngagementsRepo{engagement: engagement},
		&fakeInvoicesRepo{population: invoicePopulation, customers: customers},
		requests,
		findingsRepo,
		&fakeTrail{},
		nil,
		5,
		decimal.NewFromInt(1_000),
	)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, requests, findingsRepo, engagement.ID
}

func TestService_RunStoresSample(t *testing.T) {
	svc, requests, findingsRepo, engagementID := newTestService(t)

	sample, err := svc.Run(context.Background(), engagementID, RunInput{Seed: 7})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(sample) != 5 || len(requests.stored) != 5 {
		t.Fatalf("sample = %d stored = %d, want 5", len(sample), len(requests.stored))
	}
	if findingsRepo.calls != 1 || len(findingsRepo.replaced) != 0 {
		t.Error("a fresh sample must clear prior confirmation findings")
	}
}

func TestService_RunRejectsTinySample(t *testing.T) {
	svc, _, _, engagementID := newTestService(t)

	_, err := svc.Run(context.Background(), engagementID, RunInput{SampleSize: 2})
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_RecordResponseReceived(t *testing.T) {
	svc, requests, _, engagementID := newTestService(t)

	if _, err := svc.Run(context.Background(), engagementID, RunInput{Seed: 7}); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	target := requests.stored[0]

	confirmed := target.RecordedAmount
	got, err := svc.RecordResponse(context.Background(), target.ID, ResponseInput{ConfirmedAmount: &confirmed})
	if err != nil {
		t.Fatalf("RecordResponse error: %v", err)
	}
	if got.Status != enums.ConfirmationStatusReceived {
		t.Errorf("status = %s, want received", got.Status)
	}
	if !got.Difference.IsZero() {
		t.Errorf("difference = %s, want 0", got.Difference)
	}
}

func TestService_RecordResponseExceptionRaisesFinding(t *testing.T) {
	svc, requests, findingsRepo, engagementID := newTestService(t)

	if _, err := svc.Run(context.Background(), engagementID, RunInput{Seed: 7}); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	target := requests.stored[0]

	confirmed := target.RecordedAmount.Sub(decimal.NewFromInt(250_000))
	got, err := svc.RecordResponse(context.Background(), target.ID, ResponseInput{ConfirmedAmount: &confirmed})
	if err != nil {
		t.Fatalf("RecordResponse error: %v", err)
	}
	if got.Status != enums.ConfirmationStatusException {
		t.Errorf("status = %s, want exception", got.Status)
	}
	if !got.Difference.Equal(decimal.NewFromInt(-250_000)) {
		t.Errorf("difference = %s, want -250000", got.Difference)
	}

	if len(findingsRepo.replaced) != 1 {
		t.Fatalf("findings = %d, want 1 exception", len(findingsRepo.replaced))
	}
	f := findingsRepo.replaced[0]
	if f.Severity != enums.SeverityHigh {
		t.Errorf("severity = %s, want high for material difference", f.Severity)
	}
	if f.Reference != "CONF-EXC-"+target.InvoiceNo {
		t.Errorf("reference = %q", f.Reference)
	}
}

func TestService_RecordResponseNonResponse(t *testing.T) {
	svc, requests, _, engagementID := newTestService(t)

	if _, err := svc.Run(context.Background(), engagementID, RunInput{Seed: 7}); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	target := requests.stored[1]

	got, err := svc.RecordResponse(context.Background(), target.ID, ResponseInput{NonResponse: true})
	if err != nil {
		t.Fatalf("RecordResponse error: %v", err)
	}
	if got.Status != enums.ConfirmationStatusNonResponse {
		t.Errorf("status = %s, want non_response", got.Status)
	}
}

func TestService_RecordResponseOnClosedRequest(t *testing.T) {
	svc, requests, _, engagementID := newTestService(t)

	if _, err := svc.Run(context.Background(), engagementID, RunInput{Seed: 7}); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	target := requests.stored[0]

	if _, err := svc.RecordResponse(context.Background(), target.ID, ResponseInput{NonResponse: true}); err != nil {
		t.Fatalf("first response error: %v", err)
	}
	_, err := svc.RecordResponse(context.Background(), target.ID, ResponseInput{NonResponse: true})
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeStateConflict {
		t.Fatalf("expected state-conflict error, got %v", err)
	}
}

package confirmations

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	apperrors "github.com/angelmondragon/arrecon-backend/pkg/errors"

	"github.com/angelmondragon/arrecon-backend/internal/auditlog"
	"github.com/angelmondragon/arrecon-backend/internal/engagements"
	"github.com/angelmondragon/arrecon-backend/internal/findings"
	"github.com/angelmondragon/arrecon-backend/internal/invoices"
	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/angelmondragon/arrecon-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const procedureName = "confirmations"

// Service draws confirmation samples and records responses.
type Service interface {
	Run(ctx context.Context, engagementID uuid.UUID, input RunInput) ([]models.ConfirmationRequest, error)
	List(ctx context.Context, engagementID uuid.UUID) ([]models.ConfirmationRequest, error)
	RecordResponse(ctx context.Context, requestID uuid.UUID, input ResponseInput) (*models.ConfirmationRequest, error)
}

// RunInput tunes one sampling run. A zero SampleSize uses the configured
// default; Seed zero means draw from the clock.
type RunInput struct {
	SampleSize int   `json:"sample_size"`
	Seed       int64 `json:"seed"`
}

// ResponseInput records one customer reply. A nil ConfirmedAmount with
// NonResponse true closes the request as unanswered.
type ResponseInput struct {
	ConfirmedAmount *decimal.Decimal `json:"confirmed_amount"`
	NonResponse     bool             `json:"non_response"`
}

type service struct {
	engagements engagements.Repository
	invoices    invoices.Repository
	requests    Repository
	findings    findings.Repository
	trail       auditlog.Service
	metrics     *metrics.ProcedureMetrics
	sampleSize  int
	materiality decimal.Decimal
}

// NewService wires a confirmations service. defaultSampleSize must cover
// at least the fixed top picks.
func NewService(engagementsRepo engagements.Repository, invoicesRepo invoices.Repository, requestsRepo Repository, findingsRepo findings.Repository, trail auditlog.Service, procMetrics *metrics.ProcedureMetrics, defaultSampleSize int, materiality decimal.Decimal) (Service, error) {
	if engagementsRepo == nil {
		return nil, fmt.Errorf("engagements repository required")
	}
	if invoicesRepo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	if requestsRepo == nil {
		return nil, fmt.Errorf("confirmations repository required")
	}
	if findingsRepo == nil {
		return nil, fmt.Errorf("findings repository required")
	}
	if trail == nil {
		return nil, fmt.Errorf("audit trail service required")
	}
	if defaultSampleSize < topCount {
		return nil, fmt.Errorf("default sample size %d below the fixed top picks", defaultSampleSize)
	}
	if materiality.IsZero() {
		materiality = decimal.NewFromInt(1_000)
	}
	return &service{
		engagements: engagementsRepo,
		invoices:    invoicesRepo,
		requests:    requestsRepo,
		findings:    findingsRepo,
		trail:       trail,
		metrics:     procMetrics,
		sampleSize:  defaultSampleSize,
		materiality: materiality,
	}, nil
}

func (s *service) Run(ctx context.Context, engagementID uuid.UUID, input RunInput) ([]models.ConfirmationRequest, error) {
	started := time.Now()

	if _, err := s.engagements.GetByID(ctx, engagementID); err != nil {
		s.metrics.IncFailure(procedureName)
		return nil, apperrors.New(apperrors.CodeNotFound, "engagement not found")
	}

	size := input.SampleSize
	if size == 0 {
		size = s.sampleSize
	}
	if size < topCount {
		s.metrics.IncFailure(procedureName)
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("sample size %d below the minimum of %d", size, topCount))
	}

	population, err := s.invoices.ListByEngagement(ctx, engagementID)
	if err != nil {
		s.metrics.IncFailure(procedureName)
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "load invoice population")
	}
	if len(population) == 0 {
		s.metrics.IncFailure(procedureName)
		return nil, apperrors.New(apperrors.CodeStateConflict, "no invoice population to sample; ingest source data first")
	}
	customers, err := s.invoices.ListCustomers(ctx, engagementID)
	if err != nil {
		s.metrics.IncFailure(procedureName)
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "load customers")
	}

	seed := input.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sample := Sample(population, customers, size, rand.New(rand.NewSource(seed)))

	if err := s.requests.Replace(ctx, engagementID, sample); err != nil {
		s.metrics.IncFailure(procedureName)
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "store confirmation sample")
	}
	// A fresh sample supersedes any exceptions raised against the old one.
	if err := s.findings.ReplaceByType(ctx, engagementID, enums.FindingTypeConfirmation, nil); err != nil {
		s.metrics.IncFailure(procedureName)
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "clear confirmation findings")
	}

	s.trail.Record(ctx, auditlog.Entry{
		EngagementID: &engagementID,
		Action:       "confirmation sample drawn",
		Details:      fmt.Sprintf("%d requests from %d invoices", len(sample), len(population)),
		Category:     enums.AuditLogCategoryProcedure,
	})

	s.metrics.ObserveDuration(procedureName, time.Since(started))
	s.metrics.IncSuccess(procedureName)
	return sample, nil
}

func (s *service) List(ctx context.Context, engagementID uuid.UUID) ([]models.ConfirmationRequest, error) {
	return s.requests.ListByEngagement(ctx, engagementID)
}

func (s *service) RecordResponse(ctx context.Context, requestID uuid.UUID, input ResponseInput) (*models.ConfirmationRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "confirmation request not found")
		}
		return nil, err
	}
	if request.Status != enums.ConfirmationStatusSent {
		return nil, apperrors.New(apperrors.CodeStateConflict, fmt.Sprintf("confirmation already closed as %s", request.Status))
	}

	switch {
	case input.NonResponse:
		request.Status = enums.ConfirmationStatusNonResponse
	case input.ConfirmedAmount != nil:
		request.ConfirmedAmount = input.ConfirmedAmount
		request.Difference = input.ConfirmedAmount.Sub(request.RecordedAmount)
		if request.Difference.IsZero() {
			request.Status = enums.ConfirmationStatusReceived
		} else {
			request.Status = enums.ConfirmationStatusException
		}
	default:
		return nil, apperrors.New(apperrors.CodeValidation, "either a confirmed amount or a non-response flag is required")
	}

	if err := s.requests.Update(ctx, request); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "record confirmation response")
	}

	if err := s.refreshFindings(ctx, request.EngagementID); err != nil {
		return nil, err
	}

	s.trail.Record(ctx, auditlog.Entry{
		EngagementID: &request.EngagementID,
		Action:       "confirmation response recorded",
		Details:      fmt.Sprintf("invoice %s closed as %s, difference %s", request.InvoiceNo, request.Status, request.Difference.StringFixed(2)),
		Category:     enums.AuditLogCategoryProcedure,
	})

	return request, nil
}

// refreshFindings rebuilds the confirmation findings from the current
// exception set so repeated response recording stays idempotent.
func (s *service) refreshFindings(ctx context.Context, engagementID uuid.UUID) error {
	requests, err := s.requests.ListByEngagement(ctx, engagementID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "load confirmation requests")
	}

	var exceptions []models.AuditFinding
	for _, req := range requests {
		if req.Status != enums.ConfirmationStatusException {
			continue
		}
		severity := enums.SeverityMedium
		if req.Difference.Abs().GreaterThan(s.materiality) {
			severity = enums.SeverityHigh
		}
		exceptions = append(exceptions, models.AuditFinding{
			Type:      enums.FindingTypeConfirmation,
			Severity:  severity,
			Reference: fmt.Sprintf("CONF-EXC-%s", req.InvoiceNo),
			Description: fmt.Sprintf(
				"Customer %s confirmed %s against recorded %s for invoice %s",
				req.CustomerName, req.ConfirmedAmount.StringFixed(2), req.RecordedAmount.StringFixed(2), req.InvoiceNo,
			),
			AmountDifference: req.Difference,
		})
	}

	if err := s.findings.ReplaceByType(ctx, engagementID, enums.FindingTypeConfirmation, exceptions); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "store confirmation findings")
	}
	s.metrics.AddFindings(procedureName, len(exceptions))
	return nil
}

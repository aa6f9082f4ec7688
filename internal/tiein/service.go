package tiein

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/angelmondragon/arrecon-backend/pkg/errors"

	"github.com/angelmondragon/arrecon-backend/internal/auditlog"
	"github.com/angelmondragon/arrecon-backend/internal/engagements"
	"github.com/angelmondragon/arrecon-backend/internal/findings"
	"github.com/angelmondragon/arrecon-backend/internal/invoices"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/angelmondragon/arrecon-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const procedureName = "reconciliation"

// Service runs the ledger-to-subledger reconciliation and stores its
// findings.
type Service interface {
	Run(ctx context.Context, engagementID uuid.UUID) (*Result, error)
}

type service struct {
	engagements engagements.Repository
	invoices    invoices.Repository
	findings    findings.Repository
	trail       auditlog.Service
	metrics     *metrics.ProcedureMetrics
	params      Params
}

// NewService wires a reconciliation service with the engagement thresholds.
func NewService(engagementsRepo engagements.Repository, invoicesRepo invoices.Repository, findingsRepo findings.Repository, trail auditlog.Service, procMetrics *metrics.ProcedureMetrics, params Params) (Service, error) {
	if engagementsRepo == nil {
		return nil, fmt.Errorf("engagements repository required")
	}
	if invoicesRepo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	if findingsRepo == nil {
		return nil, fmt.Errorf("findings repository required")
	}
	if trail == nil {
		return nil, fmt.Errorf("audit trail service required")
	}
	return &service{
		engagements: engagementsRepo,
		invoices:    invoicesRepo,
		findings:    findingsRepo,
		trail:       trail,
		metrics:     procMetrics,
		params:      params.normalized(),
	}, nil
}

func (s *service) Run(ctx context.Context, engagementID uuid.UUID) (*Result, error) {
	started := time.Now()

	if _, err := s.engagements.GetByID(ctx, engagementID); err != nil {
		s.metrics.IncFailure(procedureName)
		return nil, apperrors.New(apperrors.CodeNotFound, "engagement not found")
	}

	summary, err := s.engagements.GetLedgerSummary(ctx, engagementID)
	if err != nil {
		s.metrics.IncFailure(procedureName)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeStateConflict, "ledger balance not recorded; ingest source data first")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "load ledger summary")
	}

	population, err := s.invoices.ListByEngagement(ctx, engagementID)
	if err != nil {
		s.metrics.IncFailure(procedureName)
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "load invoice population")
	}

	result := Decompose(summary.Balance, population, s.params)

	if err := s.findings.ReplaceByType(ctx, engagementID, enums.FindingTypeTieIn, result.Findings); err != nil {
		s.metrics.IncFailure(procedureName)
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "store reconciliation findings")
	}

	s.trail.Record(ctx, auditlog.Entry{
		EngagementID: &engagementID,
		Action:       "ledger reconciliation performed",
		Details: fmt.Sprintf("variance %s against %d invoices, %d causes identified",
			result.Variance.StringFixed(2), len(population), len(result.Findings)),
		Category: enums.AuditLogCategoryProcedure,
	})

	s.metrics.ObserveDuration(procedureName, time.Since(started))
	s.metrics.IncSuccess(procedureName)
	s.metrics.AddFindings(procedureName, len(result.Findings))

	return &result, nil
}

package aging

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/angelmondragon/arrecon-backend/pkg/errors"

	"github.com/angelmondragon/arrecon-backend/internal/auditlog"
	"github.com/angelmondragon/arrecon-backend/internal/engagements"
	"github.com/angelmondragon/arrecon-backend/internal/invoices"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/angelmondragon/arrecon-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const procedureName = "aging"

// Service runs the aging schedule for an engagement.
type Service interface {
	Run(ctx context.Context, engagementID uuid.UUID, input RunInput) (*Result, error)
}

// RunInput carries optional per-bucket allowance-rate overrides keyed by
// bucket label, in percent.
type RunInput struct {
	RateOverrides map[string]decimal.Decimal `json:"rate_overrides"`
}

type service struct {
	engagements engagements.Repository
	invoices    invoices.Repository
	trail       auditlog.Service
	metrics     *metrics.ProcedureMetrics
}

// NewService wires an aging service with its repositories.
func NewService(engagementsRepo engagements.Repository, invoicesRepo invoices.Repository, trail auditlog.Service, procMetrics *metrics.ProcedureMetrics) (Service, error) {
	if engagementsRepo == nil {
		return nil, fmt.Errorf("engagements repository required")
	}
	if invoicesRepo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	if trail == nil {
		return nil, fmt.Errorf("audit trail service required")
	}
	return &service{engagements: engagementsRepo, invoices: invoicesRepo, trail: trail, metrics: procMetrics}, nil
}

func (s *service) Run(ctx context.Context, engagementID uuid.UUID, input RunInput) (*Result, error) {
	started := time.Now()

	engagement, err := s.engagements.GetByID(ctx, engagementID)
	if err != nil {
		s.metrics.IncFailure(procedureName)
		return nil, apperrors.New(apperrors.CodeNotFound, "engagement not found")
	}

	for label, rate := range input.RateOverrides {
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
			s.metrics.IncFailure(procedureName)
			return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("allowance rate for %q must be between 0 and 100", label))
		}
	}

	population, err := s.invoices.ListByEngagement(ctx, engagementID)
	if err != nil {
		s.metrics.IncFailure(procedureName)
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "load invoice population")
	}

	result := Calculate(population, engagement.ReportingDate, input.RateOverrides)

	s.trail.Record(ctx, auditlog.Entry{
		EngagementID: &engagementID,
		Action:       "aging schedule prepared",
		Details: fmt.Sprintf("%d invoices aged, allowance %s on %s outstanding",
			len(population), result.TotalAllowance.StringFixed(2), result.TotalAmount.StringFixed(2)),
		Category: enums.AuditLogCategoryProcedure,
	})

	s.metrics.ObserveDuration(procedureName, time.Since(started))
	s.metrics.IncSuccess(procedureName)
	return &result, nil
}

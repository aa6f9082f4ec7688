package cutoff

import (
	"context"
	"fmt"
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
)

const procedureName = "cutoff"

// Service runs the cutoff test and stores its findings.
type Service interface {
	Run(ctx context.Context, engagementID uuid.UUID) (*RunResult, error)
}

// RunResult summarizes one cutoff run.
type RunResult struct {
	WindowDays int                   `json:"window_days"`
	Examined   int                   `json:"examined"`
	Findings   []models.AuditFinding `json:"findings"`
}

type service struct {
	engagements engagements.Repository
	invoices    invoices.Repository
	findings    findings.Repository
	trail       auditlog.Service
	metrics     *metrics.ProcedureMetrics
	windowDays  int
}

// NewService wires a cutoff service. windowDays of zero falls back to the
// default seven-day window.
func NewService(engagementsRepo engagements.Repository, invoicesRepo invoices.Repository, findingsRepo findings.Repository, trail auditlog.Service, procMetrics *metrics.ProcedureMetrics, windowDays int) (Service, error) {
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
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &service{
		engagements: engagementsRepo,
		invoices:    invoicesRepo,
		findings:    findingsRepo,
		trail:       trail,
		metrics:     procMetrics,
		windowDays:  windowDays,
	}, nil
}

func (s *service) Run(ctx context.Context, engagementID uuid.UUID) (*RunResult, error) {
	started := time.Now()

	engagement, err := s.engagements.GetByID(ctx, engagementID)
	if err != nil {
		s.metrics.IncFailure(procedureName)
		return nil, apperrors.New(apperrors.CodeNotFound, "engagement not found")
	}

	population, err := s.invoices.ListByEngagement(ctx, engagementID)
	if err != nil {
		s.metrics.IncFailure(procedureName)
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "load invoice population")
	}

	detected := Detect(population, engagement.ReportingDate, s.windowDays)

	if err := s.findings.ReplaceByType(ctx, engagementID, enums.FindingTypeCutoff, detected); err != nil {
		s.metrics.IncFailure(procedureName)
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "store cutoff findings")
	}

	s.trail.Record(ctx, auditlog.Entry{
		EngagementID: &engagementID,
		Action:       "cutoff test performed",
		Details:      fmt.Sprintf("%d invoices examined, %d misstatements in the ±%d day window", len(population), len(detected), s.windowDays),
		Category:     enums.AuditLogCategoryProcedure,
	})

	s.metrics.ObserveDuration(procedureName, time.Since(started))
	s.metrics.IncSuccess(procedureName)
	s.metrics.AddFindings(procedureName, len(detected))

	return &RunResult{WindowDays: s.windowDays, Examined: len(population), Findings: detected}, nil
}

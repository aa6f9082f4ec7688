package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	apperrors "github.com/angelmondragon/arrecon-backend/pkg/errors"

	"github.com/angelmondragon/arrecon-backend/internal/auditlog"
	"github.com/angelmondragon/arrecon-backend/internal/engagements"
	"github.com/angelmondragon/arrecon-backend/internal/invoices"
	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/google/uuid"
)

// Service seeds an engagement with generated data.
type Service interface {
	Simulate(ctx context.Context, engagementID uuid.UUID, input SimulateInput) (*SimulateResult, error)
}

// SimulateInput tunes one generation run. Seed zero draws from the clock.
type SimulateInput struct {
	Seed int64 `json:"seed"`
}

// SimulateResult summarizes what was generated.
type SimulateResult struct {
	InvoiceCount    int    `json:"invoice_count"`
	CustomerCount   int    `json:"customer_count"`
	LedgerBalance   string `json:"ledger_balance"`
	CutoffInjected  bool   `json:"cutoff_injected"`
	LedgerSabotaged bool   `json:"ledger_sabotaged"`
	Seed            int64  `json:"seed"`
}

type service struct {
	engagements engagements.Repository
	invoices    invoices.Repository
	trail       auditlog.Service
}

// NewService wires a simulator service with its repositories.
func NewService(engagementsRepo engagements.Repository, invoicesRepo invoices.Repository, trail auditlog.Service) (Service, error) {
	if engagementsRepo == nil {
		return nil, fmt.Errorf("engagements repository required")
	}
	if invoicesRepo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	if trail == nil {
		return nil, fmt.Errorf("audit trail service required")
	}
	return &service{engagements: engagementsRepo, invoices: invoicesRepo, trail: trail}, nil
}

func (s *service) Simulate(ctx context.Context, engagementID uuid.UUID, input SimulateInput) (*SimulateResult, error) {
	engagement, err := s.engagements.GetByID(ctx, engagementID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "engagement not found")
	}
	year, err := strconv.Atoi(engagement.FiscalYear)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "engagement carries a malformed fiscal year")
	}

	seed := input.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	dataset := Generate(year, rand.New(rand.NewSource(seed)))

	if err := s.invoices.ReplaceSnapshot(ctx, engagementID, dataset.Invoices, dataset.Customers); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "persist generated population")
	}
	// Every generated invoice carries a delivery order.
	if err := s.engagements.UpdateMatchRate(ctx, engagementID, 100); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "update document match rate")
	}
	summary := &models.LedgerSummary{
		EngagementID: engagementID,
		AccountCode:  dataset.AccountCode,
		AccountName:  dataset.AccountName,
		Balance:      dataset.LedgerBalance,
		AsOfDate:     dataset.AsOfDate,
	}
	if err := s.engagements.UpsertLedgerSummary(ctx, summary); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "record generated ledger balance")
	}

	s.trail.Record(ctx, auditlog.Entry{
		EngagementID: &engagementID,
		Action:       "synthetic data generated",
		Details: fmt.Sprintf("%d invoices, cutoff risk %t, ledger misstated %t",
			len(dataset.Invoices), dataset.CutoffInjected, dataset.LedgerSabotaged),
		Category: enums.AuditLogCategoryData,
	})

	return &SimulateResult{
		InvoiceCount:    len(dataset.Invoices),
		CustomerCount:   len(dataset.Customers),
		LedgerBalance:   dataset.LedgerBalance.StringFixed(2),
		CutoffInjected:  dataset.CutoffInjected,
		LedgerSabotaged: dataset.LedgerSabotaged,
		Seed:            seed,
	}, nil
}

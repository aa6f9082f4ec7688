package ingest

import (
	"context"
	"fmt"
	"strconv"

	apperrors "github.com/angelmondragon/arrecon-backend/pkg/errors"

	"github.com/angelmondragon/arrecon-backend/internal/auditlog"
	"github.com/angelmondragon/arrecon-backend/internal/engagements"
	"github.com/angelmondragon/arrecon-backend/internal/invoices"
	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/angelmondragon/arrecon-backend/pkg/logger"
	"github.com/angelmondragon/arrecon-backend/pkg/money"
	"github.com/google/uuid"
)

// Service runs the three-way join and persists its population.
type Service interface {
	Ingest(ctx context.Context, engagementID uuid.UUID, input IngestInput) (*IngestResult, error)
}

// IngestInput is one upload of raw source extracts. LedgerBalance is the
// control-account total keyed in alongside the extracts; untyped because
// it arrives in whatever shape the client form produced.
type IngestInput struct {
	Finance       []FinanceRow   `json:"finance"`
	Warehouse     []WarehouseRow `json:"warehouse"`
	Sales         []SalesRow     `json:"sales"`
	LedgerBalance any            `json:"ledger_balance"`
	AccountCode   string         `json:"account_code"`
	AccountName   string         `json:"account_name"`
}

// IngestResult summarizes what one ingestion run stored.
type IngestResult struct {
	InvoiceCount      int      `json:"invoice_count"`
	CustomerCount     int      `json:"customer_count"`
	DocumentMatchRate string   `json:"document_match_rate"`
	LedgerRecorded    bool     `json:"ledger_recorded"`
	Warnings          []string `json:"warnings,omitempty"`
}

type service struct {
	engagements engagements.Repository
	invoices    invoices.Repository
	trail       auditlog.Service
	log         *logger.Logger
}

// NewService wires an ingest service with its repositories.
func NewService(engagementsRepo engagements.Repository, invoicesRepo invoices.Repository, trail auditlog.Service, log *logger.Logger) (Service, error) {
	if engagementsRepo == nil {
		return nil, fmt.Errorf("engagements repository required")
	}
	if invoicesRepo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	if trail == nil {
		return nil, fmt.Errorf("audit trail service required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{engagements: engagementsRepo, invoices: invoicesRepo, trail: trail, log: log}, nil
}

func (s *service) Ingest(ctx context.Context, engagementID uuid.UUID, input IngestInput) (*IngestResult, error) {
	engagement, err := s.engagements.GetByID(ctx, engagementID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "engagement not found")
	}

	fiscalYear, err := strconv.Atoi(engagement.FiscalYear)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "engagement carries a malformed fiscal year")
	}

	joined, err := Join(JoinInput{
		Finance:    input.Finance,
		Warehouse:  input.Warehouse,
		Sales:      input.Sales,
		FiscalYear: fiscalYear,
	})
	if err != nil {
		return nil, err
	}

	if err := s.invoices.ReplaceSnapshot(ctx, engagementID, joined.Invoices, joined.Customers); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "persist invoice population")
	}

	matchRate, _ := joined.DocumentMatchRate.Float64()
	if err := s.engagements.UpdateMatchRate(ctx, engagementID, matchRate); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "update document match rate")
	}

	result := &IngestResult{
		InvoiceCount:      len(joined.Invoices),
		CustomerCount:     len(joined.Customers),
		DocumentMatchRate: joined.DocumentMatchRate.StringFixed(2),
	}

	if input.LedgerBalance != nil {
		balance, ok := money.Parse(input.LedgerBalance)
		if !ok {
			return nil, apperrors.New(apperrors.CodeValidation, "ledger balance could not be parsed")
		}
		accountCode := input.AccountCode
		if accountCode == "" {
			accountCode = "1-1200"
		}
		accountName := input.AccountName
		if accountName == "" {
			accountName = "Accounts Receivable - Trade"
		}
		summary := &models.LedgerSummary{
			EngagementID: engagementID,
			AccountCode:  accountCode,
			AccountName:  accountName,
			Balance:      balance,
			AsOfDate:     engagement.ReportingDate,
		}
		if err := s.engagements.UpsertLedgerSummary(ctx, summary); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "record ledger summary")
		}
		result.LedgerRecorded = true
	}

	if joined.WarningDetail != nil {
		s.log.Warn(s.log.WithEngagement(ctx, engagementID.String()), fmt.Sprintf("ingestion tolerated defects: %v", joined.WarningDetail))
		result.Warnings = warningList(joined.Warnings)
	}

	s.trail.Record(ctx, auditlog.Entry{
		EngagementID: &engagementID,
		Action:       "source data ingested",
		Details: fmt.Sprintf("%d invoices, %d customers, %s%% documented",
			result.InvoiceCount, result.CustomerCount, result.DocumentMatchRate),
		Category: enums.AuditLogCategoryData,
	})

	return result, nil
}

func warningList(w JoinWarnings) []string {
	var list []string
	if w.UnparsedAmounts > 0 {
		list = append(list, fmt.Sprintf("%d amounts defaulted to zero", w.UnparsedAmounts))
	}
	if w.UnparsedDates > 0 {
		list = append(list, fmt.Sprintf("%d dates fell back to the period start", w.UnparsedDates))
	}
	if w.GeneratedIDs > 0 {
		list = append(list, fmt.Sprintf("%d invoices received generated identifiers", w.GeneratedIDs))
	}
	if w.MissingWarehouse > 0 {
		list = append(list, fmt.Sprintf("%d invoices lack a warehouse match", w.MissingWarehouse))
	}
	if w.MissingSales > 0 {
		list = append(list, fmt.Sprintf("%d invoices lack a sales match", w.MissingSales))
	}
	return list
}

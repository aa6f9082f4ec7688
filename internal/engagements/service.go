// Package engagements owns the audit engagement lifecycle: one client,
// one fiscal year, one reporting date that every procedure runs against.
package engagements

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/angelmondragon/arrecon-backend/pkg/errors"

	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines engagement lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateEngagementInput) (*models.Engagement, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Engagement, error)
	List(ctx context.Context) ([]models.Engagement, error)
	LedgerSummary(ctx context.Context, engagementID uuid.UUID) (*models.LedgerSummary, error)
}

// CreateEngagementInput carries the fields a new engagement requires.
// The reporting date defaults to December 31 of the fiscal year.
type CreateEngagementInput struct {
	ClientName    string     `json:"client_name" validate:"required"`
	FiscalYear    string     `json:"fiscal_year" validate:"required,len=4,numeric"`
	ReportingDate *time.Time `json:"reporting_date"`
}

type service struct {
	repo Repository
}

// NewService wires an engagements service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("engagements repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateEngagementInput) (*models.Engagement, error) {
	year, err := strconv.Atoi(input.FiscalYear)
	if err != nil || year < 1900 || year > 2200 {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid fiscal year %q", input.FiscalYear))
	}

	reportingDate := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if input.ReportingDate != nil {
		reportingDate = input.ReportingDate.UTC().Truncate(24 * time.Hour)
	}

	engagement := &models.Engagement{
		ClientName:    input.ClientName,
		FiscalYear:    input.FiscalYear,
		ReportingDate: reportingDate,
	}
	if err := s.repo.Create(ctx, engagement); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "create engagement")
	}
	return engagement, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Engagement, error) {
	engagement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "engagement not found")
		}
		return nil, err
	}
	return engagement, nil
}

func (s *service) List(ctx context.Context) ([]models.Engagement, error) {
	return s.repo.List(ctx)
}

func (s *service) LedgerSummary(ctx context.Context, engagementID uuid.UUID) (*models.LedgerSummary, error) {
	summary, err := s.repo.GetLedgerSummary(ctx, engagementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "ledger summary not recorded for engagement")
		}
		return nil, err
	}
	return summary, nil
}

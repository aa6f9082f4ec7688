package engagements

import (
	"context"

	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistence for engagements and their ledger summary.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, engagement *models.Engagement) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error)
	List(ctx context.Context) ([]models.Engagement, error)
	UpdateMatchRate(ctx context.Context, id uuid.UUID, rate float64) error
	UpsertLedgerSummary(ctx context.Context, summary *models.LedgerSummary) error
	GetLedgerSummary(ctx context.Context, engagementID uuid.UUID) (*models.LedgerSummary, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an engagements repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, engagement *models.Engagement) error {
	return r.db.WithContext(ctx).Create(engagement).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error) {
	var engagement models.Engagement
	if err := r.db.WithContext(ctx).First(&engagement, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &engagement, nil
}

func (r *repository) List(ctx context.Context) ([]models.Engagement, error) {
	var rows []models.Engagement
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateMatchRate(ctx context.Context, id uuid.UUID, rate float64) error {
	return r.db.WithContext(ctx).
		Model(&models.Engagement{}).
		Where("id = ?", id).
		Update("document_match_rate", rate).Error
}

func (r *repository) UpsertLedgerSummary(ctx context.Context, summary *models.LedgerSummary) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "engagement_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"account_code", "account_name", "balance", "as_of_date", "updated_at"}),
		}).
		Create(summary).Error
}

func (r *repository) GetLedgerSummary(ctx context.Context, engagementID uuid.UUID) (*models.LedgerSummary, error) {
	var summary models.LedgerSummary
	if err := r.db.WithContext(ctx).First(&summary, "engagement_id = ?", engagementID).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

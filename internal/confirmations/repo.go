package confirmations

import (
	"context"

	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for confirmation requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// Replace swaps the engagement's confirmation sample in one transaction.
	Replace(ctx context.Context, engagementID uuid.UUID, requests []models.ConfirmationRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ConfirmationRequest, error)
	Update(ctx context.Context, request *models.ConfirmationRequest) error
	ListByEngagement(ctx context.Context, engagementID uuid.UUID) ([]models.ConfirmationRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a confirmations repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Replace(ctx context.Context, engagementID uuid.UUID, requests []models.ConfirmationRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("engagement_id = ?", engagementID).Delete(&models.ConfirmationRequest{}).Error; err != nil {
			return err
		}
		if len(requests) == 0 {
			return nil
		}
		for i := range requests {
			requests[i].EngagementID = engagementID
		}
		return tx.Create(&requests).Error
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.ConfirmationRequest, error) {
	var request models.ConfirmationRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) Update(ctx context.Context, request *models.ConfirmationRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *repository) ListByEngagement(ctx context.Context, engagementID uuid.UUID) ([]models.ConfirmationRequest, error) {
	var rows []models.ConfirmationRequest
	if err := r.db.WithContext(ctx).
		Where("engagement_id = ?", engagementID).
		Order("recorded_amount DESC, invoice_no ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

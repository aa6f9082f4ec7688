// Package invoices persists the unified invoice population and its
// customers. The population is snapshot-shaped: each ingestion replaces
// the previous run wholesale so procedures always read one coherent set.
package invoices

import (
	"context"

	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for invoices and customers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// ReplaceSnapshot swaps the engagement's whole population in one
	// transaction: invoices and customers are deleted then reinserted.
	ReplaceSnapshot(ctx context.Context, engagementID uuid.UUID, invoices []models.Invoice, customers []models.Customer) error
	ListByEngagement(ctx context.Context, engagementID uuid.UUID) ([]models.Invoice, error)
	ListCustomers(ctx context.Context, engagementID uuid.UUID) ([]models.Customer, error)
	CountByEngagement(ctx context.Context, engagementID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an invoices repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ReplaceSnapshot(ctx context.Context, engagementID uuid.UUID, invoices []models.Invoice, customers []models.Customer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("engagement_id = ?", engagementID).Delete(&models.Invoice{}).Error; err != nil {
			return err
		}
		if err := tx.Where("engagement_id = ?", engagementID).Delete(&models.Customer{}).Error; err != nil {
			return err
		}
		if len(invoices) > 0 {
			for i := range invoices {
				invoices[i].EngagementID = engagementID
			}
			if err := tx.CreateInBatches(&invoices, 500).Error; err != nil {
				return err
			}
		}
		if len(customers) > 0 {
			for i := range customers {
				customers[i].EngagementID = engagementID
			}
			if err := tx.CreateInBatches(&customers, 500).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) ListByEngagement(ctx context.Context, engagementID uuid.UUID) ([]models.Invoice, error) {
	var rows []models.Invoice
	if err := r.db.WithContext(ctx).
		Where("engagement_id = ?", engagementID).
		Order("invoice_date ASC, invoice_no ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListCustomers(ctx context.Context, engagementID uuid.UUID) ([]models.Customer, error) {
	var rows []models.Customer
	if err := r.db.WithContext(ctx).
		Where("engagement_id = ?", engagementID).
		Order("customer_no ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountByEngagement(ctx context.Context, engagementID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("engagement_id = ?", engagementID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

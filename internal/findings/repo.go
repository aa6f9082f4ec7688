// Package findings persists audit exceptions. Each procedure owns one
// finding type and re-running it swaps that type's findings atomically,
// leaving every other procedure's results untouched.
package findings

import (
	"context"

	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/angelmondragon/arrecon-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows a findings listing.
type ListFilter struct {
	Type     *enums.FindingType
	Severity *enums.Severity
}

// Repository manages persistence for audit findings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// ReplaceByType deletes the engagement's findings of the given type and
	// inserts the replacements in a single transaction.
	ReplaceByType(ctx context.Context, engagementID uuid.UUID, findingType enums.FindingType, replacements []models.AuditFinding) error
	List(ctx context.Context, engagementID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.AuditFinding, string, error)
	CountByType(ctx context.Context, engagementID uuid.UUID) (map[enums.FindingType]int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a findings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ReplaceByType(ctx context.Context, engagementID uuid.UUID, findingType enums.FindingType, replacements []models.AuditFinding) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("engagement_id = ? AND type = ?", engagementID, findingType).
			Delete(&models.AuditFinding{}).Error; err != nil {
			return err
		}
		if len(replacements) == 0 {
			return nil
		}
		for i := range replacements {
			replacements[i].EngagementID = engagementID
			replacements[i].Type = findingType
		}
		return tx.Create(&replacements).Error
	})
}

func (r *repository) List(ctx context.Context, engagementID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.AuditFinding, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Where("engagement_id = ?", engagementID)
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Severity != nil {
		query = query.Where("severity = ?", *filter.Severity)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.AuditFinding
	if err := query.
		Order("created_at ASC, id ASC").
		Limit(limit + 1).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

func (r *repository) CountByType(ctx context.Context, engagementID uuid.UUID) (map[enums.FindingType]int64, error) {
	type row struct {
		Type  enums.FindingType
		Count int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.AuditFinding{}).
		Select("type, COUNT(*) AS count").
		Where("engagement_id = ?", engagementID).
		Group("type").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[enums.FindingType]int64, len(rows))
	for _, r := range rows {
		counts[r.Type] = r.Count
	}
	return counts, nil
}

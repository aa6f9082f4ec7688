// Package auditlog keeps the append-only trail of who did what on an
// engagement. Recording is best-effort from the caller's point of view:
// a trail failure must never abort the action it describes, so Record
// logs and swallows persistence errors.
package auditlog

import (
	"context"
	"fmt"

	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	"github.com/angelmondragon/arrecon-backend/pkg/logger"
	"github.com/angelmondragon/arrecon-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Service records and lists action-trail entries.
type Service interface {
	Record(ctx context.Context, entry Entry)
	List(ctx context.Context, engagementID uuid.UUID, params pagination.Params) ([]models.AuditLogEntry, string, error)
}

// Entry is one action to record.
type Entry struct {
	EngagementID *uuid.UUID
	Actor        string
	Action       string
	Details      string
	Category     enums.AuditLogCategory
}

type service struct {
	repo Repository
	log  *logger.Logger
}

// NewService wires an audit-log service with the provided repository.
func NewService(repo Repository, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auditlog repository required")
	}
	if log == nil {
		return nil, fmt.Errorf("auditlog logger required")
	}
	return &service{repo: repo, log: log}, nil
}

func (s *service) Record(ctx context.Context, entry Entry) {
	actor := entry.Actor
	if actor == "" {
		actor = "system"
	}
	category := entry.Category
	if !category.IsValid() {
		category = enums.AuditLogCategorySystem
	}

	record := &models.AuditLogEntry{
		EngagementID: entry.EngagementID,
		Actor:        actor,
		Action:       entry.Action,
		Details:      entry.Details,
		Category:     category,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.log.Error(ctx, "audit log write failed", err)
	}
}

func (s *service) List(ctx context.Context, engagementID uuid.UUID, params pagination.Params) ([]models.AuditLogEntry, string, error) {
	return s.repo.ListByEngagement(ctx, engagementID, params)
}

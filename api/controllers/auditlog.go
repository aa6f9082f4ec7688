package controllers

import (
	"net/http"

	"github.com/angelmondragon/arrecon-backend/api/responses"
	"github.com/angelmondragon/arrecon-backend/api/validators"
	"github.com/angelmondragon/arrecon-backend/internal/auditlog"
	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/arrecon-backend/pkg/errors"
	"github.com/angelmondragon/arrecon-backend/pkg/logger"
	"github.com/angelmondragon/arrecon-backend/pkg/pagination"
)

type auditLogPage struct {
	Entries    []models.AuditLogEntry `json:"entries"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

func ListAuditLog(svc auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engagementID, err := engagementIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}

		entries, next, err := svc.List(r.Context(), engagementID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list audit log"))
			return
		}
		responses.WriteSuccess(w, auditLogPage{Entries: entries, NextCursor: next})
	}
}

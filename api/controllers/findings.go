package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/arrecon-backend/api/responses"
	"github.com/angelmondragon/arrecon-backend/api/validators"
	"github.com/angelmondragon/arrecon-backend/internal/findings"
	"github.com/angelmondragon/arrecon-backend/pkg/db/models"
	"github.com/angelmondragon/arrecon-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/arrecon-backend/pkg/errors"
	"github.com/angelmondragon/arrecon-backend/pkg/logger"
	"github.com/angelmondragon/arrecon-backend/pkg/pagination"
)

type findingsPage struct {
	Findings   []models.AuditFinding `json:"findings"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

func ListFindings(repo findings.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engagementID, err := engagementIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter findings.ListFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			findingType, err := enums.ParseFindingType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
				return
			}
			filter.Type = &findingType
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("severity")); raw != "" {
			severity, err := enums.ParseSeverity(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
				return
			}
			filter.Severity = &severity
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

		rows, next, err := repo.List(r.Context(), engagementID, filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list findings"))
			return
		}
		responses.WriteSuccess(w, findingsPage{Findings: rows, NextCursor: next})
	}
}

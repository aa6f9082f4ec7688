package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/arrecon-backend/api/responses"
	"github.com/angelmondragon/arrecon-backend/api/validators"
	"github.com/angelmondragon/arrecon-backend/internal/engagements"
	pkgerrors "github.com/angelmondragon/arrecon-backend/pkg/errors"
	"github.com/angelmondragon/arrecon-backend/pkg/logger"
)

// engagementIDParam pulls and validates the route's engagement id.
func engagementIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "engagementID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "engagement id must be a UUID")
	}
	return id, nil
}

func CreateEngagement(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input engagements.CreateEngagementInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ClientName = validators.SanitizeString(input.ClientName, 200)

		engagement, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, engagement)
	}
}

func GetEngagement(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := engagementIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		engagement, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, engagement)
	}
}

func ListEngagements(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetLedgerSummary(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := engagementIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.LedgerSummary(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

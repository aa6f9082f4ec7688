package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/arrecon-backend/api/responses"
	"github.com/angelmondragon/arrecon-backend/api/validators"
	"github.com/angelmondragon/arrecon-backend/internal/confirmations"
	pkgerrors "github.com/angelmondragon/arrecon-backend/pkg/errors"
	"github.com/angelmondragon/arrecon-backend/pkg/logger"
)

func ListConfirmations(svc confirmations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engagementID, err := engagementIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), engagementID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func RecordConfirmationResponse(svc confirmations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := uuid.Parse(chi.URLParam(r, "requestID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "confirmation request id must be a UUID"))
			return
		}

		var input confirmations.ResponseInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.RecordResponse(r.Context(), requestID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

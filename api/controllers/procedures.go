package controllers

import (
	"net/http"

	"github.com/angelmondragon/arrecon-backend/api/responses"
	"github.com/angelmondragon/arrecon-backend/api/validators"
	"github.com/angelmondragon/arrecon-backend/internal/aging"
	"github.com/angelmondragon/arrecon-backend/internal/confirmations"
	"github.com/angelmondragon/arrecon-backend/internal/cutoff"
	"github.com/angelmondragon/arrecon-backend/internal/tiein"
	"github.com/angelmondragon/arrecon-backend/pkg/logger"
)

func RunAging(svc aging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engagementID, err := engagementIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input aging.RunInput
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &input); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		ctx := logg.WithProcedure(logg.WithEngagement(r.Context(), engagementID.String()), "aging")
		result, err := svc.Run(ctx, engagementID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func RunCutoff(svc cutoff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engagementID, err := engagementIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithProcedure(logg.WithEngagement(r.Context(), engagementID.String()), "cutoff")
		result, err := svc.Run(ctx, engagementID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func RunReconciliation(svc tiein.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engagementID, err := engagementIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithProcedure(logg.WithEngagement(r.Context(), engagementID.String()), "reconciliation")
		result, err := svc.Run(ctx, engagementID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func RunConfirmations(svc confirmations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engagementID, err := engagementIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input confirmations.RunInput
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &input); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		ctx := logg.WithProcedure(logg.WithEngagement(r.Context(), engagementID.String()), "confirmations")
		sample, err := svc.Run(ctx, engagementID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, sample)
	}
}

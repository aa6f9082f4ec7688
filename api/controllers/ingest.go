package controllers

import (
	"net/http"

	"github.com/angelmondragon/arrecon-backend/api/responses"
	"github.com/angelmondragon/arrecon-backend/api/validators"
	"github.com/angelmondragon/arrecon-backend/internal/ingest"
	"github.com/angelmondragon/arrecon-backend/internal/simulator"
	"github.com/angelmondragon/arrecon-backend/pkg/logger"
)

func IngestSources(svc ingest.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engagementID, err := engagementIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input ingest.IngestInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithEngagement(r.Context(), engagementID.String())
		result, err := svc.Ingest(ctx, engagementID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func SimulateData(svc simulator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engagementID, err := engagementIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The body is optional; an empty POST simulates with a clock seed.
		var input simulator.SimulateInput
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &input); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		ctx := logg.WithEngagement(r.Context(), engagementID.String())
		result, err := svc.Simulate(ctx, engagementID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/arrecon-backend/api/controllers"
	"github.com/angelmondragon/arrecon-backend/api/middleware"
	"github.com/angelmondragon/arrecon-backend/internal/aging"
	"github.com/angelmondragon/arrecon-backend/internal/auditlog"
	"github.com/angelmondragon/arrecon-backend/internal/confirmations"
	"github.com/angelmondragon/arrecon-backend/internal/cutoff"
	"github.com/angelmondragon/arrecon-backend/internal/engagements"
	"github.com/angelmondragon/arrecon-backend/internal/findings"
	"github.com/angelmondragon/arrecon-backend/internal/ingest"
	"github.com/angelmondragon/arrecon-backend/internal/simulator"
	"github.com/angelmondragon/arrecon-backend/internal/tiein"
	"github.com/angelmondragon/arrecon-backend/pkg/config"
	"github.com/angelmondragon/arrecon-backend/pkg/db"
	"github.com/angelmondragon/arrecon-backend/pkg/logger"
)

// Dependencies bundles everything the router mounts.
type Dependencies struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Engagements    engagements.Service
	Ingest         ingest.Service
	Simulator      simulator.Service
	Aging          aging.Service
	Cutoff         cutoff.Service
	Reconciliation tiein.Service
	Confirmations  confirmations.Service
	Findings       findings.Repository
	AuditLog       auditlog.Service
	Metrics        prometheus.Gatherer
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/engagements", func(r chi.Router) {
		r.Post("/", controllers.CreateEngagement(deps.Engagements, logg))
		r.Get("/", controllers.ListEngagements(deps.Engagements, logg))

		r.Route("/{engagementID}", func(r chi.Router) {
			r.Get("/", controllers.GetEngagement(deps.Engagements, logg))
			r.Get("/ledger", controllers.GetLedgerSummary(deps.Engagements, logg))
			r.Post("/ingest", controllers.IngestSources(deps.Ingest, logg))
			r.Post("/simulate", controllers.SimulateData(deps.Simulator, logg))

			r.Route("/procedures", func(r chi.Router) {
				r.Post("/aging", controllers.RunAging(deps.Aging, logg))
				r.Post("/cutoff", controllers.RunCutoff(deps.Cutoff, logg))
				r.Post("/reconciliation", controllers.RunReconciliation(deps.Reconciliation, logg))
				r.Post("/confirmations", controllers.RunConfirmations(deps.Confirmations, logg))
			})

			r.Get("/confirmations", controllers.ListConfirmations(deps.Confirmations, logg))
			r.Get("/findings", controllers.ListFindings(deps.Findings, logg))
			r.Get("/audit-log", controllers.ListAuditLog(deps.AuditLog, logg))
		})
	})

	r.Patch("/api/v1/confirmations/{requestID}/response", controllers.RecordConfirmationResponse(deps.Confirmations, logg))

	return r
}

package main

import (
	"context"
	"net/http"
	"os"

	"github.com/angelmondragon/arrecon-backend/api/routes"
	"github.com/angelmondragon/arrecon-backend/internal/aging"
	"github.com/angelmondragon/arrecon-backend/internal/auditlog"
	"github.com/angelmondragon/arrecon-backend/internal/confirmations"
	"github.com/angelmondragon/arrecon-backend/internal/cutoff"
	"github.com/angelmondragon/arrecon-backend/internal/engagements"
	"github.com/angelmondragon/arrecon-backend/internal/findings"
	"github.com/angelmondragon/arrecon-backend/internal/ingest"
	"github.com/angelmondragon/arrecon-backend/internal/invoices"
	"github.com/angelmondragon/arrecon-backend/internal/simulator"
	"github.com/angelmondragon/arrecon-backend/internal/tiein"
	"github.com/angelmondragon/arrecon-backend/pkg/config"
	"github.com/angelmondragon/arrecon-backend/pkg/db"
	"github.com/angelmondragon/arrecon-backend/pkg/logger"
	"github.com/angelmondragon/arrecon-backend/pkg/metrics"
	"github.com/angelmondragon/arrecon-backend/pkg/migrate"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	procMetrics := metrics.NewProcedureMetrics(registry)

	engagementsRepo := engagements.NewRepository(dbClient.DB())
	invoicesRepo := invoices.NewRepository(dbClient.DB())
	findingsRepo := findings.NewRepository(dbClient.DB())
	requestsRepo := confirmations.NewRepository(dbClient.DB())
	auditLogRepo := auditlog.NewRepository(dbClient.DB())

	trail, err := auditlog.NewService(auditLogRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit log service", err)
		os.Exit(1)
	}

	engagementsService, err := engagements.NewService(engagementsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create engagements service", err)
		os.Exit(1)
	}

	ingestService, err := ingest.NewService(engagementsRepo, invoicesRepo, trail, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ingest service", err)
		os.Exit(1)
	}

	simulatorService, err := simulator.NewService(engagementsRepo, invoicesRepo, trail)
	if err != nil {
		logg.Error(context.Background(), "failed to create simulator service", err)
		os.Exit(1)
	}

	agingService, err := aging.NewService(engagementsRepo, invoicesRepo, trail, procMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create aging service", err)
		os.Exit(1)
	}

	cutoffService, err := cutoff.NewService(engagementsRepo, invoicesRepo, findingsRepo, trail, procMetrics, cfg.Engine.CutoffWindowDays)
	if err != nil {
		logg.Error(context.Background(), "failed to create cutoff service", err)
		os.Exit(1)
	}

	reconciliationService, err := tiein.NewService(engagementsRepo, invoicesRepo, findingsRepo, trail, procMetrics, tiein.Params{
		Materiality:   decimal.NewFromInt(cfg.Engine.MaterialityThreshold),
		Tolerance:     decimal.NewFromInt(cfg.Engine.AmountMatchTolerance),
		RoundMultiple: decimal.NewFromInt(cfg.Engine.RoundJournalMultiple),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciliation service", err)
		os.Exit(1)
	}

	confirmationsService, err := confirmations.NewService(
		engagementsRepo,
		invoicesRepo,
		requestsRepo,
		findingsRepo,
		trail,
		procMetrics,
		cfg.Engine.ConfirmationSampleSize,
		decimal.NewFromInt(cfg.Engine.MaterialityThreshold),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create confirmations service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Engagements:    engagementsService,
			Ingest:         ingestService,
			Simulator:      simulatorService,
			Aging:          agingService,
			Cutoff:         cutoffService,
			Reconciliation: reconciliationService,
			Confirmations:  confirmationsService,
			Findings:       findingsRepo,
			AuditLog:       trail,
			Metrics:        registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

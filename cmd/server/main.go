package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/restockd/restock/internal/config"
	"github.com/restockd/restock/internal/repository/mongodb"
	"github.com/restockd/restock/internal/repository/sheets"
	"github.com/restockd/restock/internal/scheduler"
	"github.com/restockd/restock/internal/server/handlers"
	"github.com/restockd/restock/internal/server/router"
	forecastsvc "github.com/restockd/restock/internal/service/forecast"
	recommendsvc "github.com/restockd/restock/internal/service/recommend"
	seedingsvc "github.com/restockd/restock/internal/service/seeding"
	unitssvc "github.com/restockd/restock/internal/service/units"
	"github.com/restockd/restock/pkg/clients/webhook"
	"github.com/restockd/restock/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	location, err := time.LoadLocation(cfg.Recommendation.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Recommendation.Timezone), zap.Error(err))
	}

	repo, err := mongodb.NewRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	unitTable := unitssvc.NewTable(repo, logger.Named(baseLogger, "svc.units"))
	forecaster := forecastsvc.NewForecaster(repo, unitTable, cfg.Recommendation.DefaultForecastDays, logger.Named(baseLogger, "svc.forecast"))
	recommendSvc := recommendsvc.NewService(repo, forecaster, cfg.Recommendation.ThresholdDays, logger.Named(baseLogger, "svc.recommend"))
	generator := seedingsvc.NewGenerator(repo, nil, logger.Named(baseLogger, "svc.seeding"))

	// Optional shopping-list export to Google Sheets.
	var exporter sheets.Exporter
	if cfg.SheetsExportEnabled() {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("shopping list export enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, shopping list export disabled")
	}

	// Optional webhook notification for refreshed lists.
	var notifier webhook.Client
	if cfg.Notifier.WebhookURL != "" {
		notifier = webhook.NewClient(cfg.Notifier.WebhookURL)
		baseLogger.Info("list-ready webhook notifications enabled")
	} else {
		baseLogger.Warn("webhook url missing, list-ready notifications disabled")
	}

	recommendHandler := handlers.NewRecommendHandler(recommendSvc, repo, exporter, logger.Named(baseLogger, "handlers.recommend"))
	seedHandler := handlers.NewSeedHandler(generator, logger.Named(baseLogger, "handlers.seed"))
	engine := router.New(recommendHandler, seedHandler, logger.Named(baseLogger, "router"))

	sched := scheduler.NewScheduler(*cfg, location, recommendSvc, repo, notifier, logger.Named(baseLogger, "scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

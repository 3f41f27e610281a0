package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/config"
	"github.com/tomschnierer025/weedtracker/internal/repository/sheets"
	"github.com/tomschnierer025/weedtracker/internal/repository/store"
	"github.com/tomschnierer025/weedtracker/internal/scheduler"
	"github.com/tomschnierer025/weedtracker/internal/server/handlers"
	"github.com/tomschnierer025/weedtracker/internal/server/router"
	"github.com/tomschnierer025/weedtracker/internal/service/tracker"
	"github.com/tomschnierer025/weedtracker/pkg/clients/geocode"
	"github.com/tomschnierer025/weedtracker/pkg/clients/weather"
	"github.com/tomschnierer025/weedtracker/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	repo, err := store.NewRepository(context.Background(), cfg.Store, baseLogger.Named("repo.store"))
	if err != nil {
		baseLogger.Fatal("failed to init store repository", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close store repository", zap.Error(err))
		}
	}()

	var weatherClient weather.Client
	if cfg.Weather.Enabled {
		weatherClient = weather.NewClient(cfg.Weather)
	} else {
		baseLogger.Warn("weather lookups disabled, job conditions will stay blank")
	}

	var geocodeClient geocode.Client
	if cfg.Geocode.Enabled {
		geocodeClient = geocode.NewClient(cfg.Geocode)
	} else {
		baseLogger.Warn("reverse geocoding disabled, road names will stay blank")
	}

	trackerSvc, err := tracker.New(context.Background(), repo, weatherClient, geocodeClient, baseLogger.Named("svc.tracker"))
	if err != nil {
		baseLogger.Fatal("failed to init tracker service", zap.Error(err))
	}

	var exporter sheets.Exporter
	if cfg.SheetsEnabled() {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("sheets export enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, spreadsheet export disabled")
	}

	jobHandler := handlers.NewJobHandler(trackerSvc, baseLogger.Named("handlers.jobs"))
	batchHandler := handlers.NewBatchHandler(trackerSvc, baseLogger.Named("handlers.batches"))
	chemicalHandler := handlers.NewChemicalHandler(trackerSvc, baseLogger.Named("handlers.chemicals"))
	storeHandler := handlers.NewStoreHandler(trackerSvc, exporter, baseLogger.Named("handlers.store"))
	engine := router.New(jobHandler, batchHandler, chemicalHandler, storeHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Scheduler, trackerSvc, baseLogger.Named("scheduler"))
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

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"dockload/internal/core/config"
	"dockload/internal/core/logger"
	"dockload/internal/core/metrics"
	"dockload/internal/core/recordstore"
	"dockload/internal/core/server"
	complianceadapter "dockload/internal/features/compliance/adapters"
	compliancehandler "dockload/internal/features/compliance/handler"
	complianceservice "dockload/internal/features/compliance/service"
	loadingadapter "dockload/internal/features/loading/adapters"
	"dockload/internal/features/loading/domain"
	loadinghandler "dockload/internal/features/loading/handler"
	"dockload/internal/features/loading/input"
	loadingservice "dockload/internal/features/loading/service"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// @title Dockload API
// @version 1.0
// @description This API drives dock loading sessions: manifest intake, vehicle confirmation and carton scan validation with compliance reports.
// @contact.name API Support
// @contact.email support@dockload.dev
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("store_driver", cfg.Store.Driver),
	)

	discipline, err := domain.ParseDiscipline(cfg.Loading.DefaultDiscipline)
	if err != nil {
		l.Fatal("Invalid DEFAULT_DISCIPLINE", zap.Error(err))
	}

	// Initialize Record Store and run Health Check
	store, err := recordstore.Open(cfg.Store)
	if err != nil {
		l.Fatal("Failed to open record store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.Ping(ctx); err != nil {
		l.Fatal("Record store Health Check Failed", zap.Error(err))
	}
	l.Info("Record store connection verified")

	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize Compliance Service & Handler
	reportService := complianceservice.NewReportService(complianceadapter.NewStoreReportRepository(store), nil)
	reportHandler := compliancehandler.NewReportHandler(reportService)

	// Initialize Loading Adapters
	mirror := loadingadapter.NewMirror(store, cfg.Loading.MirrorQueueSize, cfg.Store.Timeout, m, nil)
	defer mirror.Close()
	stops := loadingadapter.NewStopLoader(store, cfg.Loading.StopCacheTTL, nil)
	sessions := loadingadapter.NewStoreSessionRepository(store)

	// Initialize Loading Service & Handler
	loadingSvc := loadingservice.NewLoadingService(sessions, stops, mirror, reportService, m, loadingservice.Options{
		DefaultDiscipline: discipline,
		MaxScanLength:     cfg.Loading.MaxScanLength,
		KeyGap:            cfg.Loading.ScannerKeyGap,
		Quiescence:        cfg.Loading.ScannerQuiescence,
		Clock:             input.RealClock(),
	})
	defer loadingSvc.Close()
	mirror.OnFailure(loadingSvc.RecordMirrorFailure)
	loadingHdl := loadinghandler.NewLoadingHandler(loadingSvc)

	srv := server.New(cfg, prometheus.DefaultGatherer)

	// Register Routes
	srv.App.Post("/sessions", loadingHdl.OpenSession)
	srv.App.Get("/sessions/:id", loadingHdl.GetProgress)
	srv.App.Post("/sessions/:id/input", loadingHdl.SubmitInput)
	srv.App.Post("/sessions/:id/keys", loadingHdl.SubmitKeys)
	srv.App.Post("/sessions/:id/reset", loadingHdl.ResetSession)
	srv.App.Put("/shipments/:id/stops", loadingHdl.RegisterStops)
	srv.App.Get("/reports/:sessionId", reportHandler.GetReport)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			l.Error("Server failed to start", zap.Error(err))
		}
	case <-ctx.Done():
		l.Info("Shutting down")
		if err := srv.Shutdown(); err != nil {
			l.Error("Server shutdown failed", zap.Error(err))
		}
	}
}

// Package server wires the analysis engine into the HTTP API and runs it
// until interrupted. It is shared by cmd/api and the CLI serve command.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/finlens/backend/internal/chat"
	"github.com/finlens/backend/internal/config"
	"github.com/finlens/backend/internal/engine"
	"github.com/finlens/backend/internal/handler"
	"github.com/finlens/backend/internal/scheduler"
	"github.com/finlens/backend/internal/sheets"
)

// NewRouter assembles the API routes over the given engine. sched is
// nil when the background scheduler is disabled.
func NewRouter(cfg *config.Config, eng *engine.Engine, sched handler.RefreshScheduler) http.Handler {
	assistant := chat.NewAssistant(cfg.Classifier)

	reportHandler := handler.NewReportHandler(eng, sched)
	exportHandler := handler.NewExportHandler(eng)
	chatHandler := handler.NewChatHandler(assistant, eng)

	r := chi.NewRouter()
	r.NotFound(handler.NotFoundHandler)

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Report
	r.Get("/api/report", reportHandler.GetReport)
	r.Get("/api/report/insights", reportHandler.GetInsights)
	r.Get("/api/report/alerts", reportHandler.GetAlerts)
	r.Get("/api/report/patterns", reportHandler.GetPatterns)
	r.Get("/api/report/predictions", reportHandler.GetPredictions)
	r.Get("/api/report/health-score", reportHandler.GetHealthScore)

	// Pipeline control
	r.Post("/api/refresh", reportHandler.Refresh)
	r.Post("/api/sync", reportHandler.RunSync)
	r.Get("/api/status", reportHandler.GetStatus)

	// Exports
	r.Get("/api/export/transactions.csv", exportHandler.ExportTransactionsCSV)
	r.Get("/api/export/report.pdf", exportHandler.ExportReportPDF)
	r.Get("/api/export/report.txt", exportHandler.ExportReportText)

	// Chat
	r.Post("/api/chat", chatHandler.Chat)

	return r
}

// Run builds the engine, runs the initial refresh, and serves the API until
// SIGINT/SIGTERM, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	eng, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	defer func() { _ = eng.Close() }()

	syncer, err := sheets.NewSyncer(ctx, cfg.Sheets)
	if err != nil {
		return fmt.Errorf("initializing sheet sync: %w", err)
	}

	// First pipeline run at startup; a failure here is not fatal, the
	// API serves 404s until data shows up and a refresh is triggered.
	if _, err := eng.Refresh(ctx); err != nil {
		logger.Warn("Initial refresh failed", slog.String("error", err.Error()))
	}

	// Scheduler for the periodic refresh + sheet sync
	var refreshScheduler *scheduler.Scheduler
	var sched handler.RefreshScheduler
	if cfg.SyncEnabled {
		schedCfg := scheduler.DefaultConfig()
		if cfg.SyncSchedule != "" {
			schedCfg.Schedule = cfg.SyncSchedule
		}
		if cfg.SyncTimeout > 0 {
			schedCfg.Timeout = cfg.SyncTimeout
		}
		refreshScheduler = scheduler.New(schedCfg, eng, syncer, logger)
		if err := refreshScheduler.Start(); err != nil {
			logger.Error("Failed to start scheduler", slog.String("error", err.Error()))
		}
		sched = refreshScheduler
	}

	router := NewRouter(cfg, eng, sched)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(done)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", port), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-done:
	case <-ctx.Done():
	}
	logger.Info("Server stopping...")

	if refreshScheduler != nil {
		<-refreshScheduler.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

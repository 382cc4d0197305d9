package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sofia-praxis/dental-calendar/internal/api/router"
	"github.com/sofia-praxis/dental-calendar/internal/appointments"
	"github.com/sofia-praxis/dental-calendar/internal/assistant"
	"github.com/sofia-praxis/dental-calendar/internal/availability"
	appconfig "github.com/sofia-praxis/dental-calendar/internal/config"
	"github.com/sofia-praxis/dental-calendar/internal/demo"
	"github.com/sofia-praxis/dental-calendar/internal/events"
	"github.com/sofia-praxis/dental-calendar/internal/observability/metrics"
	"github.com/sofia-praxis/dental-calendar/pkg/logging"
)

// setupMetrics builds the registry, the booking metrics and the /metrics
// handler exposing them.
func setupMetrics() (http.Handler, *metrics.BookingMetrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.NewBookingMetrics(registry)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), bookingMetrics
}

func main() {
	// Local .env is optional; real deployments use the environment.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel, cfg.Env)
	logger.Info("starting dental-calendar API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"database", cfg.DatabasePath,
	)

	// Storage
	store, err := appointments.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open appointment store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	metricsHandler, bookingMetrics := setupMetrics()

	// Core services
	hub := events.NewHub(bookingMetrics, logger)
	svc := appointments.NewService(store, hub, bookingMetrics, logger)
	finder := availability.NewFinder(store, bookingMetrics)

	transport, err := assistant.NewTransport(cfg.AssistantTransport, hub, logger)
	if err != nil {
		logger.Error("failed to configure assistant transport", "error", err)
		os.Exit(1)
	}
	logger.Info("assistant transport configured", "transport", transport.Name())

	// Setup router
	routerCfg := &router.Config{
		Logger:              logger,
		AppointmentsHandler: appointments.NewHandler(svc, logger),
		AvailabilityHandler: availability.NewHandler(finder, cfg.SlotScanHorizonDays, cfg.SuggestDaysDefault, cfg.SuggestLimitDefault, logger),
		AssistantHandler:    assistant.NewHandler(svc, finder, transport, logger),
		Hub:                 hub,
		MetricsHandler:      metricsHandler,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	}
	if cfg.DemoSeedEnabled {
		logger.Warn("demo seeding routes enabled")
		routerCfg.DemoSeeder = demo.NewSeeder(svc, logger)
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

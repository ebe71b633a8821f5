// Package main provides the entrypoint for the railops API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/railops/railops/internal/api"
	"github.com/railops/railops/internal/api/middleware"
	"github.com/railops/railops/internal/config"
	"github.com/railops/railops/internal/database"
	"github.com/railops/railops/internal/engine"
	"github.com/railops/railops/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "railops-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting railops API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTELEnabled,
		Component:      "api",
		TimeZone:       cfg.Location.String(),
		ServiceClasses: cfg.ServiceClasses,
		RosterSource:   cfg.RosterSource(),
		SampleRatio:    cfg.OTELSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTELEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	dbConfig := database.ConfigFromEnv()
	store, closeStore, err := engine.OpenStore(ctx, cfg.FixturePath, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open roster store")
	}
	defer closeStore()
	if cfg.FixturePath != "" {
		log.Info().Str("fixture", cfg.FixturePath).Msg("serving roster fixture")
	} else {
		log.Info().Str("database", dbConfig.Redacted()).Msg("database connected")
	}

	svc := engine.NewService(engine.ServiceConfig{
		Duties:      store,
		Trips:       store,
		Units:       store,
		Logger:      log,
		CacheTTL:    cfg.RefreshInterval,
		Instruments: tp.Instruments,
		Location:    cfg.Location,
	})

	// Warm the cache; a failure here is served as 503 until the store is back.
	if _, err := svc.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("initial snapshot load failed")
	}

	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		Engine:             svc,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RequireTLS:         cfg.RequireTLS,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("tz", cfg.Location.String()).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

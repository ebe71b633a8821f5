// Package main provides the entrypoint for the railops status worker.
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

	"github.com/railops/railops/internal/config"
	"github.com/railops/railops/internal/database"
	"github.com/railops/railops/internal/engine"
	"github.com/railops/railops/internal/telemetry"
	"github.com/railops/railops/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "railops-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().Str("build_time", BuildTime).Msg("starting railops worker")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTELEnabled,
		Component:      "worker",
		TimeZone:       cfg.Location.String(),
		ServiceClasses: cfg.ServiceClasses,
		RosterSource:   cfg.RosterSource(),
		SampleRatio:    cfg.OTELSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	store, closeStore, err := engine.OpenStore(ctx, cfg.FixturePath, database.ConfigFromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open roster store")
	}
	defer closeStore()

	svc := engine.NewService(engine.ServiceConfig{
		Duties:      store,
		Trips:       store,
		Units:       store,
		Logger:      log,
		CacheTTL:    cfg.RefreshInterval,
		Instruments: tp.Instruments,
		Location:    cfg.Location,
	})

	collector := worker.NewCollector(cfg.RefreshInterval)
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = collector.Serve(cfg.MetricsAddr, log)
	}

	job := worker.NewStatusJob(worker.StatusJobOptions{
		Config: worker.StatusJobConfig{
			ServiceClasses: cfg.ServiceClasses,
			Interval:       cfg.RefreshInterval,
		},
		Logger:    log,
		Engine:    svc,
		Collector: collector,
	})
	go job.Start(ctx)

	if cfg.PubSubSubscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSubProject,
			SubscriptionName: cfg.PubSubSubscription,
			Dispatcher:       worker.NewDispatcher(job, log),
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer func() {
			if err := handler.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close pubsub client")
			}
		}()

		go func() {
			if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Info().Msg("no pubsub subscription configured, running on ticker only")
	}

	// Health endpoint for the container platform.
	mux := http.NewServeMux()
	mux.Handle("/health", worker.HealthHandler(Version, svc, job))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("metrics server forced to shutdown")
		}
	}

	log.Info().Msg("worker stopped")
}

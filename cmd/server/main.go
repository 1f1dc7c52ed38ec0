/*
main.go - Metrics gateway entry point

PURPOSE:
  Starts the metrics gateway in front of the back-office API.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Configure logger
  2. Load configuration (defaults, optional YAML file, environment)
  3. Open the snapshot archive if SNAPSHOT_DB is set
  4. Create the back-office client and API handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config file (optional)

ENVIRONMENT:
  AGENCY_API_BASE_URL, AGENCY_TIMEOUT, AGENCY_TIMEZONE, PORT,
  ALLOWED_ORIGINS, LOG_LEVEL, SNAPSHOT_DB. A .env file is read if present.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the snapshot archive
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Settings
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prime/backoffice/api"
	"github.com/prime/backoffice/client"
	"github.com/prime/backoffice/config"
	"github.com/prime/backoffice/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	flag.Parse()

	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load timezone")
	}

	var store *sqlite.Store
	if cfg.SnapshotDB != "" {
		store, err = sqlite.New(cfg.SnapshotDB)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.SnapshotDB).Msg("failed to open snapshot archive")
		}
		defer store.Close()
	}

	backend := client.New(cfg.API.BaseURL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithLocation(loc),
		client.WithLogger(log.Logger),
	)

	handler := api.NewHandler(backend, store, log.Logger)
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.API.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("backend", backend.BaseURL()).
			Str("timezone", loc.String()).
			Bool("snapshots", store != nil).
			Strs("allowed_origins", cfg.Server.AllowedOrigins).
			Msg("starting metrics gateway")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}

// Greenhouse Core - remote greenhouse monitoring platform
//
// This is the main entry point for the Greenhouse Core application.
// It wires together the SQLite store, the MQTT broker connection, the
// telemetry ingest loop, and the HTTP REST API, then waits for a
// shutdown signal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/verdant-labs/greenhouse-core/migrations"

	"github.com/verdant-labs/greenhouse-core/internal/api"
	"github.com/verdant-labs/greenhouse-core/internal/auth"
	"github.com/verdant-labs/greenhouse-core/internal/greenhouse"
	"github.com/verdant-labs/greenhouse-core/internal/infrastructure/config"
	"github.com/verdant-labs/greenhouse-core/internal/infrastructure/database"
	"github.com/verdant-labs/greenhouse-core/internal/infrastructure/logging"
	"github.com/verdant-labs/greenhouse-core/internal/infrastructure/mqtt"
	"github.com/verdant-labs/greenhouse-core/internal/ingest"
	"github.com/verdant-labs/greenhouse-core/internal/metrics"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error { //nolint:gocognit // linear wiring of every subsystem
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Greenhouse Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	userRepo := auth.NewUserRepository(db.DB)
	greenhouseRepo := greenhouse.NewRepository(db.DB)
	setpointRepo := greenhouse.NewSetpointRepository(db.DB)
	telemetryRepo := greenhouse.NewTelemetryRepository(db.DB)
	connectionRepo := greenhouse.NewConnectionRepository(db.DB)
	catalogRepo := greenhouse.NewCatalogRepository(db.DB)

	// Prometheus metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Connect to MQTT broker. A broker outage at boot is not fatal: the
	// REST API still serves, and the client keeps retrying in the
	// background once a first connection has succeeded.
	var mqttClient *mqtt.Client
	var notifier greenhouse.SetpointPublisher
	mqttClient, err = mqtt.Connect(cfg.MQTT)
	if err != nil {
		log.Warn("MQTT unavailable, continuing without broker", "error", err)
		mqttClient = nil
	} else {
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		//nolint:gosec // QoS is validated to 0..2 by config
		notifier = greenhouse.NewMQTTNotifier(mqttClient, byte(cfg.MQTT.QoS))
	}

	// Telemetry ingest loop (requires broker)
	if cfg.Ingest.Enabled && mqttClient != nil {
		ingestor := ingest.New(ingest.Deps{
			Client:      mqttClient,
			Greenhouses: greenhouseRepo,
			Telemetry:   telemetryRepo,
			Connections: connectionRepo,
			Metrics:     collector,
			Logger:      log,
			ClockSkew:   time.Duration(cfg.Ingest.ClockSkew) * time.Second,
			QoS:         byte(cfg.MQTT.QoS), //nolint:gosec // QoS is validated to 0..2 by config
		})
		if startErr := ingestor.Start(); startErr != nil {
			return fmt.Errorf("starting ingest: %w", startErr)
		}
		log.Info("telemetry ingest started")
	} else if cfg.Ingest.Enabled {
		log.Warn("telemetry ingest disabled: no broker connection")
	} else {
		log.Info("telemetry ingest disabled")
	}

	// HTTP API server
	server, err := api.New(api.Deps{
		Config:         cfg.API,
		Logger:         log,
		DB:             db,
		MQTT:           mqttClient,
		Notifier:       notifier,
		Metrics:        collector,
		Users:          userRepo,
		Greenhouses:    greenhouseRepo,
		Setpoints:      setpointRepo,
		Telemetry:      telemetryRepo,
		Connections:    connectionRepo,
		Catalog:        catalogRepo,
		JWTSecret:      cfg.Auth.JWTSecret,
		TokenTTL:       cfg.TokenTTL(),
		Version:        version,
		MetricsHandler: metrics.Handler(registry),
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (drains in-flight requests)
	// 2. MQTT (publishes offline status)
	// 3. Database

	log.Info("Greenhouse Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GREENHOUSE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GREENHOUSE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// Package api provides the HTTP REST API server for Greenhouse Core.
//
// It exposes account registration and login, greenhouse and setpoint
// management, telemetry and connection history reads, and the plant and
// timezone catalogues to client applications.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/verdant-labs/greenhouse-core/internal/auth"
	"github.com/verdant-labs/greenhouse-core/internal/greenhouse"
	"github.com/verdant-labs/greenhouse-core/internal/infrastructure/config"
	"github.com/verdant-labs/greenhouse-core/internal/infrastructure/database"
	"github.com/verdant-labs/greenhouse-core/internal/infrastructure/logging"
	"github.com/verdant-labs/greenhouse-core/internal/infrastructure/mqtt"
	"github.com/verdant-labs/greenhouse-core/internal/metrics"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config      config.APIConfig
	Logger      *logging.Logger
	DB          *database.DB
	MQTT        *mqtt.Client // optional: setpoint publishes degrade without it
	Notifier    greenhouse.SetpointPublisher
	Metrics     metrics.MetricsCollector
	Users       auth.UserRepository
	Greenhouses greenhouse.Repository
	Setpoints   greenhouse.SetpointRepository
	Telemetry   greenhouse.TelemetryRepository
	Connections greenhouse.ConnectionRepository
	Catalog     greenhouse.CatalogRepository
	JWTSecret   string
	TokenTTL    time.Duration
	Version     string

	// MetricsHandler serves GET /metrics. Optional; the route is omitted
	// when nil.
	MetricsHandler http.Handler
}

// Server is the HTTP API server for Greenhouse Core.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg            config.APIConfig
	logger         *logging.Logger
	db             *database.DB
	mqtt           *mqtt.Client
	notifier       greenhouse.SetpointPublisher
	metrics        metrics.MetricsCollector
	users          auth.UserRepository
	greenhouses    greenhouse.Repository
	setpoints      greenhouse.SetpointRepository
	telemetry      greenhouse.TelemetryRepository
	connections    greenhouse.ConnectionRepository
	catalog        greenhouse.CatalogRepository
	jwtSecret      string
	tokenTTL       time.Duration
	version        string
	metricsHandler http.Handler
	limiter        *rateLimiter
	server         *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("database is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if deps.Greenhouses == nil {
		return nil, fmt.Errorf("greenhouse repository is required")
	}
	if deps.Setpoints == nil {
		return nil, fmt.Errorf("setpoint repository is required")
	}
	if deps.Telemetry == nil {
		return nil, fmt.Errorf("telemetry repository is required")
	}
	if deps.Connections == nil {
		return nil, fmt.Errorf("connection repository is required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	if deps.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	// MQTT and Notifier are optional: setpoint writes still commit, the
	// retained publish is skipped.

	if deps.Metrics == nil {
		deps.Metrics = metrics.Noop{}
	}

	s := &Server{
		cfg:            deps.Config,
		logger:         deps.Logger,
		db:             deps.DB,
		mqtt:           deps.MQTT,
		notifier:       deps.Notifier,
		metrics:        deps.Metrics,
		users:          deps.Users,
		greenhouses:    deps.Greenhouses,
		setpoints:      deps.Setpoints,
		telemetry:      deps.Telemetry,
		connections:    deps.Connections,
		catalog:        deps.Catalog,
		jwtSecret:      deps.JWTSecret,
		tokenTTL:       deps.TokenTTL,
		version:        deps.Version,
		metricsHandler: deps.MetricsHandler,
		limiter:        newRateLimiter(deps.Config.RateLimit),
	}

	return s, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and its database is reachable.
func (s *Server) HealthCheck(ctx context.Context) error {
	if s.server == nil {
		return fmt.Errorf("API server not started")
	}
	return s.db.HealthCheck(ctx)
}

package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // pprof is intentionally exposed when pprofAddr is configured
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/finstmt/fsg/pkg/api"
	"github.com/finstmt/fsg/pkg/cache"
	"github.com/finstmt/fsg/pkg/dataset"
	"github.com/finstmt/fsg/pkg/frontend"
	"github.com/finstmt/fsg/pkg/ingest"
	"github.com/finstmt/fsg/pkg/observability"
	"github.com/finstmt/fsg/pkg/report"
)

// Application encapsulates the report server: dataset store, report
// catalog, render cache and the HTTP surfaces.
type Application struct {
	config *Config
	logger *logrus.Logger

	store       *dataset.Store
	reports     report.Service
	apiService  api.Service
	redisClient *redis.Client
	scheduler   *cron.Cron

	healthServer *http.Server
	pprofServer  *http.Server
}

// NewApplication creates a new server application
func NewApplication(cfg *Config, logger *logrus.Logger) *Application {
	return &Application{
		config: cfg,
		logger: logger,
	}
}

// Start initializes and starts the server application
func (a *Application) Start() error {
	// Validate configuration
	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.logger.Info("Starting report server...")

	// Start metrics server
	observability.StartMetricsServer(a.config.MetricsAddr, a.logger)

	// Start health check server if configured
	if a.config.HealthCheckAddr != "" {
		a.startHealthCheck()
	}

	// Start pprof server if configured
	if a.config.PProfAddr != "" {
		a.startPProf()
	}

	ctx := context.Background()

	// Load datasets
	a.store = dataset.NewStore()
	if err := a.loadDatasets(); err != nil {
		return err
	}

	// Load report definitions
	a.reports = report.NewService(&a.config.Reports, a.logger)
	if err := a.reports.Start(ctx); err != nil {
		return fmt.Errorf("failed to start report service: %w", err)
	}

	// Connect the render cache
	renderCache, err := a.setupCache(ctx)
	if err != nil {
		return err
	}

	// Frontend assets for the API server
	var frontendHandler http.Handler
	if a.config.Frontend.Enabled {
		frontendHandler, err = frontend.NewHandler()
		if err != nil {
			return fmt.Errorf("failed to setup frontend: %w", err)
		}
	}

	// Start the API server
	a.apiService = api.NewService(&a.config.API, a.reports, a.store, renderCache, frontendHandler, a.logger)
	if err := a.apiService.Start(ctx); err != nil {
		return fmt.Errorf("failed to start api service: %w", err)
	}

	// Schedule periodic reloads of datasets and definitions
	if a.config.Data.Reload != "" {
		if err := a.startScheduler(); err != nil {
			return err
		}
	}

	a.logger.Info("Report server started successfully")

	return nil
}

// Stop gracefully shuts down the server application
func (a *Application) Stop() error {
	a.logger.Info("Shutting down report server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop the reload scheduler and wait for a running job to finish
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
	}

	// Stop the API server
	if a.apiService != nil {
		if err := a.apiService.Stop(); err != nil {
			a.logger.WithError(err).Error("Error stopping api service")
		}
	}

	// Stop the report service
	if a.reports != nil {
		if err := a.reports.Stop(); err != nil {
			a.logger.WithError(err).Error("Error stopping report service")
		}
	}

	// Close the Redis client
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.WithError(err).Error("Failed to close redis client")
		}
	}

	// Stop health check server
	if a.healthServer != nil {
		if err := a.healthServer.Shutdown(ctx); err != nil {
			a.logger.WithError(err).Error("Failed to shutdown health check server")
		}
	}

	// Stop pprof server
	if a.pprofServer != nil {
		if err := a.pprofServer.Shutdown(ctx); err != nil {
			a.logger.WithError(err).Error("Failed to shutdown pprof server")
		}
	}

	return nil
}

func (a *Application) loadDatasets() error {
	datasets, err := ingest.LoadDir(a.config.Data.Dir, a.logger)
	if err != nil {
		return fmt.Errorf("failed to load datasets: %w", err)
	}
	if len(datasets) == 0 {
		a.logger.WithField("dir", a.config.Data.Dir).Warn("No datasets found")
	}

	a.store.Replace(datasets)
	a.logger.WithField("datasets", len(datasets)).Info("Loaded datasets")

	return nil
}

func (a *Application) setupCache(ctx context.Context) (*cache.Cache, error) {
	if !a.config.Cache.Enabled {
		return nil, nil
	}

	a.redisClient = redis.NewClient(&redis.Options{Addr: a.config.Cache.Address})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.redisClient.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	a.logger.WithField("addr", a.config.Cache.Address).Info("Connected render cache")

	return cache.New(a.redisClient, &a.config.Cache), nil
}

func (a *Application) startScheduler() error {
	a.scheduler = cron.New()

	_, err := a.scheduler.AddFunc(a.config.Data.Reload, func() {
		if err := a.loadDatasets(); err != nil {
			a.logger.WithError(err).Error("Dataset reload failed")
		}
		if err := a.reports.Reload(); err != nil {
			a.logger.WithError(err).Error("Report definition reload failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", a.config.Data.Reload, err)
	}

	a.scheduler.Start()
	a.logger.WithField("schedule", a.config.Data.Reload).Info("Scheduled dataset reloads")

	return nil
}

func (a *Application) startHealthCheck() {
	a.logger.WithField("addr", a.config.HealthCheckAddr).Info("Starting health check server")

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		if a.reports != nil && len(a.reports.List()) > 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("READY"))
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT READY"))
		}
	})

	a.healthServer = &http.Server{
		Addr:              a.config.HealthCheckAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := a.healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.WithError(err).Error("Health check server failed")
		}
	}()
}

func (a *Application) startPProf() {
	a.logger.WithField("addr", a.config.PProfAddr).Info("Starting pprof server")

	a.pprofServer = &http.Server{
		Addr:              a.config.PProfAddr,
		ReadHeaderTimeout: 120 * time.Second,
	}

	go func() {
		if err := a.pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.WithError(err).Error("Pprof server failed")
		}
	}()
}

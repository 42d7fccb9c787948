package app

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"finboard/internal/config"
	apierrors "finboard/internal/errors"
	"finboard/internal/files"
	"finboard/internal/infrastructure"
	customMiddleware "finboard/internal/middleware"
	"finboard/internal/services"
	handlers "finboard/internal/transport/http"
	"finboard/pkg/contracts"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

const (
	VERSION = contracts.Version
	AppName = "FinBoard"
)

var (
	// BuildTime is set at compile time
	BuildTime = buildTime()
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

// buildTime prefers the ldflags-injected timestamp and falls back to
// process start for development builds.
func buildTime() string {
	if contracts.BuildTime != "unknown" {
		return contracts.BuildTime
	}
	return time.Now().Format(time.RFC3339)
}

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(VERSION))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	Discovery        *files.Discovery
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.DashboardMetrics
	Collector        *infrastructure.SystemMetricsCollector
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize single infrastructure logger
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.String("build_id", BuildID))

	// Ensure all required directories exist
	logger.Info("Ensuring required directories exist")
	if err := cfg.EnsurePaths(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	logger.Info("Application paths resolved",
		slog.String("data_dir", cfg.GetDataDir()),
		slog.String("reports_dir", cfg.GetReportsDir()),
		slog.String("logs_dir", cfg.GetLogsDir()))

	// Initialize OpenTelemetry providers
	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	// Initialize services
	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Setup router with all middleware and routes
	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}

	// Create HTTP server
	app.createServer()

	logger.Info("Application initialized successfully",
		slog.Int("port", cfg.Server.Port),
		slog.Int("dashboards", len(app.DashboardService.Dashboards())))

	return app, nil
}

// initializeServices creates all application services
func (a *Application) initializeServices() error {
	// Dashboard load and chart render instruments
	metrics, err := infrastructure.CreateDashboardMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create dashboard metrics: %w", err)
	}
	a.Metrics = metrics

	// Periodic system metrics collection
	collector, err := infrastructure.NewSystemMetricsCollector(a.OTelProviders.Meter, 30*time.Second)
	if err != nil {
		return fmt.Errorf("failed to create system metrics collector: %w", err)
	}
	a.Collector = collector

	a.Discovery = files.NewDiscovery(a.Config.GetDataDir(), a.Config.GetReportsDir(), a.Logger)
	a.DashboardService = services.NewDashboardServiceWithMetrics(a.Config, a.Logger, a.Metrics)
	a.HealthService = services.NewHealthServiceWithBuildInfo(
		VERSION, BuildTime, BuildID,
		a.Config.Paths, a.Config.Dashboard,
		a.Collector, a.Logger)

	return nil
}

// setupRouter configures the chi router with middleware and routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	// Request ID and real IP come first so every downstream
	// middleware sees them
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return fmt.Errorf("failed to create OTel middleware: %w", err)
	}

	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Level == "debug")
	dashboardHandler := handlers.NewDashboardHandler(a.DashboardService, a.Logger, errorHandler)
	resourceHandler := handlers.NewResourceHandler(a.Discovery, a.Config.GetDataDir(), a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		r.Use(otelMiddleware.Handler)
		r.Use(customMiddleware.DashboardMetricsMiddleware(a.Metrics))
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		// gzip for HTML and JSON; PNG charts and workbook
		// downloads are not in chi's compressible set
		r.Use(customMiddleware.Compress(5))

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			rateLimiter := customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger)
			r.Use(rateLimiter.Handler)
		}

		a.setupAPIRoutes(r, dashboardHandler, resourceHandler, healthHandler)
		a.setupPageRoutes(r, dashboardHandler, resourceHandler)
	})

	// Prometheus endpoint stays outside the middleware group so
	// scrapes are not rate limited or traced
	if a.OTelProviders.PrometheusHTTP != nil {
		metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.Logger)
		r.Get("/metrics", metricsHandler.Metrics)
	}

	a.Router = r
	return nil
}

// setupAPIRoutes configures the JSON API under /api
func (a *Application) setupAPIRoutes(r chi.Router, dashboardHandler *handlers.DashboardHandler, resourceHandler *handlers.ResourceHandler, healthHandler *handlers.HealthHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/health/detailed", healthHandler.DetailedHealth)
			r.Get("/version", healthHandler.Version)

			r.Mount("/dashboards", dashboardHandler.Routes())
			r.Mount("/resources", resourceHandler.Routes())
		})
	})
}

// setupPageRoutes configures the HTML pages and static workbook downloads
func (a *Application) setupPageRoutes(r chi.Router, dashboardHandler *handlers.DashboardHandler, resourceHandler *handlers.ResourceHandler) {
	r.Get("/", dashboardHandler.RedirectToDefault)
	r.Mount("/dashboards", dashboardHandler.PageRoutes())

	// Source workbooks are downloadable from the site root. chi
	// panics on duplicate patterns, so register each name once.
	seen := make(map[string]struct{})
	for _, name := range []string{a.Config.Dashboard.ExpenseResource, a.Config.Dashboard.PerformanceResource} {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		r.Get("/"+name, resourceHandler.ServeWorkbook(name))
	}
}

// createServer creates the HTTP server with proper timeouts
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// getCORSConfig builds the CORS configuration from security settings
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins:   a.Config.Security.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// Start begins serving HTTP traffic. It returns immediately; the
// server runs on a background goroutine and cancel is invoked if it
// exits with an error.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Collector.Start(ctx)

	go func() {
		a.Logger.Info("HTTP server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("version", VERSION))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Error("HTTP server failed", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.performStartupHealthCheck(ctx)
	return nil
}

// performStartupHealthCheck probes the working directories and source
// workbooks so misconfiguration is visible in the logs at startup
// instead of on the first request.
func (a *Application) performStartupHealthCheck(ctx context.Context) {
	var warnings []string

	for _, dir := range []string{a.Config.GetDataDir(), a.Config.GetReportsDir(), a.Config.GetLogsDir()} {
		probe := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s is not writable: %v", dir, err))
			continue
		}
		os.Remove(probe)
	}

	status := a.HealthService.ReadinessCheck(ctx)
	if status.Status != "ready" {
		for name, entry := range status.Services {
			if svc, ok := entry.(services.ServiceHealth); ok && svc.Status != "ready" {
				warnings = append(warnings, fmt.Sprintf("%s: %s", name, svc.Message))
			}
		}
	}

	if len(warnings) > 0 {
		a.Logger.Warn("Startup health check reported issues",
			slog.String("warnings", strings.Join(warnings, "; ")))
		return
	}
	a.Logger.Info("Startup health check passed")
}

// Stop gracefully shuts down the application
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.Info("Shutting down HTTP server")
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.Collector.Stop()
	a.DashboardService.Close()

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warn("OpenTelemetry shutdown failed", slog.String("error", err.Error()))
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.Warn("Log file close failed", slog.String("error", err.Error()))
	}

	a.Logger.Info("Application stopped")
	return nil
}

// Run starts the application and blocks until a shutdown signal or a
// fatal server error.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	select {
	case sig := <-sigChan:
		a.Logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.Info("Server context cancelled, shutting down")
	}

	return a.Stop(context.Background())
}

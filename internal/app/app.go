package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"loteriadash/internal/charts"
	"loteriadash/internal/config"
	"loteriadash/internal/dataprocessing"
	"loteriadash/internal/errors"
	"loteriadash/internal/exporter"
	"loteriadash/internal/files"
	"loteriadash/internal/infrastructure"
	customMiddleware "loteriadash/internal/middleware"
	"loteriadash/internal/narrative"
	"loteriadash/internal/services"
	handlers "loteriadash/internal/transport/http"
	"loteriadash/internal/watcher"
	ws "loteriadash/internal/websocket"
	"loteriadash/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics

	WebSocketHub     *ws.Hub
	DatasetService   *services.DatasetService
	NarrativeService *services.NarrativeService
	HealthService    *services.HealthService
	Watcher          *watcher.Watcher

	stopBackground context.CancelFunc
	background     sync.WaitGroup
}

// NewApplication loads configuration from the environment and config files
// and wires the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig wires the application from an already loaded config
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging, paths.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	if !config.FileExists(paths.DatasetPath(cfg.Dataset.FileName)) {
		logger.Warn("Dataset file not found",
			slog.String("path", paths.DatasetPath(cfg.Dataset.FileName)),
			slog.String("action", "the dashboard will report the missing file until it appears"))
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		logger.Warn("Business metrics unavailable", slog.String("error", err.Error()))
		metrics = infrastructure.NoopBusinessMetrics()
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	hub := ws.NewHub(a.Logger)
	a.WebSocketHub = hub

	manager := files.NewManager(a.Paths, a.Logger)
	loader := dataprocessing.NewLoader(a.Paths.DataDir, a.Config.Dataset.FileName, a.Logger, a.Metrics)
	cache := dataprocessing.NewCache(loader,
		dataprocessing.WithStalenessCheck(a.Config.Dataset.CheckStale),
		dataprocessing.WithCacheMetrics(a.Metrics))
	summarizer := dataprocessing.NewSummarizer(a.Logger, dataprocessing.SummarizerConfig{
		MaxBytes: a.Config.Narrative.MaxContextBytes,
	})

	a.DatasetService = services.NewDatasetService(cache, summarizer, a.Logger,
		services.WithPublisher(hub),
		services.WithExporter(exporter.NewExporter(manager, a.Logger)),
		services.WithCharts(charts.DefaultOptions(), a.Paths.ChartsDir),
		services.WithMetrics(a.Metrics))

	var generator narrative.Generator
	if a.Config.Narrative.Enabled() {
		gemini, err := narrative.NewGemini(context.Background(), narrative.GeminiConfigFrom(a.Config.Narrative), a.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize narrative generator: %w", err)
		}
		generator = gemini
	} else {
		a.Logger.Warn("Narrative generator not configured",
			slog.String("setting", config.EnvPrefix+"_NARRATIVE_API_KEY"))
	}
	a.NarrativeService = services.NewNarrativeService(generator, a.DatasetService, services.NarrativeConfig{
		Model: a.Config.Narrative.Model,
		RPS:   a.Config.Narrative.RPS,
		Burst: a.Config.Narrative.Burst,
	}, a.Metrics, a.Logger)

	a.HealthService = services.NewHealthService(
		config.AppVersion,
		contracts.BuildTime,
		a.Paths,
		a.DatasetService,
		a.NarrativeService,
		hub,
		a.Logger,
	)

	if a.Config.Dataset.Watch {
		a.Watcher = watcher.New(a.Paths.DataDir, a.Config.Dataset.FileName, a.Config.Dataset.WatchDebounce, cache, a.Logger)
		a.Watcher.OnChange(func(path string, op fsnotify.Op) {
			a.DatasetService.SourceChanged(path, op.String())
		})
	}

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	validation := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler)

	// Minimal middleware that does not wrap the ResponseWriter, so /ws can hijack
	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)

	// Set on the root mux before any group or mount so sub-routers inherit them
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", handlers.NewWebSocketHandler(a.WebSocketHub, handlers.WebSocketConfig{
		AllowedOrigins:  a.Config.Security.AllowedOrigins,
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		PongWait:        a.Config.WebSocket.PongWait,
		DevMode:         a.Config.Logging.Development,
	}, a.Logger))

	// Prometheus endpoint outside the middleware group
	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.WebSocketHub)
	r.Handle(config.MetricsEndpoint, metricsHandler)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Security → CORS → RateLimit → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(errors.RecoveryMiddleware(errorHandler))
		secure := customMiddleware.DefaultSecureHeaders()
		secure.DevMode = a.Config.Logging.Development
		r.Use(secure.Handler)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

		a.setupAPIRoutes(r, validation, errorHandler, metricsHandler)

		r.Handle("/", handlers.NewDashboardHandler(a.dashboardPage, a.Logger, errorHandler))
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, validation *customMiddleware.ValidationMiddleware, errorHandler *errors.ErrorHandler, metricsHandler *handlers.MetricsHandler) {
	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(validation.ValidateRequest)

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Mount("/dataset", handlers.NewDatasetHandler(a.DatasetService, validation, a.Logger, errorHandler).Routes())
		r.Mount("/stats", handlers.NewStatsHandler(a.DatasetService, validation, a.Logger, errorHandler).Routes())
		r.Mount("/charts", handlers.NewChartHandler(a.DatasetService, validation, a.Logger, errorHandler).Routes())
		r.Mount("/ai", handlers.NewNarrativeHandler(a.NarrativeService, validation, a.Logger, errorHandler).Routes())

		r.With(customMiddleware.ContentTypeValidator("application/json")).
			Post("/client-log", handlers.NewClientLogHandler(validation, a.Logger, errorHandler).Handle)
		r.Get("/ws/stats", metricsHandler.WebSocketStats)
	})
}

func (a *Application) dashboardPage() handlers.DashboardPage {
	return handlers.DashboardPage{
		Title:       config.AppName,
		Version:     config.AppVersion,
		Charts:      charts.Names(),
		AIEnabled:   a.NarrativeService.Configured(),
		GeneratedAt: time.Now().Format(time.RFC3339),
	}
}

// getCORSConfig allows the configured origins plus the server's own address
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	origins := []string{
		"http://localhost:" + strconv.Itoa(a.Config.Server.Port),
		"http://127.0.0.1:" + strconv.Itoa(a.Config.Server.Port),
	}
	for _, origin := range a.Config.Security.AllowedOrigins {
		if origin != "" && !slices.Contains(origins, origin) {
			origins = append(origins, origin)
		}
	}

	return customMiddleware.CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           net.JoinHostPort(a.Config.Server.Host, strconv.Itoa(a.Config.Server.Port)),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the hub, the dataset watcher and the HTTP server. A server
// failure cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	a.WebSocketHub.Start()

	bgCtx, stop := context.WithCancel(context.Background())
	a.stopBackground = stop
	if a.Watcher != nil {
		a.background.Add(1)
		go func() {
			defer a.background.Done()
			if err := a.Watcher.Run(bgCtx); err != nil {
				a.Logger.ErrorContext(bgCtx, "Dataset watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	listener, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	go func() {
		if err := a.Server.Serve(listener); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", "http://"+listener.Addr().String()))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		shutdownErr = fmt.Errorf("server shutdown error: %w", err)
	}

	if a.stopBackground != nil {
		a.stopBackground()
		a.background.Wait()
	}
	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil && shutdownErr == nil {
		shutdownErr = fmt.Errorf("failed to close log file: %w", err)
	}
	return shutdownErr
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("Received shutdown signal")

	return a.Stop(context.Background())
}

// performStartupHealthCheck verifies the output directories are writable
// and that the dataset can be read
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string

	directories := map[string]string{
		"Reports": a.Paths.ReportsDir,
		"Charts":  a.Paths.ChartsDir,
		"Logs":    a.Paths.LogsDir,
	}
	for name, dir := range directories {
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
		} else {
			os.Remove(testFile)
		}
	}

	report, err := a.DatasetService.Report(ctx)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("dataset not loaded: %v", err))
	} else {
		a.Logger.InfoContext(ctx, "Dataset loaded",
			slog.String("source", report.SourcePath),
			slog.Int("rows", report.OutputRows),
			slog.Int("dropped", report.DroppedRows()))
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/daybook/core/docs"
	httpHandlers "github.com/daybook/core/internal/adapters/http"
	"github.com/daybook/core/internal/application/loader"
	"github.com/daybook/core/internal/application/orchestrator"
	"github.com/daybook/core/internal/application/retry"
	"github.com/daybook/core/internal/application/services"
	"github.com/daybook/core/internal/infrastructure/config"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/infrastructure/metrics"
	"github.com/daybook/core/internal/ports"
)

// HealthCheck probes one dependency for /ready.
type HealthCheck func(ctx context.Context) error

// Backend is everything the server needs from the storage side.
type Backend struct {
	Users        ports.UserRepository
	Notes        ports.NoteRepository
	FutureTasks  ports.FutureTaskRepository
	Payroll      ports.PayrollRepository
	WorkTracking ports.WorkTrackingRepository
	SpecialDays  ports.SpecialDayRepository

	Cache    ports.CacheRepository
	Fallback ports.FallbackStore

	Checks map[string]HealthCheck
	// Stats is optional and reported by /health/detailed.
	Stats func() map[string]interface{}
}

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	metrics *metrics.Metrics
	backend Backend
}

// New wires services and handlers on top of backend. m may be nil.
func New(cfg *config.Config, backend Backend, appLogger *logger.Logger, m *metrics.Metrics) (*Server, error) {
	if appLogger == nil {
		appLogger = logger.NewNop()
	}
	if backend.Cache == nil {
		return nil, fmt.Errorf("cache repository is required")
	}

	e := echo.New()
	e.Validator = httpHandlers.NewValidator()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpHandlers.ErrorHandler(appLogger)

	registry := orchestrator.NewRegistry(
		orchestrator.WithLogger(appLogger),
		orchestrator.WithMetrics(m),
	)
	writer := services.NewSyncWriter(registry, backend.Fallback, backend.Cache, cfg.Sync.RequestTimeout, appLogger)

	snapshotLoader := loader.New(loader.Sources{
		Notes:        backend.Notes,
		FutureTasks:  backend.FutureTasks,
		Payroll:      backend.Payroll,
		WorkTracking: backend.WorkTracking,
	}, backend.Cache, loader.Config{
		TTL:         cfg.Cache.TTL,
		ReadTimeout: cfg.Sync.RequestTimeout,
	}, appLogger, m)
	policy := retry.New(cfg.Sync.RetryCount, cfg.Sync.RetryDelay,
		retry.WithLogger(appLogger),
		retry.WithMetrics(m),
	)

	authService := services.NewAuthService(backend.Users, backend.Cache, registry, cfg.JWT, appLogger)
	snapshotService := services.NewSnapshotService(snapshotLoader, policy)
	noteService := services.NewNoteService(backend.Notes, writer, appLogger)
	futureTaskService := services.NewFutureTaskService(backend.FutureTasks, backend.Cache, writer, cfg.Cache.TTL, appLogger)
	workService := services.NewWorkService(backend.Notes, backend.Payroll, backend.WorkTracking, writer, appLogger)
	specialDayService := services.NewSpecialDayService(backend.SpecialDays, writer)
	syncService := services.NewSyncService(registry)

	s := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger.WithComponent("server"),
		metrics: m,
		backend: backend,
	}

	s.setupMiddleware()
	s.setupRoutes(routes{
		auth:        httpHandlers.NewAuthHandler(authService, appLogger),
		snapshot:    httpHandlers.NewSnapshotHandler(snapshotService),
		notes:       httpHandlers.NewNoteHandler(noteService),
		futureTasks: httpHandlers.NewFutureTaskHandler(futureTaskService),
		work:        httpHandlers.NewWorkHandler(workService, specialDayService),
		sync:        httpHandlers.NewSyncHandler(syncService),
	}, authService)

	return s, nil
}

type routes struct {
	auth        *httpHandlers.AuthHandler
	snapshot    *httpHandlers.SnapshotHandler
	notes       *httpHandlers.NoteHandler
	futureTasks *httpHandlers.FutureTaskHandler
	work        *httpHandlers.WorkHandler
	sync        *httpHandlers.SyncHandler
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(r routes, authService ports.AuthService) {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	if s.metrics != nil && s.config.Metrics.Enabled {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	}

	v1 := s.echo.Group("/api/v1")
	requireAuth := s.authMiddleware(authService)

	authGroup := v1.Group("/auth")
	authGroup.POST("/signup", r.auth.SignUp)
	authGroup.POST("/login", r.auth.Login)
	authGroup.POST("/signout", r.auth.SignOut, requireAuth)
	authGroup.GET("/me", r.auth.Me, requireAuth)

	v1.GET("/snapshot", r.snapshot.Get, requireAuth)

	notes := v1.Group("/notes", requireAuth)
	notes.GET("", r.notes.List)
	notes.POST("", r.notes.Create)
	notes.PATCH("/:id", r.notes.Update)
	notes.DELETE("/:id", r.notes.Delete)

	futureTasks := v1.Group("/future-tasks", requireAuth)
	futureTasks.GET("", r.futureTasks.List)
	futureTasks.POST("", r.futureTasks.Create)
	futureTasks.PATCH("/:id", r.futureTasks.Update)
	futureTasks.DELETE("/:id", r.futureTasks.Delete)

	work := v1.Group("/work", requireAuth)
	work.GET("/status", r.work.Status)
	work.GET("/payroll", r.work.History)
	work.POST("/payroll", r.work.ConfirmPayroll)

	specialDays := v1.Group("/special-days", requireAuth)
	specialDays.GET("", r.work.ListSpecialDays)
	specialDays.PUT("/:date", r.work.SetSpecialDay)
	specialDays.DELETE("/:date", r.work.DeleteSpecialDay)

	syncGroup := v1.Group("/sync", requireAuth)
	syncGroup.GET("", r.sync.State)
	syncGroup.POST("/reset", r.sync.Reset)
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) runChecks(ctx context.Context) (map[string]interface{}, bool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	healthy := true
	checks := make(map[string]interface{}, len(s.backend.Checks))
	for name, check := range s.backend.Checks {
		if err := check(ctx); err != nil {
			healthy = false
			checks[name] = map[string]interface{}{"status": "error", "error": err.Error()}
			continue
		}
		checks[name] = map[string]interface{}{"status": "ok"}
	}
	return checks, healthy
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	checks, healthy := s.runChecks(c.Request().Context())

	status := "ok"
	if !healthy {
		status = "error"
	}

	response := map[string]interface{}{
		"status":  status,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"checks":  checks,
		"version": s.config.App.Version,
	}
	if s.backend.Stats != nil {
		response["database"] = s.backend.Stats()
	}

	if healthy {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if checks, healthy := s.runChecks(c.Request().Context()); !healthy {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"checks": checks,
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout
	s.echo.Server.IdleTimeout = s.config.Server.IdleTimeout

	s.logger.Infow("Starting server", "address", address)
	if err := s.echo.Start(address); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpHandlers "github.com/tododash/core/internal/adapters/http"
	"github.com/tododash/core/internal/adapters/i18n"
	"github.com/tododash/core/internal/adapters/repository"
	"github.com/tododash/core/internal/adapters/todoist"
	"github.com/tododash/core/internal/application/services"
	"github.com/tododash/core/internal/infrastructure/config"
	"github.com/tododash/core/internal/infrastructure/database"
	"github.com/tododash/core/internal/infrastructure/logger"
	"github.com/tododash/core/internal/infrastructure/metrics"
	"github.com/tododash/core/internal/ports"
)

// Server represents the HTTP server and the refresh loop it drives.
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	db      *database.DB // nil when snapshots are disabled
	metrics *metrics.Metrics
	refresh *services.RefreshService
	cancel  context.CancelFunc
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance
func New(cfg *config.Config, db *database.DB, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	m := metrics.New()

	// Initialize the snapshot store when enabled
	var snapshots ports.SnapshotRepository
	if db != nil {
		repo, err := repository.NewSnapshotRepository(db.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize snapshot repository: %w", err)
		}
		snapshots = repo
	}

	// Initialize services
	translator := i18n.New(cfg.Dashboard.Language)
	fetcher := todoist.NewClient(cfg.Todoist, appLogger)
	filterService := services.NewFilterService(appLogger)
	labelService := services.NewDueLabelService(translator, cfg.Dashboard.TimeFormat)
	scheduler := services.NewScheduler(cfg.Dashboard.UpdateInterval)
	refreshService := services.NewRefreshService(fetcher, filterService, snapshots, scheduler, cfg.Dashboard.Filters, m, appLogger)

	// Initialize handlers
	viewHandler := httpHandlers.NewViewHandler(refreshService, labelService, translator, cfg.Dashboard, appLogger)
	schedulerHandler := httpHandlers.NewSchedulerHandler(scheduler, appLogger)

	server := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger,
		db:      db,
		metrics: m,
		refresh: refreshService,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes(viewHandler, schedulerHandler)

	// Setup metrics
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.POST},
	}))

	// Rate limiting middleware
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(s.config.Security.RateLimitRequests), Burst: s.config.Security.RateLimitRequests, ExpiresIn: s.config.Security.RateLimitWindow},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			id := ctx.RealIP()
			return id, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}))

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Timeout middleware
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(viewHandler *httpHandlers.ViewHandler, schedulerHandler *httpHandlers.SchedulerHandler) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	v1.GET("/views", viewHandler.ListViews)
	v1.GET("/views/:name", viewHandler.GetView)
	v1.POST("/refresh", viewHandler.ForceRefresh)

	schedulerGroup := v1.Group("/scheduler")
	schedulerGroup.GET("", schedulerHandler.GetState)
	schedulerGroup.POST("/suspend", schedulerHandler.Suspend)
	schedulerGroup.POST("/resume", schedulerHandler.Resume)
	schedulerGroup.POST("/presence", schedulerHandler.SetPresence)
}

// setupMetrics wires the HTTP request collectors and the /metrics endpoint.
func (s *Server) setupMetrics() {
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			s.metrics.HTTPRequestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			s.metrics.HTTPRequestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	metricsHandler := promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	if s.db != nil {
		if err := s.db.HealthCheck(); err != nil {
			status = "error"
			checks["snapshot_db"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		} else {
			checks["snapshot_db"] = map[string]interface{}{
				"status": "ok",
				"stats":  s.db.GetConnectionInfo(),
			}
		}
	}

	_, payload, lastUpdate := s.refresh.Views()
	checks["views"] = map[string]interface{}{
		"loaded":      payload != nil,
		"last_update": lastUpdate,
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": "snapshot_db_not_ready",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start restores the last snapshot, launches the refresh loop and serves
// HTTP until Shutdown.
func (s *Server) Start(address string) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if err := s.refresh.Restore(ctx); err != nil {
		s.logger.Warnw("Snapshot restore failed", "error", err)
	}

	go s.refresh.Run(ctx, s.config.Dashboard.UpdateInterval)

	s.logger.Info("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server and the refresh loop.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	if s.cancel != nil {
		s.cancel()
	}
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = he.Message
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if e, ok := err.(validator.ValidationErrors); ok {
			code = http.StatusBadRequest
			msg = map[string]string{"message": "validation failed", "details": e.Error()}
		} else {
			msg = map[string]string{"message": http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Error("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		// Send response
		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Error("Error sending response", "error", err)
			}
		}
	}
}

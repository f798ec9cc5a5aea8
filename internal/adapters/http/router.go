package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/go-mdc/internal/adapters/http/handlers"
	"github.com/jsamuelsen/go-mdc/internal/adapters/http/middleware"
	"github.com/jsamuelsen/go-mdc/internal/platform/config"
	"github.com/jsamuelsen/go-mdc/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// ContextHandler exposes the diagnostic context endpoints.
	ContextHandler *handlers.ContextHandler

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Diagnostic context - attach a fresh per-request store
//  3. Request ID - generate/extract request ID, seed it into the store
//  4. Correlation ID - same for the correlation ID
//  5. OpenTelemetry - tracing, metrics, trace ID into the store
//  6. Logging - request logging (skips health endpoints)
//  7. Timeout - request deadline (applied per-route or globally)
//
// The diagnostic context must be attached before anything writes to it;
// later middleware and handlers see the same store through the request
// context.
//
// Route groups:
//   - /-/ (internal): Health endpoints
//   - /api/v1/ (public API): Context endpoints
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	// Apply global middleware in order
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.DiagnosticContext(),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.AppConfig.Name),
		telemetry.Middleware(cfg.AppConfig.Name),
		middleware.Logging(cfg.Logger),
	)

	// Register health endpoints (no timeout for probes)
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	// Setup API v1 routes with timeout
	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.SimpleTimeout(cfg.Timeout))
	}

	if cfg.ContextHandler != nil {
		cfg.ContextHandler.RegisterContextRoutes(apiV1)
	}
}

// SetupMinimalRouter sets up a minimal router with just health endpoints.
// Useful for testing or lightweight deployments.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(logger),
		middleware.DiagnosticContext(),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}

// NewDefaultRouterConfig creates a RouterConfig with sensible defaults.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	healthHandler *handlers.HealthHandler,
	contextHandler *handlers.ContextHandler,
) RouterConfig {
	return RouterConfig{
		Logger:         logger,
		AppConfig:      appCfg,
		HealthHandler:  healthHandler,
		ContextHandler: contextHandler,
		Timeout:        DefaultRequestTimeout,
	}
}

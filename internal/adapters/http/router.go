package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/contact-form-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/contact-form-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/contact-form-service/internal/platform/config"
	"github.com/jsamuelsen/contact-form-service/internal/platform/telemetry"
)

// SubmitPath is the route the contact form posts to.
const SubmitPath = "/submitForm"

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger seeds every request context.
	Logger *slog.Logger

	// ServiceName names the server spans.
	ServiceName string

	// Server supplies the per-request deadline for submissions.
	Server *config.ServerConfig

	// CORS lists the origins allowed to post the form.
	CORS *config.CORSConfig

	HealthHandler     *handlers.HealthHandler
	SubmissionHandler *handlers.SubmissionHandler
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - seed the context logger, catch panics
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - propagate the caller's correlation ID
//  4. OpenTelemetry - server span, then request metrics
//  5. Logging - one line per request (skips /-/ endpoints)
//  6. CORS - answer preflights, tag responses
//
// Routes:
//   - GET / - plain-text greeting
//   - POST /submitForm - store a submission, with the request deadline
//   - /-/ (internal) - probes, build info and metrics
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	var origins []string
	if cfg.CORS != nil {
		origins = cfg.CORS.AllowOrigins
	}

	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.ServiceName),
		telemetry.Middleware(),
		middleware.Logging(),
		middleware.CORS(origins),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	engine.GET("/", handlers.Root)

	if cfg.SubmissionHandler != nil {
		var timeout gin.HandlerFunc = func(c *gin.Context) { c.Next() }
		if cfg.Server != nil {
			timeout = middleware.Timeout(cfg.Server.RequestTimeout)
		}

		engine.POST(SubmitPath, timeout, cfg.SubmissionHandler.Submit)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Cannot %s %s", c.Request.Method, c.Request.URL.Path)
	})
}

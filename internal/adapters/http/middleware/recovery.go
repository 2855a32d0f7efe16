package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/contact-form-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/contact-form-service/internal/platform/logging"
)

// Recovery returns middleware that seeds the request context with logger
// and turns panics into the generic failure envelope. It must run first so
// that later middleware enrich the seeded logger.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))

		defer func() {
			r := recover()
			if r == nil {
				return
			}

			ctx := c.Request.Context()

			attrs := []any{
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
			}
			if span := trace.SpanFromContext(ctx); span.SpanContext().HasTraceID() {
				attrs = append(attrs, slog.String("trace_id", span.SpanContext().TraceID().String()))
			}

			logging.FromContext(ctx).ErrorContext(ctx, "panic recovered", attrs...)

			if c.Writer.Written() {
				c.Abort()
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewFailureResponse())
		}()

		c.Next()
	}
}

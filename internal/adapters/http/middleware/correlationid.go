package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/contact-form-service/internal/platform/logging"
)

const (
	// HeaderCorrelationID is the header name for correlation ID.
	// A front end may send one to tie a submission to its own logs.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyCorrelationID is the context key for storing the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// CorrelationID returns middleware that propagates the caller's correlation
// ID, or starts a new one. The ID follows the submission into the
// notification worker through the context logger.
func CorrelationID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName:      HeaderCorrelationID,
		contextKey:      ContextKeyCorrelationID,
		contextEnricher: logging.WithCorrelationID,
	})
}

// GetCorrelationID extracts the correlation ID from the gin.Context.
// Returns empty string if not set.
func GetCorrelationID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyCorrelationID)
}

// Package dto provides data transfer objects for the HTTP layer.
package dto

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/contact-form-service/internal/domain"
	"github.com/jsamuelsen/contact-form-service/internal/platform/logging"
)

// Messages returned to clients. Failures never carry internal details.
const (
	MessageSaved            = "Message saved successfully!"
	MessageProcessingError  = "An error occurred while processing your request."
	MessageValidationFailed = "request validation failed"
	MessageMalformedBody    = "request body could not be parsed"
	MessageBodyTooLarge     = "request body too large"
)

// Response is the JSON envelope for every /submitForm outcome.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	// Details maps field names to problems; only set for strict-mode rejections.
	Details map[string]string `json:"details,omitempty"`
}

// NewSuccessResponse creates the acknowledgement for a stored submission.
func NewSuccessResponse() *Response {
	return &Response{Success: true, Message: MessageSaved}
}

// NewFailureResponse creates the generic failure envelope.
func NewFailureResponse() *Response {
	return &Response{Success: false, Message: MessageProcessingError}
}

// NewValidationResponse creates a failure envelope listing field problems.
func NewValidationResponse(details map[string]string) *Response {
	return &Response{
		Success: false,
		Message: MessageValidationFailed,
		Details: details,
	}
}

// MapError maps a binding or domain error to an HTTP status code and
// response. Unparseable and oversized bodies get their own 4xx; validation
// errors reach the client with details; everything else, including JSON
// fields that cannot be stored as text, is a 500 with the generic message.
func MapError(err error) (int, *Response) {
	if err == nil {
		return http.StatusOK, NewSuccessResponse()
	}

	var validationErr *domain.ValidationError

	switch {
	case errors.Is(err, ErrMalformedBody):
		return http.StatusBadRequest, &Response{Message: MessageMalformedBody}
	case errors.Is(err, ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge, &Response{Message: MessageBodyTooLarge}
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, NewValidationResponse(validationErr.Fields)
	default:
		return http.StatusInternalServerError, NewFailureResponse()
	}
}

// HandleError writes the mapped response. Server errors are logged with the
// trace ID so the generic client message can be correlated.
func HandleError(c *gin.Context, err error) {
	status, resp := MapError(err)

	if status >= http.StatusInternalServerError {
		ctx := c.Request.Context()
		attrs := []any{slog.Any("error", err)}

		if span := trace.SpanFromContext(ctx); span.SpanContext().HasTraceID() {
			attrs = append(attrs, slog.String("trace_id", span.SpanContext().TraceID().String()))
		}

		logging.FromContext(ctx).ErrorContext(ctx, "request failed", attrs...)
	}

	c.JSON(status, resp)
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/contact-form-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/contact-form-service/internal/app"
	"github.com/jsamuelsen/contact-form-service/internal/platform/logging"
)

// SubmissionHandler handles contact form submissions.
type SubmissionHandler struct {
	service *app.SubmissionService
}

// NewSubmissionHandler creates a new submission handler.
func NewSubmissionHandler(service *app.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
	}
}

// Submit handles POST /submitForm.
// The body may be JSON, urlencoded or multipart. Malformed JSON gets a 400,
// an oversized body a 413, and JSON fields that are not text the generic 500;
// none of them is stored. Any other undecodable body is stored as an empty
// submission. The response is sent once the submission is stored; the
// administrator notice follows in the background.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := dto.BindSubmission(c)
	if err != nil {
		logging.FromContext(ctx).DebugContext(ctx, "submission body not decoded",
			slog.Any("error", err),
			slog.String("content_type", c.ContentType()),
		)

		if rejectBody(err) {
			dto.HandleError(c, err)
			return
		}
	}

	if _, err := h.service.Submit(ctx, req.ToDomain()); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse())
}

func rejectBody(err error) bool {
	return errors.Is(err, dto.ErrMalformedBody) ||
		errors.Is(err, dto.ErrBodyTooLarge) ||
		errors.Is(err, dto.ErrFieldType)
}

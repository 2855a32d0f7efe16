package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/jsamuelsen/contact-form-service/internal/domain"
)

// ErrBinding indicates the request body could not be decoded.
var ErrBinding = errors.New("binding failed")

// Binding failures that reject the request instead of yielding an empty
// submission. Both wrap ErrBinding.
var (
	// ErrMalformedBody is a JSON body with a syntax error.
	ErrMalformedBody = fmt.Errorf("%w: malformed body", ErrBinding)

	// ErrBodyTooLarge is a body over the server's size limit.
	ErrBodyTooLarge = fmt.Errorf("%w: body too large", ErrBinding)

	// ErrFieldType is a JSON field holding an object or array where text is
	// expected. Such a submission cannot be stored.
	ErrFieldType = fmt.Errorf("%w: field is not text", ErrBinding)
)

// SubmissionRequest carries the contact form fields.
type SubmissionRequest struct {
	Name    string `form:"name"    json:"name"`
	Email   string `form:"email"   json:"email"`
	Subject string `form:"subject" json:"subject"`
	Message string `form:"message" json:"message"`
}

// ToDomain converts the request to a domain submission.
func (r SubmissionRequest) ToDomain() domain.Submission {
	return domain.Submission{
		Name:    r.Name,
		Email:   r.Email,
		Subject: r.Subject,
		Message: r.Message,
	}
}

// BindSubmission reads the contact fields from a JSON, urlencoded or
// multipart body. Unknown fields are ignored and scalar JSON values are
// coerced to strings.
//
// Every failure wraps ErrBinding. Callers reject ErrMalformedBody,
// ErrBodyTooLarge and ErrFieldType; any other binding error may proceed with
// the empty request.
func BindSubmission(c *gin.Context) (SubmissionRequest, error) {
	var (
		req SubmissionRequest
		err error
	)

	switch c.ContentType() {
	case binding.MIMEJSON:
		req, err = bindJSON(c)
	case binding.MIMEMultipartPOSTForm:
		err = c.ShouldBindWith(&req, binding.FormMultipart)
	default:
		err = c.ShouldBindWith(&req, binding.FormPost)
	}

	if err != nil {
		return SubmissionRequest{}, classifyBindError(err)
	}

	return req, nil
}

func classifyBindError(err error) error {
	var (
		maxBytesErr *http.MaxBytesError
		syntaxErr   *json.SyntaxError
	)

	switch {
	case errors.Is(err, ErrBinding):
		return err
	case errors.As(err, &maxBytesErr):
		return fmt.Errorf("%w: %w", ErrBodyTooLarge, err)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %w", ErrMalformedBody, err)
	default:
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}
}

func bindJSON(c *gin.Context) (SubmissionRequest, error) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		return SubmissionRequest{}, err
	}

	var req SubmissionRequest

	for field, dst := range map[string]*string{
		"name":    &req.Name,
		"email":   &req.Email,
		"subject": &req.Subject,
		"message": &req.Message,
	} {
		text, ok := scalarString(raw[field])
		if !ok {
			return SubmissionRequest{}, fmt.Errorf("%w: %s", ErrFieldType, field)
		}

		*dst = text
	}

	return req, nil
}

// scalarString renders JSON scalars as text; null and missing are empty.
// Objects and arrays report false.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

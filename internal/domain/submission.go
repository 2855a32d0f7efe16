package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Submission is one contact-form message. Every text field is optional;
// whatever the client sent is stored as-is.
type Submission struct {
	// ID is assigned by the store on insert.
	ID string

	Name    string
	Email   string `validate:"required,email"`
	Subject string
	Message string `validate:"required"`

	CreatedAt time.Time
}

var strictRules = validator.New(validator.WithRequiredStructEnabled())

// Validate applies the strict-mode rules: a well-formed email and a
// non-empty message. It returns a *ValidationError naming each failing field.
func (s *Submission) Validate() error {
	err := strictRules.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[strings.ToLower(fe.Field())] = reason(fe)
	}

	return &ValidationError{Fields: fields}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// NotificationSubject renders the subject line of the administrator notice.
func (s *Submission) NotificationSubject() string {
	return "New Contact Form Submission: " + s.Subject
}

// NotificationBody renders the plain-text body of the administrator notice.
func (s *Submission) NotificationBody() string {
	var b strings.Builder

	b.WriteString("You have received a new message from the contact form.\n\n")
	b.WriteString("Name: " + s.Name + "\n")
	b.WriteString("Email: " + s.Email + "\n")
	b.WriteString("Subject: " + s.Subject + "\n")
	b.WriteString("Message: " + s.Message)

	return b.String()
}

// Package mail delivers administrator notices for new contact submissions
// through an SMTP relay, the Mailgun API, or the application log.
package mail

import (
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/jsamuelsen/contact-form-service/internal/domain"
)

var (
	// ErrCircuitOpen is returned while the relay breaker is short-circuiting sends.
	ErrCircuitOpen = errors.New("mail relay circuit open")

	// ErrNoAdminAddress is returned when no administrator mailbox is configured.
	ErrNoAdminAddress = errors.New("no administrator mail address configured")
)

// newMessage renders the notice for s, sent from and to admin. The
// submitter becomes Reply-To when their address parses; a malformed
// address is left out rather than failing the send.
func newMessage(admin string, s *domain.Submission) (*gomail.Msg, error) {
	if admin == "" {
		return nil, ErrNoAdminAddress
	}

	m := gomail.NewMsg()

	if err := m.From(admin); err != nil {
		return nil, fmt.Errorf("setting sender: %w", err)
	}

	if err := m.To(admin); err != nil {
		return nil, fmt.Errorf("setting recipient: %w", err)
	}

	if s.Email != "" {
		_ = m.ReplyTo(s.Email)
	}

	m.Subject(s.NotificationSubject())
	m.SetBodyString(gomail.TypeTextPlain, s.NotificationBody())

	return m, nil
}

package mail

import (
	"context"
	"fmt"

	mailgun "github.com/mailgun/mailgun-go/v5"

	"github.com/jsamuelsen/contact-form-service/internal/domain"
	"github.com/jsamuelsen/contact-form-service/internal/platform/config"
)

// MailgunNotifier sends notices through the Mailgun HTTP API.
type MailgunNotifier struct {
	mg     mailgun.Mailgun
	domain string
	admin  string
}

// NewMailgunNotifier creates a notifier for cfg.Mailgun. A nil mg builds
// the default client from the configured API key.
func NewMailgunNotifier(cfg *config.MailConfig, mg mailgun.Mailgun) *MailgunNotifier {
	if mg == nil {
		mg = mailgun.NewMailgun(cfg.Mailgun.APIKey)
	}

	return &MailgunNotifier{mg: mg, domain: cfg.Mailgun.Domain, admin: cfg.Address()}
}

// Notify implements ports.Notifier.
func (n *MailgunNotifier) Notify(ctx context.Context, s domain.Submission) error {
	if n.admin == "" {
		return ErrNoAdminAddress
	}

	message := mailgun.NewMessage(n.domain, n.admin, s.NotificationSubject(), s.NotificationBody())
	if err := message.AddRecipient(n.admin); err != nil {
		return fmt.Errorf("add recipient: %w", err)
	}

	if s.Email != "" {
		message.SetReplyTo(s.Email)
	}

	if _, err := n.mg.Send(ctx, message); err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}

	return nil
}

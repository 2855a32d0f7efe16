package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/jsamuelsen/contact-form-service/internal/domain"
	"github.com/jsamuelsen/contact-form-service/internal/platform/config"
)

const smtpsPort = 465

// SMTPNotifier sends notices through an authenticated SMTP relay.
type SMTPNotifier struct {
	client *gomail.Client
	admin  string
}

// NewSMTPNotifier builds a client for cfg.SMTP authenticating as cfg.User.
// No connection is made until the first send.
func NewSMTPNotifier(cfg *config.MailConfig) (*SMTPNotifier, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.SMTP.Port),
		gomail.WithTimeout(cfg.SMTP.Timeout),
	}

	if cfg.SMTP.Port == smtpsPort {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}

	if cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.User),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.SMTP.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &SMTPNotifier{client: client, admin: cfg.Address()}, nil
}

// Notify implements ports.Notifier.
func (n *SMTPNotifier) Notify(ctx context.Context, s domain.Submission) error {
	m, err := newMessage(n.admin, &s)
	if err != nil {
		return err
	}

	if err := n.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

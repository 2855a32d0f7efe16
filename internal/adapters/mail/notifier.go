package mail

import (
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/contact-form-service/internal/platform/config"
	"github.com/jsamuelsen/contact-form-service/internal/ports"
)

// New builds the notifier for cfg.Provider, guarded by a breaker whose
// transitions are logged.
func New(cfg *config.MailConfig, logger *slog.Logger) (ports.Notifier, error) {
	var (
		transport ports.Notifier
		err       error
	)

	switch cfg.Provider {
	case config.MailProviderSMTP:
		transport, err = NewSMTPNotifier(cfg)
	case config.MailProviderMailgun:
		transport = NewMailgunNotifier(cfg, nil)
	case config.MailProviderLog:
		transport = NewLogNotifier(logger, cfg.Address())
	default:
		err = fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}

	if err != nil {
		return nil, err
	}

	breaker := NewBreaker(BreakerConfig{
		MaxFailures:   cfg.Breaker.MaxFailures,
		Timeout:       cfg.Breaker.Timeout,
		HalfOpenLimit: cfg.Breaker.HalfOpenLimit,
	})
	breaker.OnStateChange(func(from, to State) {
		logger.Warn("mail relay breaker state changed",
			slog.String("provider", cfg.Provider),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	return NewBreakerNotifier(transport, breaker), nil
}

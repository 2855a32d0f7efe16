package mail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/contact-form-service/internal/domain"
)

// LogNotifier renders the full MIME message into the log instead of
// sending it. Meant for local development without relay credentials.
type LogNotifier struct {
	logger *slog.Logger
	admin  string
}

// NewLogNotifier creates a notifier that writes to logger.
func NewLogNotifier(logger *slog.Logger, admin string) *LogNotifier {
	return &LogNotifier{logger: logger, admin: admin}
}

// Notify implements ports.Notifier.
func (n *LogNotifier) Notify(ctx context.Context, s domain.Submission) error {
	m, err := newMessage(n.admin, &s)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return fmt.Errorf("rendering message: %w", err)
	}

	n.logger.InfoContext(ctx, "notification rendered",
		slog.String("to", n.admin),
		slog.String("mime", buf.String()),
	)

	return nil
}

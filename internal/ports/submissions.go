package ports

import (
	"context"

	"github.com/jsamuelsen/contact-form-service/internal/domain"
)

// SubmissionRepository persists contact submissions.
type SubmissionRepository interface {
	// Save inserts the submission and returns the store-assigned ID.
	// It returns only after the store acknowledged the write.
	Save(ctx context.Context, submission *domain.Submission) (string, error)
}

// Notifier delivers one administrator notice for a stored submission.
type Notifier interface {
	Notify(ctx context.Context, submission domain.Submission) error
}

// NotificationQueue accepts notices for background delivery.
type NotificationQueue interface {
	// Enqueue never blocks. It reports false when the notice was dropped.
	Enqueue(ctx context.Context, submission domain.Submission) bool
}

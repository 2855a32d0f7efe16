// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/contact-form-service/internal/domain"
	"github.com/jsamuelsen/contact-form-service/internal/platform/logging"
	"github.com/jsamuelsen/contact-form-service/internal/ports"
)

// SubmissionService accepts contact submissions: it stores each one and
// queues the administrator notice without waiting for delivery.
type SubmissionService struct {
	repository ports.SubmissionRepository
	queue      ports.NotificationQueue
	strict     bool
	logger     *slog.Logger
	now        func() time.Time
}

// SubmissionServiceConfig contains configuration for the submission service.
type SubmissionServiceConfig struct {
	Repository ports.SubmissionRepository
	Queue      ports.NotificationQueue

	// Strict rejects submissions without a valid email or a message.
	Strict bool
	Logger *slog.Logger
}

// NewSubmissionService creates a submission service.
// Panics if Repository or Queue is nil.
func NewSubmissionService(cfg SubmissionServiceConfig) *SubmissionService {
	if cfg.Repository == nil {
		panic("app: SubmissionServiceConfig.Repository is required")
	}

	if cfg.Queue == nil {
		panic("app: SubmissionServiceConfig.Queue is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &SubmissionService{
		repository: cfg.Repository,
		queue:      cfg.Queue,
		strict:     cfg.Strict,
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// Submit validates (in strict mode), persists, then enqueues the notice.
// The notice is only queued once the store acknowledged the write, and its
// fate never affects the result. Store failures come back as
// domain.UnavailableError.
func (s *SubmissionService) Submit(ctx context.Context, submission domain.Submission) (*domain.Submission, error) {
	if s.strict {
		if err := submission.Validate(); err != nil {
			s.logger.InfoContext(ctx, "submission rejected", slog.Any("error", err))
			return nil, err
		}
	}

	submission.CreatedAt = s.now()

	id, err := s.repository.Save(ctx, &submission)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to store submission", slog.Any("error", err))
		return nil, fmt.Errorf("storing submission: %w", err)
	}

	submission.ID = id
	ctx = logging.WithSubmissionID(ctx, id)

	s.logger.InfoContext(ctx, "submission stored",
		slog.String("submission_id", id),
	)

	s.queue.Enqueue(ctx, submission)

	return &submission, nil
}

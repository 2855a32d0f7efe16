package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/contact-form-service/internal/domain"
	"github.com/jsamuelsen/contact-form-service/internal/platform/logging"
	"github.com/jsamuelsen/contact-form-service/internal/platform/telemetry"
	"github.com/jsamuelsen/contact-form-service/internal/ports"
)

// Notification outcomes, used as the "outcome" metric label.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
)

const defaultSendTimeout = 30 * time.Second

// ErrDispatcherStopped is returned by Start after Shutdown.
var ErrDispatcherStopped = errors.New("dispatcher stopped")

// DispatcherConfig contains configuration for the notification dispatcher.
type DispatcherConfig struct {
	Notifier    ports.Notifier
	Workers     int
	QueueSize   int
	SendTimeout time.Duration

	// Registerer receives the dispatcher's metrics. Nil skips registration.
	Registerer prometheus.Registerer
	Logger     *slog.Logger
}

type notification struct {
	// ctx keeps the request's values (logger, trace) but not its cancellation.
	ctx        context.Context //nolint:containedctx // detached per-job context
	submission domain.Submission
}

// Dispatcher delivers notifications on a fixed pool of workers fed by a
// bounded queue. Enqueue never blocks; a full queue drops the notice.
type Dispatcher struct {
	notifier    ports.Notifier
	queue       chan notification
	workers     int
	sendTimeout time.Duration
	logger      *slog.Logger
	outcomes    *prometheus.CounterVec

	// abort cancels in-flight sends when a drain runs out of time.
	abortCtx context.Context //nolint:containedctx // lifetime of the worker pool
	abort    context.CancelFunc

	mu      sync.RWMutex
	started bool
	closed  bool
	group   errgroup.Group
}

// NewDispatcher creates a dispatcher. Call Start before enqueueing.
// Panics if Notifier is nil.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Notifier == nil {
		panic("app: DispatcherConfig.Notifier is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	workers := max(cfg.Workers, 1)
	queueSize := max(cfg.QueueSize, 1)

	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}

	d := &Dispatcher{
		notifier:    cfg.Notifier,
		queue:       make(chan notification, queueSize),
		workers:     workers,
		sendTimeout: cfg.SendTimeout,
		logger:      cfg.Logger,
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: telemetry.Namespace,
			Name:      "notifications_total",
			Help:      "Administrator notifications by outcome.",
		}, []string{"outcome"}),
	}
	d.abortCtx, d.abort = context.WithCancel(context.Background())

	for _, outcome := range []string{OutcomeSent, OutcomeFailed, OutcomeDropped} {
		d.outcomes.WithLabelValues(outcome)
	}

	if cfg.Registerer != nil {
		cfg.Registerer.MustRegister(
			d.outcomes,
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: telemetry.Namespace,
				Name:      "notification_queue_depth",
				Help:      "Notifications waiting for a worker.",
			}, func() float64 { return float64(len(d.queue)) }),
		)
	}

	return d
}

// Start launches the workers. It is safe to call once.
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherStopped
	}

	if d.started {
		return nil
	}

	d.started = true

	for range d.workers {
		d.group.Go(d.work)
	}

	d.logger.Info("notification dispatcher started",
		slog.Int("workers", d.workers),
		slog.Int("queue_size", cap(d.queue)),
	)

	return nil
}

// Enqueue implements ports.NotificationQueue. The send runs later under its
// own timeout, detached from ctx's cancellation.
func (d *Dispatcher) Enqueue(ctx context.Context, s domain.Submission) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	logger := logging.FromContext(ctx)

	if d.closed {
		d.outcomes.WithLabelValues(OutcomeDropped).Inc()
		logger.WarnContext(ctx, "notification dropped: dispatcher stopped")

		return false
	}

	select {
	case d.queue <- notification{ctx: context.WithoutCancel(ctx), submission: s}:
		return true
	default:
		d.outcomes.WithLabelValues(OutcomeDropped).Inc()
		logger.WarnContext(ctx, "notification dropped: queue full",
			slog.Int("queue_size", cap(d.queue)),
		)

		return false
	}
}

func (d *Dispatcher) work() error {
	for n := range d.queue {
		d.send(n)
	}

	return nil
}

func (d *Dispatcher) send(n notification) {
	ctx, cancel := context.WithTimeout(n.ctx, d.sendTimeout)
	defer cancel()

	stop := context.AfterFunc(d.abortCtx, cancel)
	defer stop()

	logger := logging.FromContext(ctx)
	start := time.Now()

	if err := d.notifier.Notify(ctx, n.submission); err != nil {
		d.outcomes.WithLabelValues(OutcomeFailed).Inc()
		logger.ErrorContext(ctx, "notification failed",
			slog.Any("error", err),
			slog.Duration("duration", time.Since(start)),
		)

		return
	}

	d.outcomes.WithLabelValues(OutcomeSent).Inc()
	logger.InfoContext(ctx, "notification sent",
		slog.Duration("duration", time.Since(start)),
	)
}

// Shutdown stops intake and waits for queued notifications to be sent.
// If ctx expires first, in-flight and remaining sends are cancelled and
// counted as failed.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- d.group.Wait() }()

	select {
	case err := <-done:
		d.abort()
		d.logger.Info("notification dispatcher stopped")

		return err
	case <-ctx.Done():
		d.abort()

		return fmt.Errorf("draining notifications: %w", ctx.Err())
	}
}

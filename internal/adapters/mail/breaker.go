package mail

import (
	"context"
	"sync"
	"time"

	"github.com/jsamuelsen/contact-form-service/internal/domain"
	"github.com/jsamuelsen/contact-form-service/internal/ports"
)

// State is the position of a Breaker.
type State int

const (
	// StateClosed lets every send through.
	StateClosed State = iota

	// StateOpen short-circuits sends until the cool-down elapses.
	StateOpen

	// StateHalfOpen lets a limited number of probe sends through.
	StateHalfOpen
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failed sends that opens the breaker.
	MaxFailures int

	// Timeout is the cool-down spent open before probing again.
	Timeout time.Duration

	// HalfOpenLimit is both the number of concurrent probes and the number
	// of probe successes needed to close again.
	HalfOpenLimit int
}

// Breaker stops hammering a relay that keeps failing. It never retries.
//
//   - Closed → Open after MaxFailures consecutive failures
//   - Open → HalfOpen once Timeout has passed since the last failure
//   - HalfOpen → Closed after HalfOpenLimit successes
//   - HalfOpen → Open on any failure
type Breaker struct {
	mu          sync.Mutex
	cfg         BreakerConfig
	state       State
	failures    int
	successes   int
	probes      int
	lastFailure time.Time

	onStateChange func(from, to State)
	now           func() time.Time
}

// NewBreaker creates a closed breaker.
func NewBreaker(cfg BreakerConfig) *Breaker {
	return &Breaker{cfg: cfg, now: time.Now}
}

// OnStateChange registers a callback run after every transition, outside the lock.
func (b *Breaker) OnStateChange(fn func(from, to State)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.onStateChange = fn
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// Allow reports whether a send may proceed. Callers that get true must
// follow up with exactly one Record call.
func (b *Breaker) Allow() bool {
	b.mu.Lock()

	var (
		allowed bool
		from    = b.state
	)

	switch b.state {
	case StateClosed:
		allowed = true
	case StateOpen:
		if b.now().Sub(b.lastFailure) >= b.cfg.Timeout {
			b.setState(StateHalfOpen)
			b.probes = 1
			allowed = true
		}
	case StateHalfOpen:
		if b.probes < b.cfg.HalfOpenLimit {
			b.probes++
			allowed = true
		}
	}

	b.unlockAndNotify(from)

	return allowed
}

// Record feeds the outcome of an allowed send back into the breaker.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	from := b.state

	if err == nil {
		b.recordSuccess()
	} else {
		b.recordFailure()
	}

	b.unlockAndNotify(from)
}

func (b *Breaker) recordSuccess() {
	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.probes--
		b.successes++
		if b.successes >= b.cfg.HalfOpenLimit {
			b.setState(StateClosed)
		}
	}
}

func (b *Breaker) recordFailure() {
	b.lastFailure = b.now()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.MaxFailures {
			b.setState(StateOpen)
		}
	case StateHalfOpen:
		b.probes--
		b.setState(StateOpen)
	}
}

// setState must be called with the lock held.
func (b *Breaker) setState(to State) {
	if b.state == to {
		return
	}

	b.state = to
	b.failures = 0
	b.successes = 0
}

func (b *Breaker) unlockAndNotify(from State) {
	to := b.state
	fn := b.onStateChange
	b.mu.Unlock()

	if fn != nil && from != to {
		fn(from, to)
	}
}

// BreakerNotifier guards a Notifier with a Breaker.
type BreakerNotifier struct {
	next    ports.Notifier
	breaker *Breaker
}

// NewBreakerNotifier wraps next so that sends fail fast with ErrCircuitOpen
// while the breaker is open.
func NewBreakerNotifier(next ports.Notifier, breaker *Breaker) *BreakerNotifier {
	return &BreakerNotifier{next: next, breaker: breaker}
}

// Notify implements ports.Notifier.
func (n *BreakerNotifier) Notify(ctx context.Context, s domain.Submission) error {
	if !n.breaker.Allow() {
		return ErrCircuitOpen
	}

	err := n.next.Notify(ctx, s)
	n.breaker.Record(err)

	return err
}

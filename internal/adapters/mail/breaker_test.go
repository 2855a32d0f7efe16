package mail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/contact-form-service/internal/domain"
)

var errRelay = errors.New("454 temporary authentication failure")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(maxFailures, halfOpen int) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := NewBreaker(BreakerConfig{MaxFailures: maxFailures, Timeout: time.Minute, HalfOpenLimit: halfOpen})
	b.now = clock.now

	return b, clock
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(3, 1)

	for range 2 {
		require.True(t, b.Allow())
		b.Record(errRelay)
	}
	assert.Equal(t, StateClosed, b.State())

	require.True(t, b.Allow())
	b.Record(errRelay)

	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(2, 1)

	b.Allow()
	b.Record(errRelay)
	b.Allow()
	b.Record(nil)
	b.Allow()
	b.Record(errRelay)

	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	b, clock := newTestBreaker(1, 2)

	b.Allow()
	b.Record(errRelay)
	require.Equal(t, StateOpen, b.State())

	clock.advance(59 * time.Second)
	assert.False(t, b.Allow())

	clock.advance(time.Second)
	require.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())

	// second probe allowed, third rejected
	require.True(t, b.Allow())
	assert.False(t, b.Allow())

	b.Record(nil)
	assert.Equal(t, StateHalfOpen, b.State())
	b.Record(nil)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(1, 1)

	b.Allow()
	b.Record(errRelay)
	clock.advance(time.Minute)

	require.True(t, b.Allow())
	b.Record(errRelay)

	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreaker_OnStateChange(t *testing.T) {
	b, clock := newTestBreaker(1, 1)

	var (
		mu          sync.Mutex
		transitions []string
	)
	b.OnStateChange(func(from, to State) {
		mu.Lock()
		defer mu.Unlock()
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	b.Allow()
	b.Record(errRelay)
	clock.advance(time.Minute)
	b.Allow()
	b.Record(nil)

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

type notifierFunc func(ctx context.Context, s domain.Submission) error

func (f notifierFunc) Notify(ctx context.Context, s domain.Submission) error { return f(ctx, s) }

func TestBreakerNotifier(t *testing.T) {
	calls := 0
	failing := notifierFunc(func(context.Context, domain.Submission) error {
		calls++
		return errRelay
	})

	b, _ := newTestBreaker(2, 1)
	n := NewBreakerNotifier(failing, b)

	require.ErrorIs(t, n.Notify(context.Background(), domain.Submission{}), errRelay)
	require.ErrorIs(t, n.Notify(context.Background(), domain.Submission{}), errRelay)
	require.ErrorIs(t, n.Notify(context.Background(), domain.Submission{}), ErrCircuitOpen)

	assert.Equal(t, 2, calls)
}

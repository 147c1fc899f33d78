package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"tamu-web/internal/backend"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClock drives the poller without real sleeping: every sleep advances
// the clock by the requested delay and records it.
type fakeClock struct {
	current time.Time
	slept   []time.Duration
}

func (c *fakeClock) install(p *Poller) {
	p.now = func() time.Time { return c.current }
	p.sleep = func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.slept = append(c.slept, d)
		c.current = c.current.Add(d)
		return nil
	}
}

func statusSequence(statuses ...backend.PaymentStatus) (StatusFunc, *int) {
	calls := new(int)
	return func(ctx context.Context, reference string) (*backend.PaymentStatusResult, error) {
		idx := *calls
		*calls++
		if idx >= len(statuses) {
			idx = len(statuses) - 1
		}
		return &backend.PaymentStatusResult{Status: statuses[idx]}, nil
	}, calls
}

func TestPollerReturnsOnTerminalStatus(t *testing.T) {
	fetch, calls := statusSequence(backend.PaymentPending, backend.PaymentProcessing, backend.PaymentSuccess)
	p := NewPoller(fetch, zap.NewNop())
	clock := &fakeClock{current: time.Unix(0, 0)}
	clock.install(p)

	status, err := p.Wait(context.Background(), "ref-1")
	require.NoError(t, err)
	require.Equal(t, backend.PaymentSuccess, status)
	require.Equal(t, 3, *calls)
	require.Equal(t, []time.Duration{1200 * time.Millisecond, 1560 * time.Millisecond}, clock.slept)
}

func TestPollerReturnsFailureImmediately(t *testing.T) {
	for _, terminal := range []backend.PaymentStatus{backend.PaymentFailed, backend.PaymentCancelled} {
		fetch, calls := statusSequence(terminal)
		p := NewPoller(fetch, zap.NewNop())
		clock := &fakeClock{current: time.Unix(0, 0)}
		clock.install(p)

		status, err := p.Wait(context.Background(), "ref-1")
		require.NoError(t, err)
		require.Equal(t, terminal, status)
		require.Equal(t, 1, *calls)
		require.Empty(t, clock.slept)
	}
}

func TestPollerTimesOutPending(t *testing.T) {
	fetch, calls := statusSequence(backend.PaymentPending)
	p := NewPoller(fetch, zap.NewNop())
	clock := &fakeClock{current: time.Unix(0, 0)}
	start := clock.current
	clock.install(p)

	status, err := p.Wait(context.Background(), "ref-1")
	require.NoError(t, err)
	require.Equal(t, backend.PaymentPending, status)

	// The backoff schedule starts 1200, 1560, 2028, ... capped at 5000ms.
	require.Equal(t, 1200*time.Millisecond, clock.slept[0])
	require.Equal(t, 1560*time.Millisecond, clock.slept[1])
	require.Equal(t, 2028*time.Millisecond, clock.slept[2])
	for _, d := range clock.slept {
		require.LessOrEqual(t, d, 5000*time.Millisecond)
	}

	elapsed := clock.current.Sub(start)
	require.LessOrEqual(t, elapsed, 60*time.Second)
	require.Greater(t, elapsed, 50*time.Second)
	require.Greater(t, *calls, 10)
}

func TestPollerRetriesThroughFetchErrors(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context, reference string) (*backend.PaymentStatusResult, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient")
		}
		return &backend.PaymentStatusResult{Status: backend.PaymentSuccess}, nil
	}

	p := NewPoller(fetch, zap.NewNop())
	clock := &fakeClock{current: time.Unix(0, 0)}
	clock.install(p)

	status, err := p.Wait(context.Background(), "ref-1")
	require.NoError(t, err)
	require.Equal(t, backend.PaymentSuccess, status)
	require.Equal(t, 3, calls)
}

func TestPollerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(ctx context.Context, reference string) (*backend.PaymentStatusResult, error) {
		cancel()
		return &backend.PaymentStatusResult{Status: backend.PaymentPending}, nil
	}

	p := NewPoller(fetch, zap.NewNop())
	clock := &fakeClock{current: time.Unix(0, 0)}
	clock.install(p)

	status, err := p.Wait(ctx, "ref-1")
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, backend.PaymentPending, status)
}

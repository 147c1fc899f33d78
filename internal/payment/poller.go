package payment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tamu-web/internal/backend"
)

// StatusFunc fetches the current status of a payment reference.
type StatusFunc func(ctx context.Context, reference string) (*backend.PaymentStatusResult, error)

// Poller resolves a payment reference to a terminal status by re-reading the
// status endpoint with a growing delay between attempts.
type Poller struct {
	Fetch   StatusFunc
	Budget  time.Duration // total time before giving up, default 60s
	Initial time.Duration // first delay, default 1200ms
	Max     time.Duration // delay cap, default 5s
	Factor  float64       // delay growth per attempt, default 1.3
	Logger  *zap.Logger

	// now/sleep are swappable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPoller(fetch StatusFunc, logger *zap.Logger) *Poller {
	return &Poller{
		Fetch:   fetch,
		Budget:  60 * time.Second,
		Initial: 1200 * time.Millisecond,
		Max:     5 * time.Second,
		Factor:  1.3,
		Logger:  logger,
	}
}

// Wait polls until a terminal status arrives or the budget runs out. An
// exhausted budget yields PaymentPending, not an error: the caller treats an
// inconclusive outcome as "try again" messaging. A failed status read is
// retried on the same schedule. Cancelling ctx stops the loop immediately.
func (p *Poller) Wait(ctx context.Context, reference string) (backend.PaymentStatus, error) {
	budget := p.Budget
	if budget <= 0 {
		budget = 60 * time.Second
	}
	delay := p.Initial
	if delay <= 0 {
		delay = 1200 * time.Millisecond
	}
	maxDelay := p.Max
	if maxDelay < delay {
		maxDelay = delay
	}
	factor := p.Factor
	if factor <= 1 {
		factor = 1.3
	}

	now := p.now
	if now == nil {
		now = time.Now
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	start := now()
	for {
		if err := ctx.Err(); err != nil {
			return backend.PaymentPending, err
		}

		result, err := p.Fetch(ctx, reference)
		if err != nil {
			if ctx.Err() != nil {
				return backend.PaymentPending, ctx.Err()
			}
			if p.Logger != nil {
				p.Logger.Warn("payment status read failed", zap.String("reference", reference), zap.Error(err))
			}
		} else if result.Status.Terminal() {
			return result.Status, nil
		}

		if now().Sub(start)+delay > budget {
			return backend.PaymentPending, nil
		}
		if err := sleep(ctx, delay); err != nil {
			return backend.PaymentPending, err
		}

		delay = time.Duration(float64(delay) * factor)
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

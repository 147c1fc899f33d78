package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tamu-web/internal/backend"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGateway struct {
	mu sync.Mutex

	stkCalls    []backend.STKInput
	cardCalls   []backend.CardInput
	manualCalls []backend.ManualCodeInput
	statusCalls int

	stkErr     error
	manualErr  error
	initiation backend.PaymentInitiation
	statuses   []backend.PaymentStatus
}

func (g *fakeGateway) InitiateSTK(ctx context.Context, token string, input backend.STKInput) (*backend.PaymentInitiation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stkCalls = append(g.stkCalls, input)
	if g.stkErr != nil {
		return nil, g.stkErr
	}
	out := g.initiation
	return &out, nil
}

func (g *fakeGateway) InitiateCard(ctx context.Context, token string, input backend.CardInput) (*backend.PaymentInitiation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cardCalls = append(g.cardCalls, input)
	out := g.initiation
	return &out, nil
}

func (g *fakeGateway) SubmitManualCode(ctx context.Context, token string, input backend.ManualCodeInput) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.manualCalls = append(g.manualCalls, input)
	return g.manualErr
}

func (g *fakeGateway) PaymentStatusByRef(ctx context.Context, reference string) (*backend.PaymentStatusResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := g.statusCalls
	g.statusCalls++
	if idx >= len(g.statuses) {
		idx = len(g.statuses) - 1
	}
	return &backend.PaymentStatusResult{Status: g.statuses[idx]}, nil
}

func (g *fakeGateway) networkCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.stkCalls) + len(g.cardCalls) + len(g.manualCalls) + g.statusCalls
}

type callbackRecorder struct {
	mu        sync.Mutex
	paid      int
	deferred  int
	submitted int
	closed    int
}

func (r *callbackRecorder) callbacks() Callbacks {
	return Callbacks{
		OnSuccessPaid:     func() { r.mu.Lock(); r.paid++; r.mu.Unlock() },
		OnDeferCash:       func() { r.mu.Lock(); r.deferred++; r.mu.Unlock() },
		OnSubmittedManual: func() { r.mu.Lock(); r.submitted++; r.mu.Unlock() },
		OnClose:           func() { r.mu.Lock(); r.closed++; r.mu.Unlock() },
	}
}

func (r *callbackRecorder) counts() (paid, deferred, submitted, closed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paid, r.deferred, r.submitted, r.closed
}

func testContext() Context {
	return Context{
		ServiceType:   "order",
		ReferenceID:   "ord-1",
		Amount:        500,
		BusinessID:    "biz-1",
		AllowPayLater: true,
	}
}

func fastPoller(f *Flow) {
	p := f.Poller()
	p.Initial = time.Millisecond
	p.Max = time.Millisecond
	p.Budget = 100 * time.Millisecond
}

func TestFlowSTKSuccess(t *testing.T) {
	gateway := &fakeGateway{
		initiation: backend.PaymentInitiation{Reference: "pay-1"},
		statuses:   []backend.PaymentStatus{backend.PaymentPending, backend.PaymentPending, backend.PaymentSuccess},
	}
	recorder := &callbackRecorder{}
	flow := NewFlow(testContext(), Availability{Mpesa: true}, gateway, "tok", zap.NewNop(), recorder.callbacks())
	fastPoller(flow)

	status, err := flow.PayWithSTK(context.Background(), "+254700000000")
	require.NoError(t, err)
	require.Equal(t, backend.PaymentSuccess, status)

	require.Len(t, gateway.stkCalls, 1)
	require.Equal(t, "ord-1", gateway.stkCalls[0].ReferenceID)
	require.Equal(t, "+254700000000", gateway.stkCalls[0].Phone)

	paid, deferred, submitted, _ := recorder.counts()
	require.Equal(t, 1, paid)
	require.Zero(t, deferred)
	require.Zero(t, submitted)

	require.Equal(t, StateDone, flow.Snapshot().State)

	// Single use: the flow refuses further attempts.
	_, err = flow.PayWithSTK(context.Background(), "+254700000000")
	require.ErrorIs(t, err, ErrFlowFinished)
}

func TestFlowSTKFailureLeavesFlowRetryable(t *testing.T) {
	gateway := &fakeGateway{
		initiation: backend.PaymentInitiation{Reference: "pay-1"},
		statuses:   []backend.PaymentStatus{backend.PaymentFailed},
	}
	recorder := &callbackRecorder{}
	flow := NewFlow(testContext(), Availability{Mpesa: true}, gateway, "tok", zap.NewNop(), recorder.callbacks())
	fastPoller(flow)

	status, err := flow.PayWithSTK(context.Background(), "+254700000000")
	require.NoError(t, err)
	require.Equal(t, backend.PaymentFailed, status)

	snapshot := flow.Snapshot()
	require.Equal(t, StateIdle, snapshot.State)
	require.Equal(t, "Payment failed.", snapshot.Message)

	paid, _, _, _ := recorder.counts()
	require.Zero(t, paid)

	// The customer can try again.
	gateway.mu.Lock()
	gateway.statuses = []backend.PaymentStatus{backend.PaymentSuccess}
	gateway.statusCalls = 0
	gateway.mu.Unlock()

	status, err = flow.PayWithSTK(context.Background(), "+254700000000")
	require.NoError(t, err)
	require.Equal(t, backend.PaymentSuccess, status)
}

func TestFlowSTKInitiationError(t *testing.T) {
	gateway := &fakeGateway{stkErr: errors.New("boom")}
	recorder := &callbackRecorder{}
	flow := NewFlow(testContext(), Availability{Mpesa: true}, gateway, "tok", zap.NewNop(), recorder.callbacks())
	fastPoller(flow)

	_, err := flow.PayWithSTK(context.Background(), "+254700000000")
	require.Error(t, err)

	snapshot := flow.Snapshot()
	require.Equal(t, StateIdle, snapshot.State)
	require.Equal(t, "Failed to initiate M-Pesa.", snapshot.Message)
}

func TestFlowSTKNotOffered(t *testing.T) {
	gateway := &fakeGateway{}
	flow := NewFlow(testContext(), Availability{}, gateway, "tok", zap.NewNop(), Callbacks{})

	_, err := flow.PayWithSTK(context.Background(), "+254700000000")
	require.ErrorIs(t, err, ErrRailNotAvailable)
	require.Zero(t, gateway.networkCalls())
}

func TestFlowCardRedirectHandsOff(t *testing.T) {
	gateway := &fakeGateway{
		initiation: backend.PaymentInitiation{Reference: "pay-2", RedirectURL: "https://pay.example/redir"},
	}
	recorder := &callbackRecorder{}
	flow := NewFlow(testContext(), Availability{Card: true}, gateway, "tok", zap.NewNop(), recorder.callbacks())
	fastPoller(flow)

	redirect, _, err := flow.PayWithCard(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/redir", redirect)

	// No status polling and no local outcome: the processor page owns it now.
	require.Zero(t, gateway.statusCalls)
	paid, deferred, submitted, _ := recorder.counts()
	require.Zero(t, paid+deferred+submitted)
}

func TestFlowCardWithoutRedirectPolls(t *testing.T) {
	gateway := &fakeGateway{
		initiation: backend.PaymentInitiation{Reference: "pay-3"},
		statuses:   []backend.PaymentStatus{backend.PaymentSuccess},
	}
	recorder := &callbackRecorder{}
	flow := NewFlow(testContext(), Availability{Card: true}, gateway, "tok", zap.NewNop(), recorder.callbacks())
	fastPoller(flow)

	redirect, status, err := flow.PayWithCard(context.Background())
	require.NoError(t, err)
	require.Empty(t, redirect)
	require.Equal(t, backend.PaymentSuccess, status)

	paid, _, _, _ := recorder.counts()
	require.Equal(t, 1, paid)
}

func TestFlowManualSubmit(t *testing.T) {
	gateway := &fakeGateway{}
	recorder := &callbackRecorder{}
	avail := Availability{
		ManualMethods: []backend.ManualMethod{{ID: "m1", Type: "till", Number: "12345"}},
	}
	flow := NewFlow(testContext(), avail, gateway, "tok", zap.NewNop(), recorder.callbacks())

	err := flow.SubmitManualCode(context.Background(), "m1", "QWE123RTY")
	require.NoError(t, err)

	require.Len(t, gateway.manualCalls, 1)
	call := gateway.manualCalls[0]
	require.Equal(t, "QWE123RTY", call.Code)
	require.Equal(t, "m1", call.MethodID)
	require.Equal(t, "till", call.MethodType)

	// Submission is optimistic: the sheet closes without claiming success.
	paid, deferred, submitted, closed := recorder.counts()
	require.Zero(t, paid)
	require.Zero(t, deferred)
	require.Equal(t, 1, submitted)
	require.Equal(t, 1, closed)
}

func TestFlowManualSubmitUnknownMethod(t *testing.T) {
	gateway := &fakeGateway{}
	flow := NewFlow(testContext(), Availability{}, gateway, "tok", zap.NewNop(), Callbacks{})

	err := flow.SubmitManualCode(context.Background(), "nope", "CODE")
	require.ErrorIs(t, err, ErrUnknownMethod)
	require.Zero(t, gateway.networkCalls())
}

func TestFlowDeferCash(t *testing.T) {
	gateway := &fakeGateway{}
	recorder := &callbackRecorder{}
	flow := NewFlow(testContext(), Availability{Cash: true}, gateway, "tok", zap.NewNop(), recorder.callbacks())

	require.NoError(t, flow.DeferCash())

	// Purely a client-side choice: no network traffic at all.
	require.Zero(t, gateway.networkCalls())
	paid, deferred, submitted, _ := recorder.counts()
	require.Zero(t, paid)
	require.Equal(t, 1, deferred)
	require.Zero(t, submitted)

	require.ErrorIs(t, flow.DeferCash(), ErrFlowFinished)
	_, deferred2, _, _ := recorder.counts()
	require.Equal(t, 1, deferred2)
}

func TestFlowDeferCashRequiresPayLater(t *testing.T) {
	payment := testContext()
	payment.AllowPayLater = false
	flow := NewFlow(payment, Availability{Cash: true}, &fakeGateway{}, "tok", zap.NewNop(), Callbacks{})
	require.ErrorIs(t, flow.DeferCash(), ErrRailNotAvailable)

	flow = NewFlow(testContext(), Availability{Cash: false}, &fakeGateway{}, "tok", zap.NewNop(), Callbacks{})
	require.ErrorIs(t, flow.DeferCash(), ErrRailNotAvailable)
}

func TestFlowDeferCashAfterFailedSTKAttempt(t *testing.T) {
	gateway := &fakeGateway{
		initiation: backend.PaymentInitiation{Reference: "pay-1"},
		statuses:   []backend.PaymentStatus{backend.PaymentFailed},
	}
	recorder := &callbackRecorder{}
	flow := NewFlow(testContext(), Availability{Mpesa: true, Cash: true}, gateway, "tok", zap.NewNop(), recorder.callbacks())
	fastPoller(flow)

	_, err := flow.PayWithSTK(context.Background(), "+254700000000")
	require.NoError(t, err)

	require.NoError(t, flow.DeferCash())
	paid, deferred, _, _ := recorder.counts()
	require.Zero(t, paid)
	require.Equal(t, 1, deferred)
}

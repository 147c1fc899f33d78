package payment

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tamu-web/internal/backend"
)

// Context describes one checkout attempt. It is built fresh per checkout and
// never mutated for the lifetime of the flow.
type Context struct {
	ServiceType   string  `json:"serviceType"` // "order" or "reservation_fee"
	ReferenceID   string  `json:"referenceId"`
	Amount        float64 `json:"amount"`
	BusinessID    string  `json:"businessId"`
	AllowPayLater bool    `json:"allowPayLater"`
}

type State string

const (
	StateIdle             State = "idle"
	StateInitiating       State = "initiating"
	StateAwaitingPayment  State = "awaiting_payment"
	StateSubmittingManual State = "submitting_manual"
	StateDone             State = "done"
)

// Gateway is the slice of the backend client the flow needs.
type Gateway interface {
	InitiateSTK(ctx context.Context, token string, input backend.STKInput) (*backend.PaymentInitiation, error)
	InitiateCard(ctx context.Context, token string, input backend.CardInput) (*backend.PaymentInitiation, error)
	SubmitManualCode(ctx context.Context, token string, input backend.ManualCodeInput) error
	PaymentStatusByRef(ctx context.Context, reference string) (*backend.PaymentStatusResult, error)
}

// Callbacks report a completed attempt to the flow's owner. Exactly one of
// them fires over the life of a flow.
type Callbacks struct {
	OnSuccessPaid     func()
	OnDeferCash       func()
	OnSubmittedManual func()
	// OnClose signals the owner to drop the flow. Fired by the flow itself
	// only after a manual submit; after STK or card success the owner decides.
	OnClose func()
}

var (
	ErrFlowFinished     = errors.New("payment flow already finished")
	ErrRailNotAvailable = errors.New("payment rail not available")
	ErrUnknownMethod    = errors.New("unknown manual method")
)

// Flow drives a single payment attempt through rail selection, initiation
// and outcome handling. A flow is single-use: once a terminal callback has
// fired, every further operation returns ErrFlowFinished.
type Flow struct {
	payment Context
	avail   Availability
	gateway Gateway
	token   string
	poller  *Poller
	logger  *zap.Logger
	cb      Callbacks

	mu      sync.Mutex
	state   State
	message string
	attempt uint64
	done    bool
}

func NewFlow(payment Context, avail Availability, gateway Gateway, token string, logger *zap.Logger, cb Callbacks) *Flow {
	return &Flow{
		payment: payment,
		avail:   avail,
		gateway: gateway,
		token:   token,
		poller:  NewPoller(gateway.PaymentStatusByRef, logger),
		logger:  logger,
		cb:      cb,
		state:   StateIdle,
	}
}

// Poller exposes the flow's poller so its schedule can be tuned before use.
func (f *Flow) Poller() *Poller {
	return f.poller
}

type Snapshot struct {
	State   State  `json:"state"`
	Message string `json:"message,omitempty"`
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{State: f.state, Message: f.message}
}

// begin opens a new attempt and returns its fencing token. Any result still
// in flight from an earlier attempt is discarded when it lands.
func (f *Flow) begin(state State, message string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return 0, ErrFlowFinished
	}
	f.attempt++
	f.state = state
	f.message = message
	return f.attempt, nil
}

// settle applies an attempt outcome unless the attempt was superseded or the
// flow finished meanwhile. Reports whether the outcome was applied.
func (f *Flow) settle(attempt uint64, state State, message string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done || attempt != f.attempt {
		return false
	}
	f.state = state
	f.message = message
	return true
}

// finish marks the flow terminal and fires the given callback exactly once.
func (f *Flow) finish(attempt uint64, cb func()) bool {
	f.mu.Lock()
	if f.done || (attempt != 0 && attempt != f.attempt) {
		f.mu.Unlock()
		return false
	}
	f.done = true
	f.state = StateDone
	f.message = ""
	f.mu.Unlock()

	if cb != nil {
		cb()
	}
	return true
}

// PayWithSTK fires an M-Pesa push and polls the reference to resolution.
// A non-success terminal or an exhausted poll leaves the flow idle with a
// user-visible message; the customer retries by acting again.
func (f *Flow) PayWithSTK(ctx context.Context, phone string) (backend.PaymentStatus, error) {
	if !f.avail.Mpesa {
		return "", ErrRailNotAvailable
	}
	attempt, err := f.begin(StateInitiating, "Initiating M-Pesa…")
	if err != nil {
		return "", err
	}

	initiation, err := f.gateway.InitiateSTK(ctx, f.token, backend.STKInput{
		ServiceType: f.payment.ServiceType,
		ReferenceID: f.payment.ReferenceID,
		BusinessID:  f.payment.BusinessID,
		Amount:      f.payment.Amount,
		Phone:       phone,
	})
	if err != nil {
		f.settle(attempt, StateIdle, "Failed to initiate M-Pesa.")
		return "", err
	}

	f.settle(attempt, StateAwaitingPayment, "Awaiting payment confirmation…")
	return f.awaitReference(ctx, attempt, initiation.Reference)
}

// PayWithCard initiates a card payment. When the backend answers with a
// redirect URL the flow hands the customer off to the processor page and
// reports nothing locally; otherwise the reference is polled like STK.
func (f *Flow) PayWithCard(ctx context.Context) (redirectURL string, status backend.PaymentStatus, err error) {
	if !f.avail.Card {
		return "", "", ErrRailNotAvailable
	}
	attempt, err := f.begin(StateInitiating, "Initiating card payment…")
	if err != nil {
		return "", "", err
	}

	initiation, err := f.gateway.InitiateCard(ctx, f.token, backend.CardInput{
		ServiceType: f.payment.ServiceType,
		ReferenceID: f.payment.ReferenceID,
		BusinessID:  f.payment.BusinessID,
		Amount:      f.payment.Amount,
	})
	if err != nil {
		f.settle(attempt, StateIdle, "Failed to initiate card payment.")
		return "", "", err
	}

	if strings.TrimSpace(initiation.RedirectURL) != "" {
		// Terminal hand-off to an external page; local state stops mattering.
		f.settle(attempt, StateIdle, "")
		return initiation.RedirectURL, "", nil
	}

	f.settle(attempt, StateAwaitingPayment, "Awaiting payment confirmation…")
	status, err = f.awaitReference(ctx, attempt, initiation.Reference)
	return "", status, err
}

func (f *Flow) awaitReference(ctx context.Context, attempt uint64, reference string) (backend.PaymentStatus, error) {
	status, err := f.poller.Wait(ctx, reference)
	if err != nil {
		f.settle(attempt, StateIdle, "Payment not confirmed. Try again.")
		return status, err
	}

	switch status {
	case backend.PaymentSuccess:
		f.finish(attempt, f.cb.OnSuccessPaid)
	case backend.PaymentFailed:
		f.settle(attempt, StateIdle, "Payment failed.")
	case backend.PaymentCancelled:
		f.settle(attempt, StateIdle, "Payment cancelled.")
	default:
		f.settle(attempt, StateIdle, "Payment not confirmed yet. Try again.")
	}
	return status, nil
}

// SubmitManualCode records a customer-entered confirmation code for one of
// the offered manual methods, then closes the flow without asserting that
// the payment settled: reconciliation stays with the backend.
func (f *Flow) SubmitManualCode(ctx context.Context, methodID, code string) error {
	method, ok := f.avail.FindManualMethod(methodID)
	if !ok {
		return ErrUnknownMethod
	}
	attempt, err := f.begin(StateSubmittingManual, "Submitting code…")
	if err != nil {
		return err
	}

	err = f.gateway.SubmitManualCode(ctx, f.token, backend.ManualCodeInput{
		ServiceType: f.payment.ServiceType,
		ReferenceID: f.payment.ReferenceID,
		BusinessID:  f.payment.BusinessID,
		Amount:      f.payment.Amount,
		Code:        code,
		MethodID:    method.ID,
		MethodType:  method.Type,
	})
	if err != nil {
		f.settle(attempt, StateIdle, "Failed to submit code.")
		return err
	}

	if f.finish(attempt, f.cb.OnSubmittedManual) && f.cb.OnClose != nil {
		f.cb.OnClose()
	}
	return nil
}

// DeferCash records the customer's choice to pay in cash later. No network
// call is made; the owner persists the choice and closes the sheet.
func (f *Flow) DeferCash() error {
	if !f.avail.Cash || !f.payment.AllowPayLater {
		return ErrRailNotAvailable
	}
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return ErrFlowFinished
	}
	f.attempt++
	attempt := f.attempt
	f.mu.Unlock()

	if !f.finish(attempt, f.cb.OnDeferCash) {
		return ErrFlowFinished
	}
	return nil
}

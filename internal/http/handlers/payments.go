package handlers

import (
	"net/http"
	"strings"

	"tamu-web/internal/backend"
	"tamu-web/internal/payment"
	"tamu-web/pkg/response"

	"go.uber.org/zap"
)

// loadAvailability pulls both configuration sources and resolves the rails.
// Either source failing is tolerated: the resolver treats it as not loaded,
// which offers nothing rather than guessing.
func (h *Handler) loadAvailability(r *http.Request, businessID string) payment.Availability {
	methods, err := h.Backend.PaymentMethods(r.Context(), businessID)
	if err != nil {
		h.Logger.Warn("payment methods fetch failed", zap.String("businessId", businessID), zap.Error(err))
		methods = nil
	}
	config, err := h.Backend.PaymentConfig(r.Context(), businessID)
	if err != nil {
		h.Logger.Warn("payment config fetch failed", zap.String("businessId", businessID), zap.Error(err))
		config = nil
	}
	return payment.ResolveAvailability(methods, config)
}

func (h *Handler) PaymentOptions(w http.ResponseWriter, r *http.Request) {
	businessID := r.URL.Query().Get("businessId")
	if businessID == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "businessId is required")
		return
	}
	response.Success(w, h.loadAvailability(r, businessID))
}

// CheckoutStart opens a payment flow for an order or a reservation fee and
// returns the resolved rails plus the flow id the follow-up actions target.
func (h *Handler) CheckoutStart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ServiceType   string  `json:"serviceType"`
		ReferenceID   string  `json:"referenceId"`
		Amount        float64 `json:"amount"`
		BusinessID    string  `json:"businessId"`
		AllowPayLater *bool   `json:"allowPayLater"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if body.ServiceType != "order" && body.ServiceType != "reservation_fee" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "serviceType must be order or reservation_fee")
		return
	}
	if body.ReferenceID == "" || body.BusinessID == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "referenceId and businessId are required")
		return
	}
	if body.Amount <= 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Amount must be positive")
		return
	}

	// Pay-later is allowed unless the caller explicitly turned it off.
	allowPayLater := body.AllowPayLater == nil || *body.AllowPayLater

	avail := h.loadAvailability(r, body.BusinessID)

	entry := &flowEntry{}
	flow := payment.NewFlow(
		payment.Context{
			ServiceType:   body.ServiceType,
			ReferenceID:   body.ReferenceID,
			Amount:        body.Amount,
			BusinessID:    body.BusinessID,
			AllowPayLater: allowPayLater,
		},
		avail,
		h.Backend,
		h.token(r),
		h.Logger,
		payment.Callbacks{
			OnSuccessPaid:     func() { entry.record(OutcomePaid) },
			OnDeferCash:       func() { entry.record(OutcomeDeferredCash) },
			OnSubmittedManual: func() { entry.record(OutcomeManualSubmitted) },
			OnClose:           func() { entry.close() },
		},
	)

	poller := flow.Poller()
	poller.Budget = h.Config.PaymentPollBudget
	poller.Initial = h.Config.PaymentPollInitial
	poller.Max = h.Config.PaymentPollMax
	poller.Factor = h.Config.PaymentPollFactor

	entry.flow = flow
	flowID := h.Flows.Add(entry)

	response.Success(w, map[string]any{
		"flowId":       flowID,
		"availability": avail,
	})
}

func (h *Handler) checkoutEntry(w http.ResponseWriter, r *http.Request) (*flowEntry, bool) {
	entry, ok := h.Flows.Get(readPathString(r, "flowId"))
	if !ok {
		response.Error(w, http.StatusNotFound, "FLOW_NOT_FOUND", "Checkout flow not found or expired")
		return nil, false
	}
	return entry, true
}

func (h *Handler) checkoutView(entry *flowEntry, extra map[string]any) map[string]any {
	snapshot := entry.flow.Snapshot()
	outcome, closed := entry.view()
	view := map[string]any{
		"state":   snapshot.State,
		"message": snapshot.Message,
		"outcome": outcome,
		"closed":  closed,
	}
	for k, v := range extra {
		view[k] = v
	}
	return view
}

// CheckoutSTK fires the M-Pesa push and blocks until the poll resolves or
// the budget runs out; the browser holds the request open like the SPA held
// its awaiting spinner.
func (h *Handler) CheckoutSTK(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.checkoutEntry(w, r)
	if !ok {
		return
	}

	var body struct {
		Phone string `json:"phone"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Phone) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Phone number is required")
		return
	}

	status, err := entry.flow.PayWithSTK(r.Context(), body.Phone)
	if err != nil {
		h.checkoutError(w, entry, err, "Failed to initiate M-Pesa.")
		return
	}
	response.Success(w, h.checkoutView(entry, map[string]any{"status": status}))
}

func (h *Handler) CheckoutCard(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.checkoutEntry(w, r)
	if !ok {
		return
	}

	redirectURL, status, err := entry.flow.PayWithCard(r.Context())
	if err != nil {
		h.checkoutError(w, entry, err, "Failed to initiate card payment.")
		return
	}
	extra := map[string]any{"status": status}
	if redirectURL != "" {
		extra["redirectUrl"] = redirectURL
	}
	response.Success(w, h.checkoutView(entry, extra))
}

func (h *Handler) CheckoutManual(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.checkoutEntry(w, r)
	if !ok {
		return
	}

	var body struct {
		MethodID string `json:"methodId"`
		Code     string `json:"code"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Code) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Confirmation code is required")
		return
	}

	if err := entry.flow.SubmitManualCode(r.Context(), body.MethodID, body.Code); err != nil {
		h.checkoutError(w, entry, err, "Failed to submit code.")
		return
	}
	response.Success(w, h.checkoutView(entry, nil))
}

func (h *Handler) CheckoutDeferCash(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.checkoutEntry(w, r)
	if !ok {
		return
	}

	if err := entry.flow.DeferCash(); err != nil {
		h.checkoutError(w, entry, err, "Pay later is not available.")
		return
	}
	response.Success(w, h.checkoutView(entry, nil))
}

func (h *Handler) CheckoutState(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.checkoutEntry(w, r)
	if !ok {
		return
	}
	response.Success(w, h.checkoutView(entry, nil))
}

func (h *Handler) CheckoutClose(w http.ResponseWriter, r *http.Request) {
	h.Flows.Remove(readPathString(r, "flowId"))
	response.Success(w, map[string]any{"closed": true})
}

func (h *Handler) checkoutError(w http.ResponseWriter, entry *flowEntry, err error, fallback string) {
	switch err {
	case payment.ErrFlowFinished:
		response.Error(w, http.StatusConflict, "FLOW_FINISHED", "This checkout already completed")
	case payment.ErrRailNotAvailable:
		response.Error(w, http.StatusBadRequest, "RAIL_NOT_AVAILABLE", "That payment method is not available")
	case payment.ErrUnknownMethod:
		response.Error(w, http.StatusBadRequest, "UNKNOWN_METHOD", "Unknown manual payment method")
	default:
		if apiErr, ok := err.(*backend.APIError); ok {
			response.Error(w, apiErr.Status, "UPSTREAM_ERROR", apiErr.Message)
			return
		}
		response.Error(w, http.StatusBadGateway, "PAYMENT_ERROR", fallback)
	}
}

// PaymentStatusGet is a direct read of the status endpoint, used by the
// confirmation page alongside the realtime bridge.
func (h *Handler) PaymentStatusGet(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("ref")
	if reference == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "ref is required")
		return
	}

	status, err := h.Backend.PaymentStatusByRef(r.Context(), reference)
	if err != nil {
		upstreamError(w, err, "Could not check payment status")
		return
	}
	response.Success(w, status)
}

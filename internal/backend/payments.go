package backend

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) PaymentMethods(ctx context.Context, businessID string) (*PaymentMethods, error) {
	query := url.Values{"businessId": {businessID}}
	var out PaymentMethods
	if err := c.do(ctx, http.MethodGet, c.apiURL("/api/payment-methods", query), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PaymentConfig(ctx context.Context, businessID string) (*PaymentConfig, error) {
	query := url.Values{"businessId": {businessID}}
	var out struct {
		Config *PaymentConfig `json:"config"`
	}
	if err := c.do(ctx, http.MethodGet, c.apiURL("/api/payment-configs", query), "", nil, &out); err != nil {
		return nil, err
	}
	return out.Config, nil
}

type STKInput struct {
	ServiceType string  `json:"serviceType"`
	ReferenceID string  `json:"referenceId"`
	BusinessID  string  `json:"businessId"`
	Amount      float64 `json:"amount"`
	Phone       string  `json:"phone"`
}

// InitiateSTK asks the backend to fire an M-Pesa push to the customer's
// phone. The returned reference is what the status endpoint is polled with.
func (c *Client) InitiateSTK(ctx context.Context, token string, input STKInput) (*PaymentInitiation, error) {
	var out PaymentInitiation
	if err := c.do(ctx, http.MethodPost, c.apiURL("/api/payments/mpesa/stk", nil), token, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type ManualCodeInput struct {
	ServiceType string  `json:"serviceType"`
	ReferenceID string  `json:"referenceId"`
	BusinessID  string  `json:"businessId"`
	Amount      float64 `json:"amount"`
	Code        string  `json:"code"`
	MethodID    string  `json:"methodId"`
	MethodType  string  `json:"methodType"`
}

// SubmitManualCode records a customer-entered M-Pesa confirmation code. The
// backend reconciles it later; a 2xx here does not mean the payment settled.
func (c *Client) SubmitManualCode(ctx context.Context, token string, input ManualCodeInput) error {
	return c.do(ctx, http.MethodPost, c.apiURL("/api/payments/mpesa/manual", nil), token, input, nil)
}

type CardInput struct {
	ServiceType string  `json:"serviceType"`
	ReferenceID string  `json:"referenceId"`
	BusinessID  string  `json:"businessId"`
	Amount      float64 `json:"amount"`
}

func (c *Client) InitiateCard(ctx context.Context, token string, input CardInput) (*PaymentInitiation, error) {
	var out PaymentInitiation
	if err := c.do(ctx, http.MethodPost, c.apiURL("/api/payments/card", nil), token, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PaymentStatusByRef(ctx context.Context, reference string) (*PaymentStatusResult, error) {
	query := url.Values{"ref": {reference}}
	var out PaymentStatusResult
	if err := c.do(ctx, http.MethodGet, c.apiURL("/api/payments/status", query), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

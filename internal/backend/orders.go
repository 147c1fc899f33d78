package backend

import (
	"context"
	"net/http"
	"net/url"
)

type OrderInput struct {
	RestaurantID string      `json:"restaurantId"`
	BusinessID   string      `json:"businessId"`
	Items        []OrderItem `json:"items"`
	Notes        string      `json:"notes,omitempty"`
}

func (c *Client) CreateOrder(ctx context.Context, token string, input OrderInput) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPost, c.apiURL("/api/orders", nil), token, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, token, id string) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodGet, c.apiURL("/api/orders/"+url.PathEscape(id), nil), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type OrderPatch struct {
	Status string `json:"status,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

func (c *Client) PatchOrder(ctx context.Context, token, id string, patch OrderPatch) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPatch, c.apiURL("/api/orders/"+url.PathEscape(id), nil), token, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelOrder(ctx context.Context, token, id string) (*Order, error) {
	return c.PatchOrder(ctx, token, id, OrderPatch{Status: "cancelled"})
}

package backend

import (
	"context"
	"net/http"
	"net/url"
)

type ReservationInput struct {
	RestaurantID string `json:"restaurantId"`
	BusinessID   string `json:"businessId"`
	PartySize    int    `json:"partySize"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Notes        string `json:"notes,omitempty"`
}

func (c *Client) CreateReservation(ctx context.Context, token string, input ReservationInput) (*Reservation, error) {
	var out Reservation
	if err := c.do(ctx, http.MethodPost, c.apiURL("/api/reservations", nil), token, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReservation(ctx context.Context, token, id string) (*Reservation, error) {
	var out Reservation
	if err := c.do(ctx, http.MethodGet, c.apiURL("/api/reservations/"+url.PathEscape(id), nil), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReservationPolicy(ctx context.Context, businessID string) (*ReservationPolicy, error) {
	query := url.Values{"businessId": {businessID}}
	var out ReservationPolicy
	if err := c.do(ctx, http.MethodGet, c.apiURL("/api/reservations/policy", query), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

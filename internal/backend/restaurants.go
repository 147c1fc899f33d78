package backend

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListRestaurants(ctx context.Context) ([]Restaurant, error) {
	var out []Restaurant
	if err := c.do(ctx, http.MethodGet, c.apiURL("/api/restaurants", nil), "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRestaurant(ctx context.Context, id string) (*Restaurant, error) {
	var out Restaurant
	if err := c.do(ctx, http.MethodGet, c.apiURL("/api/restaurants/"+url.PathEscape(id), nil), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetRestaurantByEmail(ctx context.Context, email string) (*Restaurant, error) {
	query := url.Values{"email": {email}}
	var out Restaurant
	if err := c.do(ctx, http.MethodGet, c.apiURL("/api/restaurants/by-email", query), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListReviews(ctx context.Context, restaurantID string) ([]Review, error) {
	var out []Review
	if err := c.do(ctx, http.MethodGet, c.apiURL("/api/restaurants/"+url.PathEscape(restaurantID)+"/reviews", nil), "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

func (c *Client) CreateReview(ctx context.Context, token, restaurantID string, input ReviewInput) (*Review, error) {
	var out Review
	if err := c.do(ctx, http.MethodPost, c.apiURL("/api/restaurants/"+url.PathEscape(restaurantID)+"/reviews", nil), token, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateReview(ctx context.Context, token, restaurantID, reviewID string, input ReviewInput) (*Review, error) {
	var out Review
	if err := c.do(ctx, http.MethodPatch, c.apiURL("/api/restaurants/"+url.PathEscape(restaurantID)+"/reviews/"+url.PathEscape(reviewID), nil), token, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteReview(ctx context.Context, token, restaurantID, reviewID string) error {
	return c.do(ctx, http.MethodDelete, c.apiURL("/api/restaurants/"+url.PathEscape(restaurantID)+"/reviews/"+url.PathEscape(reviewID), nil), token, nil, nil)
}

func (c *Client) ReviewEligibility(ctx context.Context, token, restaurantID string) (*ReviewEligibility, error) {
	var out ReviewEligibility
	if err := c.do(ctx, http.MethodGet, c.apiURL("/api/restaurants/"+url.PathEscape(restaurantID)+"/reviews/eligibility", nil), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

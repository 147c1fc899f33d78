package backend

import (
	"context"
	"net/http"
)

type AlphaTesterInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// JoinAlphaTesters registers a visitor on the alpha-tester list.
func (c *Client) JoinAlphaTesters(ctx context.Context, input AlphaTesterInput) error {
	return c.do(ctx, http.MethodPost, c.apiURL("/api/alpha-testers", nil), "", input, nil)
}

type FeedbackInput struct {
	Email   string `json:"email,omitempty"`
	Topic   string `json:"topic,omitempty"`
	Message string `json:"message"`
}

func (c *Client) SubmitFeedback(ctx context.Context, token string, input FeedbackInput) error {
	return c.do(ctx, http.MethodPost, c.apiURL("/api/feedback", nil), token, input, nil)
}

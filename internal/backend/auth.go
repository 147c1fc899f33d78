package backend

import (
	"context"
	"net/http"
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, c.authURL("/auth/register"), "", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, c.authURL("/auth/login"), "", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type OTPInput struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (c *Client) VerifyOTP(ctx context.Context, input OTPInput) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, c.authURL("/auth/verify-otp"), "", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResendOTP(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, c.authURL("/auth/resend-otp"), "", map[string]string{"email": email}, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, c.authURL("/auth/forgot-password"), "", map[string]string{"email": email}, nil)
}

type ResetPasswordInput struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

func (c *Client) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	return c.do(ctx, http.MethodPost, c.authURL("/auth/reset-password"), "", input, nil)
}

func (c *Client) Profile(ctx context.Context, token string) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, c.authURL("/auth/profile"), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, c.authURL("/auth/logout"), token, nil, nil)
}

func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, c.apiURL("/api/me", nil), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

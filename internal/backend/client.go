// Package backend is the typed client for the TAMU platform API. The web
// service owns no data of its own; everything here is a pass-through to the
// backend REST API, which is the source of truth for restaurants, orders,
// reservations, reviews, payments and accounts.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Client struct {
	apiBase  string
	authBase string
	http     *http.Client
	logger   *zap.Logger
}

func New(apiBase, authBase string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiBase:  strings.TrimSuffix(apiBase, "/"),
		authBase: strings.TrimSuffix(authBase, "/"),
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// APIError is a non-2xx backend response. Message carries the backend's own
// "message" field when the body was JSON, otherwise a generic fallback.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func IsStatus(err error, status int) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == status
}

func (c *Client) do(ctx context.Context, method, rawURL, token string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return decodeAPIError(res.StatusCode, payload)
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, payload []byte) error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	message := ""
	if json.Unmarshal(payload, &body) == nil {
		message = strings.TrimSpace(body.Message)
		if message == "" {
			message = strings.TrimSpace(body.Error)
		}
	}
	if message == "" {
		message = fmt.Sprintf("request failed (%d)", status)
	}
	return &APIError{Status: status, Message: message}
}

func (c *Client) apiURL(path string, query url.Values) string {
	u := c.apiBase + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) authURL(path string) string {
	return c.authBase + path
}

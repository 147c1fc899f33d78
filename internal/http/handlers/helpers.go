package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"tamu-web/internal/backend"
	"tamu-web/internal/middleware"
	"tamu-web/pkg/response"

	"github.com/go-chi/chi/v5"
)

func readPathString(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil && err != io.EOF {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return false
	}
	return true
}

// upstreamError converts a backend failure into the matching response,
// keeping the backend's own status and message when it gave one.
func upstreamError(w http.ResponseWriter, err error, fallback string) {
	if apiErr, ok := err.(*backend.APIError); ok {
		response.Error(w, apiErr.Status, "UPSTREAM_ERROR", apiErr.Message)
		return
	}
	response.Error(w, http.StatusBadGateway, "UPSTREAM_ERROR", fallback)
}

func (h *Handler) token(r *http.Request) string {
	return middleware.Token(r, h.Sessions)
}

func (h *Handler) sessionID(r *http.Request) string {
	return middleware.SessionID(r)
}

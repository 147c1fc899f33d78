package handlers

import (
	"net/http"
	"strings"

	"tamu-web/internal/backend"
	"tamu-web/pkg/response"
)

func (h *Handler) AlphaTesterJoin(w http.ResponseWriter, r *http.Request) {
	var input backend.AlphaTesterInput
	if !decodeBody(w, r, &input) {
		return
	}
	if strings.TrimSpace(input.Email) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email is required")
		return
	}

	if err := h.Backend.JoinAlphaTesters(r.Context(), input); err != nil {
		upstreamError(w, err, "Could not join the alpha list")
		return
	}
	response.Success(w, map[string]any{"joined": true})
}

func (h *Handler) FeedbackSubmit(w http.ResponseWriter, r *http.Request) {
	var input backend.FeedbackInput
	if !decodeBody(w, r, &input) {
		return
	}
	if strings.TrimSpace(input.Message) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Message is required")
		return
	}

	if err := h.Backend.SubmitFeedback(r.Context(), h.token(r), input); err != nil {
		upstreamError(w, err, "Could not submit feedback")
		return
	}
	response.Success(w, map[string]any{"submitted": true})
}

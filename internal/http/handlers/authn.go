package handlers

import (
	"net/http"
	"strings"

	"tamu-web/internal/backend"
	"tamu-web/pkg/response"

	"go.uber.org/zap"
)

// Auth handlers pass through to the TAMU auth service and keep the issued
// token in the session store, so the rest of the app (cart checkout, the
// realtime bridge) reacts to the login event.

func (h *Handler) AuthRegister(w http.ResponseWriter, r *http.Request) {
	var input backend.RegisterInput
	if !decodeBody(w, r, &input) {
		return
	}
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required")
		return
	}

	result, err := h.Backend.Register(r.Context(), input)
	if err != nil {
		upstreamError(w, err, "Could not create account")
		return
	}
	if result.Token != "" {
		h.Sessions.SetToken(h.sessionID(r), result.Token)
	}
	response.Success(w, result)
}

func (h *Handler) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var input backend.LoginInput
	if !decodeBody(w, r, &input) {
		return
	}

	result, err := h.Backend.Login(r.Context(), input)
	if err != nil {
		upstreamError(w, err, "Could not sign in")
		return
	}
	if result.Token != "" {
		h.Sessions.SetToken(h.sessionID(r), result.Token)
	}
	response.Success(w, result)
}

func (h *Handler) AuthVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var input backend.OTPInput
	if !decodeBody(w, r, &input) {
		return
	}

	result, err := h.Backend.VerifyOTP(r.Context(), input)
	if err != nil {
		upstreamError(w, err, "Could not verify code")
		return
	}
	if result.Token != "" {
		h.Sessions.SetToken(h.sessionID(r), result.Token)
	}
	response.Success(w, result)
}

func (h *Handler) AuthResendOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if err := h.Backend.ResendOTP(r.Context(), body.Email); err != nil {
		upstreamError(w, err, "Could not resend code")
		return
	}
	response.Success(w, map[string]any{"sent": true})
}

func (h *Handler) AuthForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if err := h.Backend.ForgotPassword(r.Context(), body.Email); err != nil {
		upstreamError(w, err, "Could not start password reset")
		return
	}
	response.Success(w, map[string]any{"sent": true})
}

func (h *Handler) AuthResetPassword(w http.ResponseWriter, r *http.Request) {
	var input backend.ResetPasswordInput
	if !decodeBody(w, r, &input) {
		return
	}

	if err := h.Backend.ResetPassword(r.Context(), input); err != nil {
		upstreamError(w, err, "Could not reset password")
		return
	}
	response.Success(w, map[string]any{"reset": true})
}

func (h *Handler) AuthProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.Backend.Profile(r.Context(), h.token(r))
	if err != nil {
		upstreamError(w, err, "Could not load profile")
		return
	}
	response.Success(w, user)
}

func (h *Handler) AuthLogout(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(r)
	token := h.token(r)

	// The local session is cleared regardless of the upstream call: a
	// failed remote logout must not leave the browser signed in.
	h.Sessions.Clear(sessionID)
	h.Carts.Drop(sessionID)

	if token != "" {
		if err := h.Backend.Logout(r.Context(), token); err != nil {
			h.Logger.Warn("upstream logout failed", zap.Error(err))
		}
	}
	response.Success(w, map[string]any{"loggedOut": true})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Backend.Me(r.Context(), h.token(r))
	if err != nil {
		upstreamError(w, err, "Could not load account")
		return
	}
	response.Success(w, user)
}

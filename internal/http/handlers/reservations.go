package handlers

import (
	"net/http"

	"tamu-web/internal/backend"
	"tamu-web/pkg/response"
)

func (h *Handler) ReservationCreate(w http.ResponseWriter, r *http.Request) {
	var input backend.ReservationInput
	if !decodeBody(w, r, &input) {
		return
	}
	if input.RestaurantID == "" || input.Date == "" || input.Time == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Restaurant, date and time are required")
		return
	}
	if input.PartySize <= 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Party size must be at least 1")
		return
	}

	reservation, err := h.Backend.CreateReservation(r.Context(), h.token(r), input)
	if err != nil {
		upstreamError(w, err, "Could not create reservation")
		return
	}
	response.Created(w, reservation)
}

func (h *Handler) ReservationDetail(w http.ResponseWriter, r *http.Request) {
	id := readPathString(r, "id")
	reservation, err := h.Backend.GetReservation(r.Context(), h.token(r), id)
	if err != nil {
		if backend.IsStatus(err, http.StatusNotFound) {
			response.Error(w, http.StatusNotFound, "RESERVATION_NOT_FOUND", "Reservation not found")
			return
		}
		upstreamError(w, err, "Could not load reservation")
		return
	}
	response.Success(w, reservation)
}

func (h *Handler) ReservationPolicy(w http.ResponseWriter, r *http.Request) {
	businessID := r.URL.Query().Get("businessId")
	if businessID == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "businessId is required")
		return
	}

	policy, err := h.Backend.ReservationPolicy(r.Context(), businessID)
	if err != nil {
		upstreamError(w, err, "Could not load reservation policy")
		return
	}
	response.Success(w, policy)
}

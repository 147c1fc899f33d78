package handlers

import (
	"net/http"

	"tamu-web/internal/backend"
	"tamu-web/pkg/response"
)

// OrderCreate places the session's cart as an order. The cart is cleared
// only after the backend accepts it.
func (h *Handler) OrderCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RestaurantID string `json:"restaurantId"`
		BusinessID   string `json:"businessId"`
		Notes        string `json:"notes"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.RestaurantID == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Restaurant id is required")
		return
	}

	c := h.Carts.Cart(h.sessionID(r))
	items := c.Items()
	if len(items) == 0 {
		response.Error(w, http.StatusBadRequest, "CART_EMPTY", "Cart is empty")
		return
	}

	orderItems := make([]backend.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, backend.OrderItem{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	order, err := h.Backend.CreateOrder(r.Context(), h.token(r), backend.OrderInput{
		RestaurantID: body.RestaurantID,
		BusinessID:   body.BusinessID,
		Items:        orderItems,
		Notes:        body.Notes,
	})
	if err != nil {
		upstreamError(w, err, "Could not place order")
		return
	}

	c.Clear()
	response.Created(w, order)
}

func (h *Handler) OrderDetail(w http.ResponseWriter, r *http.Request) {
	id := readPathString(r, "id")
	order, err := h.Backend.GetOrder(r.Context(), h.token(r), id)
	if err != nil {
		if backend.IsStatus(err, http.StatusNotFound) {
			response.Error(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
			return
		}
		upstreamError(w, err, "Could not load order")
		return
	}
	response.Success(w, order)
}

func (h *Handler) OrderUpdate(w http.ResponseWriter, r *http.Request) {
	id := readPathString(r, "id")
	var patch backend.OrderPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	order, err := h.Backend.PatchOrder(r.Context(), h.token(r), id, patch)
	if err != nil {
		upstreamError(w, err, "Could not update order")
		return
	}
	response.Success(w, order)
}

func (h *Handler) OrderCancel(w http.ResponseWriter, r *http.Request) {
	id := readPathString(r, "id")
	order, err := h.Backend.CancelOrder(r.Context(), h.token(r), id)
	if err != nil {
		upstreamError(w, err, "Could not cancel order")
		return
	}
	response.Success(w, order)
}

package handlers

import (
	"net/http"
	"strings"

	"tamu-web/internal/cart"
	"tamu-web/pkg/response"
)

func (h *Handler) cartView(c *cart.Cart) map[string]any {
	return map[string]any{
		"items": c.Items(),
		"total": c.Total(),
	}
}

func (h *Handler) CartGet(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.cartView(h.Carts.Cart(h.sessionID(r))))
}

func (h *Handler) CartAdd(w http.ResponseWriter, r *http.Request) {
	var item cart.Item
	if !decodeBody(w, r, &item) {
		return
	}
	if strings.TrimSpace(item.Name) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Item name is required")
		return
	}

	c := h.Carts.Cart(h.sessionID(r))
	c.Add(item)
	response.Success(w, h.cartView(c))
}

func (h *Handler) CartUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key      string `json:"key"`
		Quantity int    `json:"quantity"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Key) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Item key is required")
		return
	}

	c := h.Carts.Cart(h.sessionID(r))
	c.SetQuantity(body.Key, body.Quantity)
	response.Success(w, h.cartView(c))
}

func (h *Handler) CartRemove(w http.ResponseWriter, r *http.Request) {
	key := readPathString(r, "key")
	c := h.Carts.Cart(h.sessionID(r))
	c.Remove(key)
	response.Success(w, h.cartView(c))
}

func (h *Handler) CartClear(w http.ResponseWriter, r *http.Request) {
	c := h.Carts.Cart(h.sessionID(r))
	c.Clear()
	response.Success(w, h.cartView(c))
}

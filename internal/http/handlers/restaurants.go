package handlers

import (
	"net/http"
	"sort"
	"strings"

	"tamu-web/internal/backend"
	"tamu-web/pkg/response"
)

// RestaurantsList serves the browse page: the backend listing filtered and
// sorted to the visitor's query. Filtering happens here because the backend
// listing endpoint has no query surface; the SPA did the same client-side.
func (h *Handler) RestaurantsList(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.Backend.ListRestaurants(r.Context())
	if err != nil {
		upstreamError(w, err, "Could not load restaurants")
		return
	}

	query := r.URL.Query()
	search := strings.ToLower(strings.TrimSpace(query.Get("q")))
	tag := strings.ToLower(strings.TrimSpace(query.Get("tag")))
	openOnly := query.Get("open") == "true"

	filtered := restaurants[:0]
	for _, rest := range restaurants {
		if openOnly && !rest.Open {
			continue
		}
		if search != "" && !matchesSearch(rest, search) {
			continue
		}
		if tag != "" && !hasTag(rest, tag) {
			continue
		}
		filtered = append(filtered, rest)
	}

	sortRestaurants(filtered, query.Get("sort"))
	response.Success(w, filtered)
}

func matchesSearch(rest backend.Restaurant, search string) bool {
	if strings.Contains(strings.ToLower(rest.Name), search) {
		return true
	}
	if strings.Contains(strings.ToLower(rest.Cuisine), search) {
		return true
	}
	for _, item := range rest.Menu {
		if strings.Contains(strings.ToLower(item.Name), search) {
			return true
		}
	}
	return false
}

func hasTag(rest backend.Restaurant, tag string) bool {
	for _, t := range rest.Tags {
		if strings.ToLower(t) == tag {
			return true
		}
	}
	return false
}

func sortRestaurants(restaurants []backend.Restaurant, key string) {
	switch key {
	case "rating":
		sort.SliceStable(restaurants, func(i, j int) bool {
			return restaurants[i].Rating > restaurants[j].Rating
		})
	case "name":
		sort.SliceStable(restaurants, func(i, j int) bool {
			return strings.ToLower(restaurants[i].Name) < strings.ToLower(restaurants[j].Name)
		})
	}
}

func (h *Handler) RestaurantDetail(w http.ResponseWriter, r *http.Request) {
	id := readPathString(r, "id")
	if id == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Restaurant id is required")
		return
	}

	restaurant, err := h.Backend.GetRestaurant(r.Context(), id)
	if err != nil {
		if backend.IsStatus(err, http.StatusNotFound) {
			response.Error(w, http.StatusNotFound, "RESTAURANT_NOT_FOUND", "Restaurant not found")
			return
		}
		upstreamError(w, err, "Could not load restaurant")
		return
	}
	response.Success(w, restaurant)
}

// RestaurantByEmail resolves a restaurant from its contact email, used by
// deep links from the mobile app.
func (h *Handler) RestaurantByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "email is required")
		return
	}

	restaurant, err := h.Backend.GetRestaurantByEmail(r.Context(), email)
	if err != nil {
		if backend.IsStatus(err, http.StatusNotFound) {
			response.Error(w, http.StatusNotFound, "RESTAURANT_NOT_FOUND", "Restaurant not found")
			return
		}
		upstreamError(w, err, "Could not load restaurant")
		return
	}
	response.Success(w, restaurant)
}

func (h *Handler) ReviewsList(w http.ResponseWriter, r *http.Request) {
	id := readPathString(r, "id")
	reviews, err := h.Backend.ListReviews(r.Context(), id)
	if err != nil {
		upstreamError(w, err, "Could not load reviews")
		return
	}
	response.Success(w, reviews)
}

func (h *Handler) ReviewCreate(w http.ResponseWriter, r *http.Request) {
	id := readPathString(r, "id")
	var input backend.ReviewInput
	if !decodeBody(w, r, &input) {
		return
	}
	if input.Rating < 1 || input.Rating > 5 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Rating must be between 1 and 5")
		return
	}

	review, err := h.Backend.CreateReview(r.Context(), h.token(r), id, input)
	if err != nil {
		upstreamError(w, err, "Could not submit review")
		return
	}
	response.Created(w, review)
}

func (h *Handler) ReviewUpdate(w http.ResponseWriter, r *http.Request) {
	id := readPathString(r, "id")
	reviewID := readPathString(r, "reviewId")
	var input backend.ReviewInput
	if !decodeBody(w, r, &input) {
		return
	}

	review, err := h.Backend.UpdateReview(r.Context(), h.token(r), id, reviewID, input)
	if err != nil {
		upstreamError(w, err, "Could not update review")
		return
	}
	response.Success(w, review)
}

func (h *Handler) ReviewDelete(w http.ResponseWriter, r *http.Request) {
	id := readPathString(r, "id")
	reviewID := readPathString(r, "reviewId")
	if err := h.Backend.DeleteReview(r.Context(), h.token(r), id, reviewID); err != nil {
		upstreamError(w, err, "Could not delete review")
		return
	}
	response.Success(w, map[string]any{"deleted": true})
}

func (h *Handler) ReviewEligibility(w http.ResponseWriter, r *http.Request) {
	id := readPathString(r, "id")
	eligibility, err := h.Backend.ReviewEligibility(r.Context(), h.token(r), id)
	if err != nil {
		upstreamError(w, err, "Could not check review eligibility")
		return
	}
	response.Success(w, eligibility)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tamu-web/internal/backend"
	"tamu-web/internal/cart"
	"tamu-web/internal/config"
	"tamu-web/internal/middleware"
	"tamu-web/internal/session"
)

// ordersUpstream fakes the platform order API.
type ordersUpstream struct {
	mu         sync.Mutex
	failCreate bool
	created    []map[string]any
}

func (u *ordersUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/api/orders" && r.Method == http.MethodPost {
		if u.failCreate {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"message":"kitchen closed"}`))
			return
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		u.created = append(u.created, body)
		json.NewEncoder(w).Encode(map[string]any{"id": "ord-1", "status": "pending"})
		return
	}
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"message":"not found"}`))
}

// sessionClient replays the session cookie so consecutive requests land on
// the same cart.
type sessionClient struct {
	t      *testing.T
	router http.Handler
	cookie *http.Cookie
}

func newCartRouter(t *testing.T, upstream http.Handler) (*Handler, *sessionClient) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	h := &Handler{
		Backend:  backend.New(srv.URL, srv.URL, 5*time.Second, zap.NewNop()),
		Logger:   zap.NewNop(),
		Config:   config.Config{},
		Sessions: session.NewStore(),
		Carts:    cart.NewStore(),
		Flows:    NewFlowRegistry(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Session(h.Sessions))
	r.Get("/api/cart", h.CartGet)
	r.Post("/api/cart/items", h.CartAdd)
	r.Put("/api/cart/items", h.CartUpdate)
	r.Delete("/api/cart/items/{key}", h.CartRemove)
	r.Delete("/api/cart", h.CartClear)
	r.Post("/api/orders", h.OrderCreate)
	return h, &sessionClient{t: t, router: r}
}

func (c *sessionClient) do(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	if c.cookie == nil {
		for _, cookie := range rec.Result().Cookies() {
			if cookie.Name == middleware.SessionCookie {
				c.cookie = cookie
			}
		}
	}

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func cartItems(t *testing.T, body map[string]any) []any {
	t.Helper()
	items, _ := dataOf(t, body)["items"].([]any)
	return items
}

func TestCartAddAndGet(t *testing.T) {
	_, client := newCartRouter(t, &ordersUpstream{})

	rec, resp := client.do(http.MethodPost, "/api/cart/items", map[string]any{
		"id": "it-1", "name": "Pilau", "price": 250, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, cartItems(t, resp), 1)

	rec, resp = client.do(http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := dataOf(t, resp)
	assert.Equal(t, float64(500), data["total"])
}

func TestCartAddRequiresName(t *testing.T) {
	_, client := newCartRouter(t, &ordersUpstream{})

	rec, resp := client.do(http.MethodPost, "/api/cart/items", map[string]any{"price": 100})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp["error"])
}

func TestCartUpdateAndRemove(t *testing.T) {
	_, client := newCartRouter(t, &ordersUpstream{})

	client.do(http.MethodPost, "/api/cart/items", map[string]any{"id": "it-1", "name": "Pilau", "price": 250})
	client.do(http.MethodPost, "/api/cart/items", map[string]any{"id": "it-2", "name": "Soda", "price": 80})

	_, resp := client.do(http.MethodPut, "/api/cart/items", map[string]any{"key": "it-1", "quantity": 3})
	assert.Equal(t, float64(830), dataOf(t, resp)["total"])

	_, resp = client.do(http.MethodDelete, "/api/cart/items/it-2", nil)
	require.Len(t, cartItems(t, resp), 1)

	_, resp = client.do(http.MethodDelete, "/api/cart", nil)
	require.Empty(t, cartItems(t, resp))
}

func TestOrderCreatePlacesCartAndClearsIt(t *testing.T) {
	upstream := &ordersUpstream{}
	_, client := newCartRouter(t, upstream)

	client.do(http.MethodPost, "/api/cart/items", map[string]any{"id": "it-1", "name": "Pilau", "price": 250, "quantity": 2})

	rec, resp := client.do(http.MethodPost, "/api/orders", map[string]any{
		"restaurantId": "rest-1", "businessId": "biz-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "ord-1", dataOf(t, resp)["id"])

	upstream.mu.Lock()
	require.Len(t, upstream.created, 1)
	items, _ := upstream.created[0]["items"].([]any)
	upstream.mu.Unlock()
	require.Len(t, items, 1)

	_, resp = client.do(http.MethodGet, "/api/cart", nil)
	assert.Empty(t, cartItems(t, resp), "cart clears once the order is accepted")
}

func TestOrderCreateKeepsCartOnUpstreamFailure(t *testing.T) {
	upstream := &ordersUpstream{failCreate: true}
	_, client := newCartRouter(t, upstream)

	client.do(http.MethodPost, "/api/cart/items", map[string]any{"id": "it-1", "name": "Pilau", "price": 250})

	rec, resp := client.do(http.MethodPost, "/api/orders", map[string]any{
		"restaurantId": "rest-1", "businessId": "biz-1",
	})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "kitchen closed", resp["message"])

	_, resp = client.do(http.MethodGet, "/api/cart", nil)
	require.Len(t, cartItems(t, resp), 1, "a failed order must not lose the cart")
}

func TestOrderCreateRejectsEmptyCart(t *testing.T) {
	_, client := newCartRouter(t, &ordersUpstream{})

	rec, resp := client.do(http.MethodPost, "/api/orders", map[string]any{
		"restaurantId": "rest-1", "businessId": "biz-1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CART_EMPTY", resp["error"])
}

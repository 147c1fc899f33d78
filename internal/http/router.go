package httpapi

import (
	"net/http"

	"tamu-web/internal/backend"
	"tamu-web/internal/cart"
	"tamu-web/internal/config"
	"tamu-web/internal/http/handlers"
	"tamu-web/internal/middleware"
	"tamu-web/internal/session"
	"tamu-web/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func NewRouter(client *backend.Client, logger *zap.Logger, cfg config.Config, sessions *session.Store, carts *cart.Store, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger))
	r.Use(middleware.Session(sessions))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{
		Backend:  client,
		Logger:   logger,
		Config:   cfg,
		Sessions: sessions,
		Carts:    carts,
		Flows:    handlers.NewFlowRegistry(),
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/restaurants", h.RestaurantsList)
		r.Get("/restaurants/by-email", h.RestaurantByEmail)
		r.Get("/restaurants/{id}", h.RestaurantDetail)
		r.Get("/restaurants/{id}/reviews", h.ReviewsList)

		r.Get("/reservations/policy", h.ReservationPolicy)
		r.Get("/payments/options", h.PaymentOptions)
		r.Get("/payments/status", h.PaymentStatusGet)

		r.Get("/cart", h.CartGet)
		r.Post("/cart/items", h.CartAdd)
		r.Put("/cart/items", h.CartUpdate)
		r.Delete("/cart/items/{key}", h.CartRemove)
		r.Delete("/cart", h.CartClear)

		r.Post("/alpha-testers", h.AlphaTesterJoin)
		r.Post("/feedback", h.FeedbackSubmit)

		// Everything below rides on the backend auth token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(sessions, cfg.JWTSecret))

			r.Get("/me", h.Me)

			r.Post("/orders", h.OrderCreate)
			r.Get("/orders/{id}", h.OrderDetail)
			r.Patch("/orders/{id}", h.OrderUpdate)
			r.Post("/orders/{id}/cancel", h.OrderCancel)

			r.Post("/reservations", h.ReservationCreate)
			r.Get("/reservations/{id}", h.ReservationDetail)

			r.Post("/restaurants/{id}/reviews", h.ReviewCreate)
			r.Patch("/restaurants/{id}/reviews/{reviewId}", h.ReviewUpdate)
			r.Delete("/restaurants/{id}/reviews/{reviewId}", h.ReviewDelete)
			r.Get("/restaurants/{id}/reviews/eligibility", h.ReviewEligibility)

			r.Post("/checkout/flows", h.CheckoutStart)
			r.Get("/checkout/flows/{flowId}", h.CheckoutState)
			r.Post("/checkout/flows/{flowId}/stk", h.CheckoutSTK)
			r.Post("/checkout/flows/{flowId}/card", h.CheckoutCard)
			r.Post("/checkout/flows/{flowId}/manual", h.CheckoutManual)
			r.Post("/checkout/flows/{flowId}/defer-cash", h.CheckoutDeferCash)
			r.Delete("/checkout/flows/{flowId}", h.CheckoutClose)
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.AuthRegister)
		r.Post("/login", h.AuthLogin)
		r.Post("/verify-otp", h.AuthVerifyOTP)
		r.Post("/resend-otp", h.AuthResendOTP)
		r.Post("/forgot-password", h.AuthForgotPassword)
		r.Post("/reset-password", h.AuthResetPassword)
		r.Get("/profile", h.AuthProfile)
		r.Post("/logout", h.AuthLogout)
	})

	if wsServer != nil {
		r.Get("/ws/orders/{id}", wsServer.OrderWS)
		r.Get("/ws/reservations/{id}", wsServer.ReservationWS)
	}

	return r
}

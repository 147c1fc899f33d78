package handlers

import (
	"tamu-web/internal/backend"
	"tamu-web/internal/cart"
	"tamu-web/internal/config"
	"tamu-web/internal/session"

	"go.uber.org/zap"
)

type Handler struct {
	Backend  *backend.Client
	Logger   *zap.Logger
	Config   config.Config
	Sessions *session.Store
	Carts    *cart.Store
	Flows    *FlowRegistry
}

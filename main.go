package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tamu-web/internal/backend"
	"tamu-web/internal/cart"
	"tamu-web/internal/config"
	httpapi "tamu-web/internal/http"
	"tamu-web/internal/logger"
	"tamu-web/internal/session"
	"tamu-web/internal/ws"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	client := backend.New(cfg.APIBaseURL, cfg.AuthBaseURL, cfg.APIRequestTimeout, log)
	sessions := session.NewStore()
	carts := cart.NewStore()
	wsServer := ws.New(client, sessions, cfg, log)

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(client, log, cfg, sessions, carts, wsServer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // checkout STK holds the request through the poll budget
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("tamu web api ready", zap.String("base", "/api"))
		log.Info("tamu web ws ready", zap.String("base", "/ws"))
		log.Info("tamu web listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("backend", cfg.APIBaseURL),
			zap.String("realtime", cfg.RealtimeURL+cfg.RealtimePath),
		)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}

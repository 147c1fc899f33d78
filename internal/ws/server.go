// Package ws pushes live order and reservation status to the browser. Each
// connection owns one realtime.Bridge: gateway pushes flow straight through,
// and the bridge's interval re-fetch covers gateway outages, so the browser
// only ever speaks one protocol to us.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"tamu-web/internal/backend"
	"tamu-web/internal/config"
	"tamu-web/internal/middleware"
	"tamu-web/internal/realtime"
	"tamu-web/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	Backend  *backend.Client
	Sessions *session.Store
	Config   config.Config
	Logger   *zap.Logger

	// Dial overrides the gateway dialer in tests.
	Dial realtime.Dialer
}

func New(client *backend.Client, sessions *session.Store, cfg config.Config, logger *zap.Logger) *Server {
	return &Server{Backend: client, Sessions: sessions, Config: cfg, Logger: logger}
}

type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

// sessionTokens adapts the session store to the bridge's TokenSource, so a
// bridge opened before sign-in connects when this session logs in.
type sessionTokens struct {
	store     *session.Store
	sessionID string
}

func (t sessionTokens) Token() string {
	return t.store.Token(t.sessionID)
}

func (t sessionTokens) OnLogin(fn func(token string)) (cancel func()) {
	var once sync.Once
	var unsubscribe func()
	unsubscribe = t.store.Subscribe(func(event session.Event) {
		if event.Kind != session.EventLogin || event.SessionID != t.sessionID {
			return
		}
		once.Do(func() {
			fn(event.Token)
		})
	})
	return unsubscribe
}

func (s *Server) OrderWS(w http.ResponseWriter, r *http.Request) {
	s.serveEntity(w, r, "order", s.Config.OrderPollInterval, func(ctx context.Context, id, token string) (realtime.Record, error) {
		order, err := s.Backend.GetOrder(ctx, token, id)
		if err != nil {
			return realtime.Record{}, err
		}
		return recordOf(order.Status, order.UpdatedAt, order)
	})
}

func (s *Server) ReservationWS(w http.ResponseWriter, r *http.Request) {
	s.serveEntity(w, r, "reservation", s.Config.ReservationPollInterval, func(ctx context.Context, id, token string) (realtime.Record, error) {
		reservation, err := s.Backend.GetReservation(ctx, token, id)
		if err != nil {
			return realtime.Record{}, err
		}
		return recordOf(reservation.Status, reservation.UpdatedAt, reservation)
	})
}

func recordOf(status string, updatedAt time.Time, record any) (realtime.Record, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return realtime.Record{}, err
	}
	// Some backends never set updatedAt; a zero time must not become a
	// negative stamp that outranks every real one.
	ts := int64(0)
	if !updatedAt.IsZero() {
		ts = updatedAt.UnixMilli()
	}
	return realtime.Record{Status: status, Data: data, TS: ts}, nil
}

type entityFetch func(ctx context.Context, id, token string) (realtime.Record, error)

func (s *Server) serveEntity(w http.ResponseWriter, r *http.Request, kind string, pollInterval time.Duration, fetch entityFetch) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	sessionID := middleware.SessionID(r)
	tokens := sessionTokens{store: s.Sessions, sessionID: sessionID}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &wsClient{conn: conn}

	dial := s.Dial
	if dial == nil {
		dial = realtime.GorillaDialer
	}

	bridge := realtime.NewBridge(realtime.Options{
		Kind:         kind,
		ID:           id,
		GatewayURL:   strings.TrimSuffix(s.Config.RealtimeURL, "/") + s.Config.RealtimePath,
		Dial:         dial,
		Tokens:       tokens,
		PollInterval: pollInterval,
		Logger:       s.Logger,
		Fetch: func(ctx context.Context) (realtime.Record, error) {
			return fetch(ctx, id, tokens.Token())
		},
		OnUpdate: func(rec realtime.Record) {
			if err := client.writeJSON(map[string]any{
				"type":   kind + ".state",
				"status": rec.Status,
				"data":   rec.Data,
				"ts":     rec.TS,
			}); err != nil {
				_ = conn.Close()
			}
		},
		OnState: func(state realtime.ConnState) {
			_ = client.writeJSON(map[string]any{
				"type":  "connection",
				"state": state,
			})
		},
	})

	// The initial snapshot reaches the browser through OnUpdate.
	bridge.Start(r.Context())

	// Hold the connection until the browser goes away, then tear down.
	go func() {
		defer func() {
			bridge.Stop()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

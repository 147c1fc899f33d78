package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Record is the bridge's view of the watched entity: its status plus the
// last full record payload seen, stamped with the update's unix-milli time.
type Record struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	TS     int64           `json:"ts"`
}

// FetchFunc re-reads the entity over REST, for the polling fallback and the
// initial snapshot.
type FetchFunc func(ctx context.Context) (Record, error)

// TokenSource supplies the auth token and signals a later login, so a bridge
// opened before sign-in can connect once a token exists.
type TokenSource interface {
	Token() string
	OnLogin(func(token string)) (cancel func())
}

// StaticToken is a TokenSource for a token known up front (possibly empty,
// which keeps the connection idle).
type StaticToken string

func (t StaticToken) Token() string                        { return string(t) }
func (t StaticToken) OnLogin(func(string)) (cancel func()) { return func() {} }

type Options struct {
	Kind         string // "order" or "reservation"
	ID           string
	GatewayURL   string
	Dial         Dialer
	Tokens       TokenSource
	Fetch        FetchFunc
	PollInterval time.Duration
	Logger       *zap.Logger

	// OnUpdate receives every applied record change; OnState every
	// connection state change. Both may be nil.
	OnUpdate func(Record)
	OnState  func(ConnState)
}

// Bridge keeps one entity's status current: realtime pushes are the primary
// source, interval REST re-fetches cover the gaps while the connection is
// not established. Every update is fenced by its timestamp so an in-flight
// poll result can never overwrite a newer push, or the reverse.
type Bridge struct {
	opts Options

	mu      sync.Mutex
	seq     int64
	current Record
	state   ConnState
	conn    *Conn
	stopped bool

	stop        chan struct{}
	stopOnce    sync.Once
	cancelLogin func()
}

func NewBridge(opts Options) *Bridge {
	if opts.Dial == nil {
		opts.Dial = GorillaDialer
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 8 * time.Second
	}
	return &Bridge{
		opts:  opts,
		state: StateIdle,
		stop:  make(chan struct{}),
	}
}

// Start seeds the view with a REST snapshot, opens the realtime connection
// when a token is available (or defers until login), and launches the
// polling fallback. It returns after the snapshot; pushes arrive async.
func (b *Bridge) Start(ctx context.Context) {
	if rec, err := b.opts.Fetch(ctx); err == nil {
		b.apply(rec, true)
	} else if b.opts.Logger != nil {
		b.opts.Logger.Warn("initial fetch failed",
			zap.String("kind", b.opts.Kind), zap.String("id", b.opts.ID), zap.Error(err))
	}

	token := b.opts.Tokens.Token()
	if token == "" {
		// No credentials yet: stay idle and connect on the login signal.
		b.cancelLogin = b.opts.Tokens.OnLogin(func(token string) {
			b.connect(context.Background(), token)
		})
	} else {
		b.connect(ctx, token)
	}

	go b.pollLoop()
}

func (b *Bridge) connect(ctx context.Context, token string) {
	b.mu.Lock()
	if b.stopped || b.conn != nil {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	conn, err := Connect(ctx, b.opts.Dial, b.opts.GatewayURL, b.opts.Kind, token, b.opts.Logger, b.handleFrame, b.setState)
	if err != nil {
		if b.opts.Logger != nil {
			b.opts.Logger.Warn("realtime connect failed",
				zap.String("kind", b.opts.Kind), zap.String("id", b.opts.ID), zap.Error(err))
		}
		return
	}

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		conn.Close()
		return
	}
	b.conn = conn
	b.mu.Unlock()

	if err := conn.Subscribe(b.opts.ID); err != nil && b.opts.Logger != nil {
		b.opts.Logger.Warn("realtime subscribe failed",
			zap.String("kind", b.opts.Kind), zap.String("id", b.opts.ID), zap.Error(err))
	}
}

func (b *Bridge) setState(state ConnState) {
	b.mu.Lock()
	b.state = state
	handler := b.opts.OnState
	b.mu.Unlock()
	if handler != nil {
		handler(state)
	}
}

func (b *Bridge) handleFrame(frame Frame) {
	if frame.ID != "" && frame.ID != b.opts.ID {
		return
	}

	switch frame.Event {
	case b.opts.Kind + ":status":
		// Narrow event: patch only the status field.
		b.mu.Lock()
		data := b.current.Data
		b.mu.Unlock()
		b.apply(Record{Status: frame.Status, Data: data, TS: frame.TS}, false)
	case b.opts.Kind + ":updated":
		status := frame.Status
		if status == "" {
			var body struct {
				Status string `json:"status"`
			}
			_ = json.Unmarshal(frame.Data, &body)
			status = body.Status
		}
		b.apply(Record{Status: status, Data: frame.Data, TS: frame.TS}, true)
	}
}

// apply fences by timestamp: status patches must be strictly newer, full
// records may also replace an equal-time view (they carry more data). A zero
// ts means the source carries no clock at all, so it applies unfenced and
// leaves the fence where it was.
func (b *Bridge) apply(rec Record, full bool) {
	b.mu.Lock()
	if rec.TS != 0 {
		if rec.TS < b.seq || (!full && rec.TS == b.seq) {
			b.mu.Unlock()
			return
		}
		b.seq = rec.TS
	}
	b.current = rec
	handler := b.opts.OnUpdate
	b.mu.Unlock()

	if handler != nil {
		handler(rec)
	}
}

func (b *Bridge) pollLoop() {
	ticker := time.NewTicker(b.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			// Polling is a fallback, not a supplement: skip while the
			// realtime connection is live.
			if b.State() == StateConnected {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), b.opts.PollInterval)
			rec, err := b.opts.Fetch(ctx)
			cancel()
			if err != nil {
				if b.opts.Logger != nil {
					b.opts.Logger.Debug("fallback fetch failed",
						zap.String("kind", b.opts.Kind), zap.String("id", b.opts.ID), zap.Error(err))
				}
				continue
			}
			b.apply(rec, true)
		}
	}
}

func (b *Bridge) State() ConnState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Bridge) Snapshot() Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Stop unsubscribes best-effort, closes the connection and halts polling.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		b.mu.Lock()
		b.stopped = true
		conn := b.conn
		b.conn = nil
		b.mu.Unlock()

		if b.cancelLogin != nil {
			b.cancelLogin()
		}
		if conn != nil {
			conn.Unsubscribe(b.opts.ID)
			conn.Close()
		}
		close(b.stop)
	})
}

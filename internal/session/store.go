// Package session holds per-browser-session state: the backend auth token
// and an event bus other components subscribe to, so a login in one place
// (say the auth handlers) can flip behavior elsewhere (cart checkout, the
// realtime bridge) without ambient globals.
package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventLogin  EventKind = "login"
	EventLogout EventKind = "logout"
)

type Event struct {
	Kind      EventKind
	SessionID string
	Token     string
}

type Listener func(Event)

// Store maps session ids to auth tokens and fans events out to listeners.
// All access is synchronous and safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	tokens    map[string]string
	listeners map[uint64]Listener
	nextSub   uint64
}

func NewStore() *Store {
	return &Store{
		tokens:    make(map[string]string),
		listeners: make(map[uint64]Listener),
	}
}

// NewSession mints a fresh session id with no token attached.
func (s *Store) NewSession() string {
	return uuid.NewString()
}

func (s *Store) Token(sessionID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[sessionID]
}

// SetToken stores the token and emits a login event. An empty token is a
// logout (see Clear).
func (s *Store) SetToken(sessionID, token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		s.Clear(sessionID)
		return
	}

	s.mu.Lock()
	s.tokens[sessionID] = token
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	event := Event{Kind: EventLogin, SessionID: sessionID, Token: token}
	for _, l := range listeners {
		l(event)
	}
}

// Clear drops the session's token and emits a logout event if one was set.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	_, had := s.tokens[sessionID]
	delete(s.tokens, sessionID)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if !had {
		return
	}
	event := Event{Kind: EventLogout, SessionID: sessionID}
	for _, l := range listeners {
		l(event)
	}
}

// Subscribe registers a listener and returns its unsubscribe func.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// snapshotListeners must be called with s.mu held.
func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}

package handlers

import (
	"sync"
	"time"

	"tamu-web/internal/payment"

	"github.com/google/uuid"
)

// Outcome is what a finished flow reported through its callbacks.
type Outcome string

const (
	OutcomeNone            Outcome = ""
	OutcomePaid            Outcome = "paid"
	OutcomeDeferredCash    Outcome = "deferred_cash"
	OutcomeManualSubmitted Outcome = "manual_submitted"
)

type flowEntry struct {
	flow      *payment.Flow
	createdAt time.Time

	mu      sync.Mutex
	outcome Outcome
	closed  bool
}

func (e *flowEntry) record(outcome Outcome) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.outcome == OutcomeNone {
		e.outcome = outcome
	}
}

func (e *flowEntry) close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

func (e *flowEntry) view() (Outcome, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outcome, e.closed
}

// FlowRegistry holds live checkout flows keyed by id. Flows are single-use
// and short-lived; anything older than the TTL is pruned on the next insert.
type FlowRegistry struct {
	mu      sync.Mutex
	entries map[string]*flowEntry
	ttl     time.Duration
}

func NewFlowRegistry() *FlowRegistry {
	return &FlowRegistry{
		entries: make(map[string]*flowEntry),
		ttl:     30 * time.Minute,
	}
}

func (r *FlowRegistry) Add(entry *flowEntry) string {
	id := uuid.NewString()
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, existing := range r.entries {
		if now.Sub(existing.createdAt) > r.ttl {
			delete(r.entries, key)
		}
	}
	entry.createdAt = now
	r.entries[id] = entry
	return id
}

func (r *FlowRegistry) Get(id string) (*flowEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	return entry, ok
}

func (r *FlowRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

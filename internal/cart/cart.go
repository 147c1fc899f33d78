// Package cart keeps the ephemeral per-session cart. Nothing is persisted;
// a cart lives only as long as the process, matching the source app's
// reload-loses-cart behavior.
package cart

import (
	"sync"
)

// Item is one cart line. Lines are keyed by ID when present, else by Name.
type Item struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (i Item) key() string {
	if i.ID != "" {
		return "id:" + i.ID
	}
	return "name:" + i.Name
}

// Cart is a single session's cart. Safe for concurrent use.
type Cart struct {
	mu    sync.Mutex
	items []Item
}

// Add merges the item into the cart: an existing line with the same key has
// its quantity incremented, otherwise a new line is appended.
func (c *Cart) Add(item Item) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := item.key()
	for i := range c.items {
		if c.items[i].key() == key {
			c.items[i].Quantity += item.Quantity
			return
		}
	}
	c.items = append(c.items, item)
}

// SetQuantity pins a line's quantity; zero or less removes the line.
func (c *Cart) SetQuantity(key string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].key() == key || c.items[i].ID == key || (c.items[i].ID == "" && c.items[i].Name == key) {
			if quantity <= 0 {
				c.items = append(c.items[:i], c.items[i+1:]...)
			} else {
				c.items[i].Quantity = quantity
			}
			return
		}
	}
}

func (c *Cart) Remove(key string) {
	c.SetQuantity(key, 0)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Items returns a copy of the current lines.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0.0
	for _, item := range c.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Store hands out carts by session id.
type Store struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewStore() *Store {
	return &Store{carts: make(map[string]*Cart)}
}

func (s *Store) Cart(sessionID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[sessionID]
	if !ok {
		c = &Cart{}
		s.carts[sessionID] = c
	}
	return c
}

func (s *Store) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}

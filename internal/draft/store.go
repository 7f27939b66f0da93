// Package draft tracks in-progress orders. A draft is the product list a
// user assembles across several independent requests before committing it as
// an order. Drafts are scoped to a browser session id, never shared across
// sessions, and expire when abandoned.
package draft

import (
	"sync"
	"time"

	"snackbar-web/internal/models"
)

// Draft is one session's in-progress order. Products carries quantity by
// repetition. OrderID is zero for a new order and set to the target order's
// id during an edit session.
type Draft struct {
	Products []models.Product
	OrderID  int
}

type entry struct {
	draft     Draft
	expiresAt time.Time
}

// Store holds the per-session drafts behind a mutex. Every mutation refreshes
// the entry's expiry; a background sweeper drops abandoned drafts.
type Store struct {
	mu    sync.Mutex
	items map[string]entry
	ttl   time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		items: make(map[string]entry),
		ttl:   ttl,
	}
}

// Get returns a copy of the session's draft. A session without a draft gets
// an empty one.
func (s *Store) Get(sessionID string) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[sessionID]
	if !ok || time.Now().After(e.expiresAt) {
		return Draft{}
	}
	return copyDraft(e.draft)
}

// Append adds a product to the session's draft. Duplicates are allowed; a
// repeated product means a higher quantity.
func (s *Store) Append(sessionID string, product models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.current(sessionID)
	d.Products = append(d.Products, product)
	s.put(sessionID, d)
}

// RemoveFirst removes the first entry matching the product id, and reports
// whether anything was removed. Removing an absent product is a no-op, not
// an error.
func (s *Store) RemoveFirst(sessionID string, productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.current(sessionID)
	for i, p := range d.Products {
		if p.ID == productID {
			d.Products = append(d.Products[:i], d.Products[i+1:]...)
			s.put(sessionID, d)
			return true
		}
	}
	s.put(sessionID, d)
	return false
}

// Replace swaps the session's draft wholesale, recording the order an edit
// session targets. orderID zero marks a draft for a new order.
func (s *Store) Replace(sessionID string, products []models.Product, orderID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(sessionID, Draft{
		Products: append([]models.Product(nil), products...),
		OrderID:  orderID,
	})
}

// Clear discards the session's draft unconditionally.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, sessionID)
}

// Sweep drops every expired draft and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, e := range s.items {
		if now.After(e.expiresAt) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// current returns the live draft for mutation under s.mu.
func (s *Store) current(sessionID string) Draft {
	e, ok := s.items[sessionID]
	if !ok || time.Now().After(e.expiresAt) {
		return Draft{}
	}
	return e.draft
}

// put stores the draft and refreshes its expiry under s.mu.
func (s *Store) put(sessionID string, d Draft) {
	s.items[sessionID] = entry{
		draft:     d,
		expiresAt: time.Now().Add(s.ttl),
	}
}

func copyDraft(d Draft) Draft {
	return Draft{
		Products: append([]models.Product(nil), d.Products...),
		OrderID:  d.OrderID,
	}
}

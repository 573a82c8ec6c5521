package cart

import "sync"

// Registry hands out one cart per buyer. Carts themselves are single-actor;
// the lock only guards the map.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*Cart)}
}

// Cart returns the buyer's cart, creating an empty one on first use.
func (r *Registry) Cart(buyerID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[buyerID]
	if !ok {
		c = New()
		r.carts[buyerID] = c
	}
	return c
}

// Drop forgets the buyer's cart; the next Cart call starts fresh.
func (r *Registry) Drop(buyerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, buyerID)
}

package cart

import "sync"

// Registry keeps one cart per checkout session.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*Cart)}
}

// GetOrCreate returns the session's cart, creating an empty one on
// first use.
func (r *Registry) GetOrCreate(sessionID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.carts[sessionID]; ok {
		return c
	}
	c := New()
	r.carts[sessionID] = c
	return c
}

// Get returns the session's cart, or nil when none exists.
func (r *Registry) Get(sessionID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.carts[sessionID]
}

// Delete discards the session's cart.
func (r *Registry) Delete(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
}

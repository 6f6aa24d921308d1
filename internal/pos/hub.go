package pos

import (
	"sync"

	"github.com/google/uuid"
)

// Hub tracks the open register carts, one per client session. Sessions
// have no cross-session coordination: each cart works against the shared
// catalog snapshot and the backend resolves stock races at sale time.
type Hub struct {
	catalog *Catalog

	mu    sync.Mutex
	carts map[string]*Cart
}

// NewHub builds an empty hub over the given catalog.
func NewHub(catalog *Catalog) *Hub {
	return &Hub{catalog: catalog, carts: map[string]*Cart{}}
}

// Create opens a new cart session and returns its id.
func (h *Hub) Create() (string, *Cart) {
	id := uuid.NewString()
	cart := NewCart(h.catalog)
	h.mu.Lock()
	h.carts[id] = cart
	h.mu.Unlock()
	return id, cart
}

// Get returns the cart for a session id.
func (h *Hub) Get(id string) (*Cart, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cart, ok := h.carts[id]
	return cart, ok
}

// Delete closes a cart session.
func (h *Hub) Delete(id string) {
	h.mu.Lock()
	delete(h.carts, id)
	h.mu.Unlock()
}

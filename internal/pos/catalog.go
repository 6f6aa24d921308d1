// Package pos holds the point-of-sale state containers: a catalog
// snapshot, per-session carts, and the sale completion workflow.
package pos

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/arelyshop/tiendatemp/domain"
)

// ProductSource supplies the latest product records.
type ProductSource interface {
	ListProducts(ctx context.Context, search string) ([]domain.Product, error)
}

// Catalog is a mutex-guarded snapshot of the product list. Stock checks
// in carts run against the most recently refreshed snapshot; the backend
// remains the source of truth at sale time.
type Catalog struct {
	source ProductSource

	mu       sync.RWMutex
	ordered  []int64
	products map[int64]domain.Product
}

// NewCatalog builds an empty catalog over the given source.
func NewCatalog(source ProductSource) *Catalog {
	return &Catalog{
		source:   source,
		products: map[int64]domain.Product{},
	}
}

// Refresh replaces the snapshot with the backend's current product list.
func (c *Catalog) Refresh(ctx context.Context) error {
	list, err := c.source.ListProducts(ctx, "")
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}
	products := make(map[int64]domain.Product, len(list))
	ordered := make([]int64, 0, len(list))
	for _, p := range list {
		products[p.ID] = p
		ordered = append(ordered, p.ID)
	}
	c.mu.Lock()
	c.products = products
	c.ordered = ordered
	c.mu.Unlock()
	return nil
}

// Get returns the snapshot's record for a product id.
func (c *Catalog) Get(id int64) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	return p, ok
}

// Stock returns the known stock for a product, 0 when unknown.
func (c *Catalog) Stock(id int64) int {
	p, ok := c.Get(id)
	if !ok {
		return 0
	}
	return p.Stock
}

// Products returns the snapshot in backend order.
func (c *Catalog) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, 0, len(c.ordered))
	for _, id := range c.ordered {
		out = append(out, c.products[id])
	}
	return out
}

// Search filters the snapshot by case-insensitive substring over name,
// SKU and barcode.
func (c *Catalog) Search(term string) []domain.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return c.Products()
	}
	var out []domain.Product
	for _, p := range c.Products() {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.SKU), term) ||
			strings.Contains(strings.ToLower(p.Barcode), term) {
			out = append(out, p)
		}
	}
	return out
}

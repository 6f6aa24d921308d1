package pos

import (
	"errors"
	"math"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/arelyshop/tiendatemp/domain"
)

var (
	// ErrOutOfStock is returned when adding a product whose known stock
	// is zero or negative.
	ErrOutOfStock = errors.New("product out of stock")
	// ErrStockExceeded is returned when incrementing a line past the
	// known stock; the cart is left unchanged.
	ErrStockExceeded = errors.New("stock exceeded")
	// ErrEmptyCart is returned when completing a cart with no valid lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrLineNotFound is returned when mutating a line that is not in
	// the cart.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrUnknownProduct is returned when the product is missing from the
	// catalog snapshot.
	ErrUnknownProduct = errors.New("product not in catalog")
)

// Line is one pending-sale item: a product reference with a captured
// display name/SKU, a quantity bounded by known stock, and an editable
// unit price.
type Line struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal is quantity times unit price.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered sequence of lines validated against a catalog
// snapshot. Safe for concurrent use.
type Cart struct {
	catalog *Catalog

	mu    sync.Mutex
	lines []Line
}

// NewCart builds an empty cart over the given catalog.
func NewCart(catalog *Catalog) *Cart {
	return &Cart{catalog: catalog}
}

// Add puts one unit of the product into the cart. A product with no
// known stock is rejected; an existing line increments unless that would
// exceed known stock, in which case nothing is mutated.
func (c *Cart) Add(productID int64) error {
	product, ok := c.catalog.Get(productID)
	if !ok {
		return ErrUnknownProduct
	}
	if product.Stock <= 0 {
		return ErrOutOfStock
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			if c.lines[i].Quantity >= product.Stock {
				return ErrStockExceeded
			}
			c.lines[i].Quantity++
			return nil
		}
	}
	c.lines = append(c.lines, Line{
		ProductID: product.ID,
		Name:      product.Name,
		SKU:       product.SKU,
		Quantity:  1,
		UnitPrice: decimal.NewFromFloat(product.DefaultUnitPrice()),
	})
	return nil
}

// SetQuantity sets a line's quantity, clamped to [0, known stock].
// Quantity zero removes the line. It reports whether clamping occurred
// so callers can surface a warning.
func (c *Cart) SetQuantity(productID int64, quantity int) (clamped bool, err error) {
	stock := c.catalog.Stock(productID)
	if quantity < 0 {
		quantity = 0
		clamped = true
	}
	if quantity > stock {
		quantity = stock
		clamped = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID != productID {
			continue
		}
		if quantity == 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity = quantity
		}
		return clamped, nil
	}
	return false, ErrLineNotFound
}

// SetPrice overrides a line's unit price. Negative or non-finite input
// reverts the line to the default price computation.
func (c *Cart) SetPrice(productID int64, price float64) error {
	unit := decimal.NewFromFloat(0)
	if price >= 0 && !math.IsNaN(price) && !math.IsInf(price, 0) {
		unit = decimal.NewFromFloat(price)
	} else if product, ok := c.catalog.Get(productID); ok {
		unit = decimal.NewFromFloat(product.DefaultUnitPrice())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].UnitPrice = unit
			return nil
		}
	}
	return ErrLineNotFound
}

// Remove deletes a line unconditionally.
func (c *Cart) Remove(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Lines returns a copy of the cart's lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total is the exact sum of quantity times price over all lines. Pure,
// no side effects; rounding happens only at display time.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines() {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Items converts the lines with positive quantity into sale items.
func (c *Cart) Items() []domain.SaleItem {
	var items []domain.SaleItem
	for _, line := range c.Lines() {
		if line.ProductID == 0 || line.Quantity <= 0 {
			continue
		}
		items = append(items, domain.SaleItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			SKU:       line.SKU,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.InexactFloat64(),
		})
	}
	return items
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

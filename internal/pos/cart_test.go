package pos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arelyshop/tiendatemp/domain"
)

type fakeSource struct {
	products []domain.Product
	err      error
	calls    int
}

func (f *fakeSource) ListProducts(ctx context.Context, search string) ([]domain.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func fptr(v float64) *float64 { return &v }

func testCatalog(t *testing.T, products ...domain.Product) *Catalog {
	t.Helper()
	catalog := NewCatalog(&fakeSource{products: products})
	require.NoError(t, catalog.Refresh(context.Background()))
	return catalog
}

func TestCartAdd(t *testing.T) {
	catalog := testCatalog(t,
		domain.Product{ID: 1, Name: "Keyboard", SKU: "KB-1", SalePrice: fptr(50), Stock: 2},
		domain.Product{ID: 2, Name: "Sold Out", SalePrice: fptr(10), Stock: 0},
	)
	cart := NewCart(catalog)

	require.NoError(t, cart.Add(1))
	require.NoError(t, cart.Add(1))
	assert.ErrorIs(t, cart.Add(1), ErrStockExceeded)

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)

	assert.ErrorIs(t, cart.Add(2), ErrOutOfStock)
	assert.ErrorIs(t, cart.Add(99), ErrUnknownProduct)
}

func TestCartDefaultPriceUsesDiscount(t *testing.T) {
	catalog := testCatalog(t,
		domain.Product{ID: 1, Name: "Discounted", SalePrice: fptr(100), DiscountPrice: fptr(80), Stock: 5},
		domain.Product{ID: 2, Name: "Bad Discount", SalePrice: fptr(100), DiscountPrice: fptr(120), Stock: 5},
	)
	cart := NewCart(catalog)

	require.NoError(t, cart.Add(1))
	require.NoError(t, cart.Add(2))

	lines := cart.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "80", lines[0].UnitPrice.String())
	assert.Equal(t, "100", lines[1].UnitPrice.String())
}

func TestCartSetQuantityClampsToStock(t *testing.T) {
	catalog := testCatalog(t, domain.Product{ID: 1, Name: "Lamp", SalePrice: fptr(30), Stock: 3})
	cart := NewCart(catalog)
	require.NoError(t, cart.Add(1))

	clamped, err := cart.SetQuantity(1, 10)
	require.NoError(t, err)
	assert.True(t, clamped)
	assert.Equal(t, 3, cart.Lines()[0].Quantity)

	clamped, err = cart.SetQuantity(1, 2)
	require.NoError(t, err)
	assert.False(t, clamped)
	assert.Equal(t, 2, cart.Lines()[0].Quantity)
}

func TestCartSetQuantityZeroRemovesLine(t *testing.T) {
	catalog := testCatalog(t, domain.Product{ID: 1, Name: "Lamp", SalePrice: fptr(30), Stock: 3})
	cart := NewCart(catalog)
	require.NoError(t, cart.Add(1))

	_, err := cart.SetQuantity(1, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines())

	_, err = cart.SetQuantity(1, 1)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestCartSetPrice(t *testing.T) {
	catalog := testCatalog(t, domain.Product{ID: 1, Name: "Lamp", SalePrice: fptr(30), Stock: 3})
	cart := NewCart(catalog)
	require.NoError(t, cart.Add(1))

	require.NoError(t, cart.SetPrice(1, 25.5))
	assert.Equal(t, "25.5", cart.Lines()[0].UnitPrice.String())

	// Negative input reverts to the default price.
	require.NoError(t, cart.SetPrice(1, -4))
	assert.Equal(t, "30", cart.Lines()[0].UnitPrice.String())

	assert.ErrorIs(t, cart.SetPrice(2, 10), ErrLineNotFound)
}

func TestCartTotal(t *testing.T) {
	catalog := testCatalog(t,
		domain.Product{ID: 1, Name: "A", SalePrice: fptr(50), Stock: 10},
		domain.Product{ID: 2, Name: "B", SalePrice: fptr(30), Stock: 10},
	)
	cart := NewCart(catalog)
	require.NoError(t, cart.Add(1))
	require.NoError(t, cart.Add(1))
	require.NoError(t, cart.Add(2))

	assert.Equal(t, "130", cart.Total().String())

	items := cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 50.0, items[0].UnitPrice)
}

func TestCatalogSearch(t *testing.T) {
	catalog := testCatalog(t,
		domain.Product{ID: 1, Name: "Blue Lamp", SKU: "BL-1", Barcode: "111"},
		domain.Product{ID: 2, Name: "Red Chair", SKU: "RC-2", Barcode: "222"},
	)

	assert.Len(t, catalog.Search(""), 2)
	assert.Len(t, catalog.Search("lamp"), 1)
	assert.Len(t, catalog.Search("RC-"), 1)
	assert.Len(t, catalog.Search("222"), 1)
	assert.Empty(t, catalog.Search("missing"))
}

func TestHubSessions(t *testing.T) {
	catalog := testCatalog(t)
	hub := NewHub(catalog)

	id, cart := hub.Create()
	require.NotEmpty(t, id)
	require.NotNil(t, cart)

	got, ok := hub.Get(id)
	require.True(t, ok)
	assert.Same(t, cart, got)

	hub.Delete(id)
	_, ok = hub.Get(id)
	assert.False(t, ok)
}

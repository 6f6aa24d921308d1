package pos

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arelyshop/tiendatemp/domain"
	"github.com/arelyshop/tiendatemp/internal/pdf"
	"github.com/arelyshop/tiendatemp/internal/store"
)

// Backend is the slice of the persistence layer the checkout workflow
// needs.
type Backend interface {
	ProductSource
	CreateSale(ctx context.Context, sub domain.SaleSubmission) (domain.Sale, error)
	LatestSaleID(ctx context.Context) (string, error)
}

// Receipt is the outcome of a completed sale: the persisted record plus
// its rendered document. PDF may be nil if rendering failed after the
// sale was committed.
type Receipt struct {
	Sale     domain.Sale
	PDF      []byte
	Filename string
}

// Checkout drives the sale completion workflow over a cart.
type Checkout struct {
	backend Backend
	catalog *Catalog
	docs    *pdf.Generator
	logger  *zap.Logger
}

// NewCheckout constructs the workflow.
func NewCheckout(backend Backend, catalog *Catalog, docs *pdf.Generator, logger *zap.Logger) *Checkout {
	return &Checkout{backend: backend, catalog: catalog, docs: docs, logger: logger}
}

// Complete validates the cart, persists the sale and renders its
// receipt. On success the catalog is refreshed and the cart cleared. On
// failure the cart is preserved; an insufficient-stock failure refreshes
// the catalog so displayed stock reflects reality.
func (co *Checkout) Complete(ctx context.Context, cart *Cart, customer domain.Customer, operator domain.Operator) (*Receipt, error) {
	items := cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	latest, err := co.backend.LatestSaleID(ctx)
	if err != nil {
		return nil, fmt.Errorf("complete sale: %w", err)
	}
	sub := domain.SaleSubmission{
		SaleID:   domain.NextSaleID(latest),
		Customer: customer,
		Items:    items,
		Total:    cart.Total().InexactFloat64(),
		User:     operator,
	}

	sale, err := co.backend.CreateSale(ctx, sub)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientStock) {
			if refreshErr := co.catalog.Refresh(ctx); refreshErr != nil {
				co.logger.Warn("catalog refresh after stock failure", zap.Error(refreshErr))
			}
		}
		return nil, err
	}

	receipt := &Receipt{Sale: sale}
	blob, filename, renderErr := co.docs.Render(pdf.ReceiptDocument(sale))
	if renderErr != nil {
		// The sale is committed; a document failure must not undo it.
		co.logger.Warn("receipt render failed", zap.String("sale_id", sale.SaleID), zap.Error(renderErr))
	} else {
		receipt.PDF = blob
		receipt.Filename = filename
	}

	if err := co.catalog.Refresh(ctx); err != nil {
		co.logger.Warn("catalog refresh after sale", zap.Error(err))
	}
	cart.Clear()

	co.logger.Info("sale completed",
		zap.String("sale_id", sale.SaleID),
		zap.Float64("total", sale.Total),
		zap.Int("items", len(sale.Items)))
	return receipt, nil
}

// Quote renders a quotation document from the live cart without
// persisting anything or touching stock.
func (co *Checkout) Quote(cart *Cart, customer domain.Customer) ([]byte, string, error) {
	items := cart.Items()
	if len(items) == 0 {
		return nil, "", ErrEmptyCart
	}
	lines := make([]pdf.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, pdf.Line{
			Quantity:  item.Quantity,
			Name:      item.Name,
			SKU:       item.SKU,
			UnitPrice: item.UnitPrice,
		})
	}
	doc := pdf.Document{
		Type:       "Quotation",
		Identifier: "Valid for 24 hours",
		FilePrefix: "Quotation",
		Customer:   customer,
		Lines:      lines,
		Total:      cart.Total().InexactFloat64(),
	}
	return co.docs.Render(doc)
}

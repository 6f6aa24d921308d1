package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arelyshop/tiendatemp/domain"
	"github.com/arelyshop/tiendatemp/internal/pos"
)

type cartLineResponse struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

type cartResponse struct {
	CartID       string             `json:"cart_id"`
	Lines        []cartLineResponse `json:"lines"`
	Total        float64            `json:"total"`
	DisplayTotal string             `json:"display_total"`
}

func cartView(id string, cart *pos.Cart) cartResponse {
	lines := cart.Lines()
	resp := cartResponse{
		CartID:       id,
		Lines:        make([]cartLineResponse, 0, len(lines)),
		Total:        cart.Total().InexactFloat64(),
		DisplayTotal: cart.Total().StringFixed(2),
	}
	for _, line := range lines {
		resp.Lines = append(resp.Lines, cartLineResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			SKU:       line.SKU,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.InexactFloat64(),
			Subtotal:  line.Subtotal().InexactFloat64(),
		})
	}
	return resp
}

// createCart opens a register session. The catalog snapshot refreshes so
// stock checks run against current data, and the next sale id is
// reported for display.
func (h *Handler) createCart(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Refresh(r.Context()); err != nil {
		h.logger.Error("catalog refresh", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to load catalog")
		return
	}
	latest, err := h.store.LatestSaleID(r.Context())
	if err != nil {
		h.logger.Error("latest sale id", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to determine next sale id")
		return
	}
	id, cart := h.hub.Create()
	resp := map[string]any{
		"cart":         cartView(id, cart),
		"next_sale_id": domain.NextSaleID(latest),
	}
	respondData(w, http.StatusCreated, resp)
}

func (h *Handler) cartFromRequest(w http.ResponseWriter, r *http.Request) (string, *pos.Cart, bool) {
	id := chi.URLParam(r, "cartID")
	cart, ok := h.hub.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "cart session not found")
		return "", nil, false
	}
	return id, cart, true
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.cartFromRequest(w, r)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, cartView(id, cart))
}

func (h *Handler) deleteCart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cartID")
	h.hub.Delete(id)
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.cartFromRequest(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch err := cart.Add(req.ProductID); {
	case errors.Is(err, pos.ErrUnknownProduct):
		respondError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, pos.ErrOutOfStock):
		respondError(w, http.StatusConflict, "this product has no stock available")
	case errors.Is(err, pos.ErrStockExceeded):
		respondError(w, http.StatusConflict, "cannot add more, maximum stock reached")
	case err != nil:
		respondError(w, http.StatusInternalServerError, "unable to add item")
	default:
		respondData(w, http.StatusOK, cartView(id, cart))
	}
}

type updateItemRequest struct {
	Quantity *int     `json:"quantity"`
	Price    *float64 `json:"price"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.cartFromRequest(w, r)
	if !ok {
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	clamped := false
	if req.Quantity != nil {
		var qErr error
		clamped, qErr = cart.SetQuantity(productID, *req.Quantity)
		if errors.Is(qErr, pos.ErrLineNotFound) {
			respondError(w, http.StatusNotFound, "cart line not found")
			return
		}
		if clamped {
			h.logger.Warn("cart quantity clamped to stock",
				zap.String("cart_id", id),
				zap.Int64("product_id", productID),
				zap.Int("requested", *req.Quantity))
		}
	}
	if req.Price != nil {
		if err := cart.SetPrice(productID, *req.Price); errors.Is(err, pos.ErrLineNotFound) {
			// Quantity zero above may have removed the line; that is
			// still a successful update.
			if req.Quantity == nil {
				respondError(w, http.StatusNotFound, "cart line not found")
				return
			}
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"clamped": clamped,
		"data":    cartView(id, cart),
	})
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.cartFromRequest(w, r)
	if !ok {
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	cart.Remove(productID)
	respondData(w, http.StatusOK, cartView(id, cart))
}

type checkoutRequest struct {
	Customer domain.Customer `json:"customer"`
}

// checkoutCart completes the sale for a register session. The cart is
// preserved on failure so the operator can retry.
func (h *Handler) checkoutCart(w http.ResponseWriter, r *http.Request) {
	_, cart, ok := h.cartFromRequest(w, r)
	if !ok {
		return
	}
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	claims := claimsFromContext(r)
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	operator := domain.Operator{ID: claims.UserID, FullName: claims.FullName}

	receipt, err := h.checkout.Complete(r.Context(), cart, req.Customer, operator)
	if errors.Is(err, pos.ErrEmptyCart) {
		respondError(w, http.StatusBadRequest, "no valid items in cart")
		return
	}
	if err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("checkout", zap.Error(err))
			respondError(w, status, "unable to save sale")
			return
		}
		respondError(w, status, err.Error())
		return
	}
	respondData(w, http.StatusCreated, map[string]any{
		"saleId":           receipt.Sale.SaleID,
		"total":            receipt.Sale.Total,
		"receipt_filename": receipt.Filename,
	})
}

// quoteCart renders a quotation PDF from the live cart without
// persisting a sale.
func (h *Handler) quoteCart(w http.ResponseWriter, r *http.Request) {
	_, cart, ok := h.cartFromRequest(w, r)
	if !ok {
		return
	}
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	blob, filename, err := h.checkout.Quote(cart, req.Customer)
	if errors.Is(err, pos.ErrEmptyCart) {
		respondError(w, http.StatusBadRequest, "no valid items in cart")
		return
	}
	if err != nil {
		h.logger.Error("render quotation", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to generate quotation")
		return
	}
	servePDF(w, blob, filename)
}

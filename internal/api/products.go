package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arelyshop/tiendatemp/domain"
	"github.com/arelyshop/tiendatemp/internal/images"
)

// productRequest is the admin editor payload. Numeric fields are
// pointers so an absent value becomes NULL; photo URLs arrive as an
// ordered list that maps onto photo_url_1..8 at submit time.
type productRequest struct {
	Name           string   `json:"name"`
	SKU            string   `json:"sku"`
	Description    string   `json:"description"`
	SalePrice      *float64 `json:"sale_price"`
	DiscountPrice  *float64 `json:"discount_price"`
	PurchasePrice  *float64 `json:"purchase_price"`
	WholesalePrice *float64 `json:"wholesale_price"`
	Stock          *int     `json:"stock"`
	Category       string   `json:"category"`
	Brand          string   `json:"brand"`
	Barcode        string   `json:"barcode"`
	PhotoURLs      []string `json:"photo_urls"`
}

func (req productRequest) toProduct() (domain.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return domain.Product{}, fmt.Errorf("name is required")
	}
	if len(req.PhotoURLs) > domain.MaxPhotoURLs {
		return domain.Product{}, fmt.Errorf("at most %d photo URLs are allowed", domain.MaxPhotoURLs)
	}
	stock := 0
	if req.Stock != nil {
		if *req.Stock < 0 {
			return domain.Product{}, fmt.Errorf("stock must be non-negative")
		}
		stock = *req.Stock
	}
	p := domain.Product{
		Name:           strings.TrimSpace(req.Name),
		SKU:            strings.TrimSpace(req.SKU),
		Description:    req.Description,
		SalePrice:      req.SalePrice,
		DiscountPrice:  req.DiscountPrice,
		PurchasePrice:  req.PurchasePrice,
		WholesalePrice: req.WholesalePrice,
		Stock:          stock,
		Category:       req.Category,
		Brand:          req.Brand,
		Barcode:        strings.TrimSpace(req.Barcode),
	}
	p.SetPhotoURLs(images.NormalizeAll(req.PhotoURLs))
	return p, nil
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context(), strings.TrimSpace(r.URL.Query().Get("search")))
	if err != nil {
		h.logger.Error("list products", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to fetch products")
		return
	}
	respondData(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		respondError(w, storeErrorStatus(err), "product not found")
		return
	}
	respondData(w, http.StatusOK, product)
}

func (h *Handler) productByBarcode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	product, err := h.store.GetProductByBarcode(r.Context(), code)
	if err != nil {
		respondError(w, storeErrorStatus(err), "no product with that barcode")
		return
	}
	respondData(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	product, err := req.toProduct()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.store.CreateProduct(r.Context(), product)
	if err != nil {
		h.logger.Error("create product", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to create product")
		return
	}
	h.logger.Info("product created", zap.Int64("id", created.ID), zap.String("name", created.Name))
	respondData(w, http.StatusCreated, created)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	product, err := req.toProduct()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	product.ID = id
	updated, err := h.store.UpdateProduct(r.Context(), product)
	if err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("update product", zap.Int64("id", id), zap.Error(err))
			respondError(w, status, "unable to update product")
			return
		}
		respondError(w, status, "product not found")
		return
	}
	respondData(w, http.StatusOK, updated)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	deleted, err := h.store.DeleteProduct(r.Context(), id)
	if err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("delete product", zap.Int64("id", id), zap.Error(err))
			respondError(w, status, "unable to delete product")
			return
		}
		respondError(w, status, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Product %q deleted successfully.", deleted.Name),
	})
}

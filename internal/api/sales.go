package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arelyshop/tiendatemp/domain"
	"github.com/arelyshop/tiendatemp/internal/pdf"
)

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.store.ListSales(r.Context(), strings.TrimSpace(r.URL.Query().Get("search")))
	if err != nil {
		h.logger.Error("list sales", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to fetch sales")
		return
	}
	respondData(w, http.StatusOK, sales)
}

// createSale accepts a direct sale submission (the non-register flow).
// Lines with non-positive quantity are dropped before any persistence;
// an empty result aborts without touching the database.
func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var sub domain.SaleSubmission
	if err := decodeJSON(r, &sub); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	valid := sub.Items[:0]
	for _, item := range sub.Items {
		if item.ProductID != 0 && item.Quantity > 0 {
			valid = append(valid, item)
		}
	}
	sub.Items = valid
	if len(sub.Items) == 0 {
		respondError(w, http.StatusBadRequest, "no valid items in sale")
		return
	}
	if claims := claimsFromContext(r); claims != nil {
		sub.User = domain.Operator{ID: claims.UserID, FullName: claims.FullName}
	}

	sale, err := h.store.CreateSale(r.Context(), sub)
	if err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("create sale", zap.Error(err))
			respondError(w, status, "unable to save sale")
			return
		}
		respondError(w, status, err.Error())
		return
	}
	h.logger.Info("sale recorded", zap.String("sale_id", sale.SaleID), zap.Float64("total", sale.Total))
	respondData(w, http.StatusCreated, map[string]any{"saleId": sale.SaleID})
}

type annulRequest struct {
	SaleID string `json:"saleId"`
}

// annulSale reverses a completed sale's stock effect without deleting
// its record. The transition is one-way; a second annulment is rejected.
func (h *Handler) annulSale(w http.ResponseWriter, r *http.Request) {
	var req annulRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SaleID == "" {
		respondError(w, http.StatusBadRequest, "saleId is required")
		return
	}
	sale, err := h.store.AnnulSale(r.Context(), req.SaleID)
	if err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("annul sale", zap.String("sale_id", req.SaleID), zap.Error(err))
			respondError(w, status, "unable to annul sale")
			return
		}
		respondError(w, status, err.Error())
		return
	}
	h.logger.Info("sale annulled", zap.String("sale_id", sale.SaleID))
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Sale %s annulled. Stock restored.", sale.SaleID),
	})
}

// saleReceipt regenerates the receipt PDF for a stored sale (reprint).
func (h *Handler) saleReceipt(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleID")
	sale, err := h.store.GetSale(r.Context(), saleID)
	if err != nil {
		respondError(w, storeErrorStatus(err), "sale not found")
		return
	}
	blob, filename, err := h.docs.Render(pdf.ReceiptDocument(sale))
	if err != nil {
		h.logger.Error("render receipt", zap.String("sale_id", saleID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to generate receipt")
		return
	}
	servePDF(w, blob, filename)
}

func servePDF(w http.ResponseWriter, blob []byte, filename string) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

package web

import (
	"net/http"

	"bizsense/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type createProductPayload struct {
	Name       string          `json:"name"`
	SKU        string          `json:"sku"`
	CategoryID *string         `json:"category_id"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CostPrice  decimal.Decimal `json:"cost_price"`
	Quantity   int             `json:"quantity"`
}

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.ListProducts(r.Context(), businessID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Products)
}

// createProduct handles POST /api/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	var payload createProductPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	result, err := h.svc.CreateProduct(r.Context(), businessID, app.CreateProductRequest{
		Name:       payload.Name,
		SKU:        payload.SKU,
		CategoryID: payload.CategoryID,
		UnitPrice:  payload.UnitPrice,
		CostPrice:  payload.CostPrice,
		Quantity:   payload.Quantity,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Product)
}

// recordStockCount handles POST /api/products/{id}/counts.
func (h *Handler) recordStockCount(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	var payload struct {
		CountedQty int    `json:"counted_qty"`
		CountedOn  string `json:"counted_on"`
		Note       string `json:"note"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	result, err := h.svc.RecordStockCount(r.Context(), businessID, chi.URLParam(r, "id"), app.StockCountRequest{
		CountedQty: payload.CountedQty,
		CountedOn:  payload.CountedOn,
		Note:       payload.Note,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Count)
}

// listStockCounts handles GET /api/products/{id}/counts.
func (h *Handler) listStockCounts(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.ListStockCounts(r.Context(), businessID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Counts)
}

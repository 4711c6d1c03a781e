package web

import (
	"net/http"

	"bizsense/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type invoiceItemPayload struct {
	ProductID   string          `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Description string          `json:"description"`
}

type createInvoicePayload struct {
	CustomerID  string               `json:"customer_id"`
	InvoiceDate string               `json:"invoice_date"`
	DueDate     string               `json:"due_date"`
	Notes       string               `json:"notes"`
	Items       []invoiceItemPayload `json:"items"`
}

// createInvoice handles POST /api/invoices.
func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	var payload createInvoicePayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	req := app.InvoiceRequest{
		CustomerID:  payload.CustomerID,
		InvoiceDate: payload.InvoiceDate,
		DueDate:     payload.DueDate,
		Notes:       payload.Notes,
	}
	for _, item := range payload.Items {
		req.Items = append(req.Items, app.InvoiceItemRequest{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			Description: item.Description,
		})
	}

	result, err := h.svc.CreateInvoice(r.Context(), businessID, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Invoice)
}

// listInvoices handles GET /api/invoices. The optional status query
// parameter filters by lifecycle state.
func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.ListInvoices(r.Context(), businessID, r.URL.Query().Get("status"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Invoices)
}

// getInvoice handles GET /api/invoices/{id}.
func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetInvoice(r.Context(), businessID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// updateInvoiceStatus handles POST /api/invoices/{id}/status.
func (h *Handler) updateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	result, err := h.svc.UpdateInvoiceStatus(r.Context(), businessID, chi.URLParam(r, "id"), payload.Status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

type purchaseItemPayload struct {
	ProductID   string          `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Description string          `json:"description"`
}

type createPurchaseInvoicePayload struct {
	SupplierID  string                `json:"supplier_id"`
	InvoiceDate string                `json:"invoice_date"`
	DueDate     string                `json:"due_date"`
	Items       []purchaseItemPayload `json:"items"`
}

// createPurchaseInvoice handles POST /api/purchase-invoices.
func (h *Handler) createPurchaseInvoice(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	var payload createPurchaseInvoicePayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	req := app.PurchaseInvoiceRequest{
		SupplierID:  payload.SupplierID,
		InvoiceDate: payload.InvoiceDate,
		DueDate:     payload.DueDate,
	}
	for _, item := range payload.Items {
		req.Items = append(req.Items, app.PurchaseItemRequest{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
			TaxRate:     item.TaxRate,
			Description: item.Description,
		})
	}

	result, err := h.svc.CreatePurchaseInvoice(r.Context(), businessID, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Invoice)
}

// listPurchaseInvoices handles GET /api/purchase-invoices.
func (h *Handler) listPurchaseInvoices(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.ListPurchaseInvoices(r.Context(), businessID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Invoices)
}

// getPurchaseInvoice handles GET /api/purchase-invoices/{id}.
func (h *Handler) getPurchaseInvoice(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetPurchaseInvoice(r.Context(), businessID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// approvePurchaseInvoice handles POST /api/purchase-invoices/{id}/approve.
func (h *Handler) approvePurchaseInvoice(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.ApprovePurchaseInvoice(r.Context(), businessID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

package web

import (
	"net/http"

	"bizsense/internal/app"

	"github.com/shopspring/decimal"
)

type recordPaymentPayload struct {
	PaymentType       string           `json:"payment_type"`
	PaymentMethod     string           `json:"payment_method"`
	Amount            *decimal.Decimal `json:"amount"`
	PaymentDate       string           `json:"payment_date"`
	Reference         string           `json:"reference"`
	Notes             string           `json:"notes"`
	CustomerID        *string          `json:"customer_id"`
	SupplierID        *string          `json:"supplier_id"`
	InvoiceID         *string          `json:"invoice_id"`
	PurchaseInvoiceID *string          `json:"purchase_invoice_id"`
}

// recordPayment handles POST /api/payments.
func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	var payload recordPaymentPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	result, err := h.svc.RecordPayment(r.Context(), businessID, app.PaymentRequest{
		PaymentType:       payload.PaymentType,
		PaymentMethod:     payload.PaymentMethod,
		Amount:            payload.Amount,
		PaymentDate:       payload.PaymentDate,
		Reference:         payload.Reference,
		Notes:             payload.Notes,
		CustomerID:        payload.CustomerID,
		SupplierID:        payload.SupplierID,
		InvoiceID:         payload.InvoiceID,
		PurchaseInvoiceID: payload.PurchaseInvoiceID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Payment)
}

// listPayments handles GET /api/payments.
func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.ListPayments(r.Context(), businessID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Payments)
}

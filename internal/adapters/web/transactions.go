package web

import (
	"net/http"
	"strconv"

	"bizsense/internal/app"

	"github.com/shopspring/decimal"
)

type allocationPayload struct {
	AccountID             string           `json:"account_id"`
	Amount                *decimal.Decimal `json:"amount"`
	IsTransferSource      bool             `json:"is_transfer_source"`
	IsTransferDestination bool             `json:"is_transfer_destination"`
}

type postTransactionPayload struct {
	Kind        string              `json:"kind"`
	Amount      *decimal.Decimal    `json:"amount"`
	Description string              `json:"description"`
	CategoryID  *string             `json:"category_id"`
	Date        string              `json:"date"`
	Allocations []allocationPayload `json:"allocations"`
}

// postTransaction handles POST /api/transactions.
func (h *Handler) postTransaction(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	var payload postTransactionPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	req := app.PostTransactionRequest{
		Kind:        payload.Kind,
		Amount:      payload.Amount,
		Description: payload.Description,
		CategoryID:  payload.CategoryID,
		Date:        payload.Date,
	}
	for _, a := range payload.Allocations {
		req.Allocations = append(req.Allocations, app.AllocationInput{
			AccountID:             a.AccountID,
			Amount:                a.Amount,
			IsTransferSource:      a.IsTransferSource,
			IsTransferDestination: a.IsTransferDestination,
		})
	}

	result, err := h.svc.PostTransaction(r.Context(), businessID, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	type data struct {
		TransactionID string `json:"transaction_id"`
		BusinessID    string `json:"business_id"`
	}
	type response struct {
		Message string `json:"message"`
		Data    data   `json:"data"`
	}
	writeJSONStatus(w, http.StatusCreated, response{
		Message: "Transaction recorded successfully",
		Data: data{
			TransactionID: result.Transaction.ID,
			BusinessID:    result.Transaction.BusinessID,
		},
	})
}

// listTransactions handles GET /api/transactions.
func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, "limit must be a non-negative integer", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		limit = n
	}

	result, err := h.svc.ListTransactions(r.Context(), businessID, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Transactions)
}

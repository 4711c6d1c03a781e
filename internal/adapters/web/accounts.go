package web

import (
	"net/http"

	"bizsense/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type createAccountPayload struct {
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Provider      string          `json:"provider"`
	AccountNumber *string         `json:"account_number"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	IsDefault     bool            `json:"is_default"`
}

// createAccount handles POST /api/accounts.
func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	var payload createAccountPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	result, err := h.svc.CreateAccount(r.Context(), businessID, app.CreateAccountRequest{
		Name:          payload.Name,
		Type:          payload.Type,
		Provider:      payload.Provider,
		AccountNumber: payload.AccountNumber,
		Currency:      payload.Currency,
		Balance:       payload.Balance,
		IsDefault:     payload.IsDefault,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Account)
}

// listAccounts handles GET /api/accounts.
func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.ListAccounts(r.Context(), businessID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Accounts)
}

// getAccount handles GET /api/accounts/{id}.
func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetAccount(r.Context(), businessID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Account)
}

// setDefaultAccount handles POST /api/accounts/{id}/default.
func (h *Handler) setDefaultAccount(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.SetDefaultAccount(r.Context(), businessID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Account)
}

package web

import (
	"net/http"

	"bizsense/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type journalLinePayload struct {
	AccountID    string          `json:"account_id"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	Description  string          `json:"description"`
	Reference    string          `json:"reference"`
}

type createJournalEntryPayload struct {
	TransactionDate string               `json:"transaction_date"`
	Reference       string               `json:"reference"`
	Description     string               `json:"description"`
	Lines           []journalLinePayload `json:"lines"`
}

// createJournalEntry handles POST /api/journal-entries.
func (h *Handler) createJournalEntry(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	var payload createJournalEntryPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	req := app.JournalEntryRequest{
		TransactionDate: payload.TransactionDate,
		Reference:       payload.Reference,
		Description:     payload.Description,
	}
	for _, l := range payload.Lines {
		req.Lines = append(req.Lines, app.JournalLineInput{
			AccountID:    l.AccountID,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			Description:  l.Description,
			Reference:    l.Reference,
		})
	}

	result, err := h.svc.CreateJournalEntry(r.Context(), businessID, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Entry)
}

// listJournalEntries handles GET /api/journal-entries.
func (h *Handler) listJournalEntries(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.ListJournalEntries(r.Context(), businessID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Entries)
}

// getJournalEntry handles GET /api/journal-entries/{id}.
func (h *Handler) getJournalEntry(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetJournalEntry(r.Context(), businessID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Entry)
}

// reverseJournalEntry handles POST /api/journal-entries/{id}/reverse.
func (h *Handler) reverseJournalEntry(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	result, err := h.svc.ReverseJournalEntry(r.Context(), businessID, chi.URLParam(r, "id"), payload.Reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Entry)
}

package web

import "net/http"

// agingReport handles GET /api/reports/aging.
func (h *Handler) agingReport(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetAgingReport(r.Context(), businessID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Lines)
}

// receivablesSummary handles GET /api/reports/receivables.
func (h *Handler) receivablesSummary(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.GetReceivablesSummary(r.Context(), businessID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

// payablesSummary handles GET /api/reports/payables.
func (h *Handler) payablesSummary(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.GetPayablesSummary(r.Context(), businessID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

package web

import "net/http"

// cashFlowSeries handles GET /api/cashflow/series.
func (h *Handler) cashFlowSeries(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetCashFlowSeries(r.Context(), businessID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Series)
}

// runForecast handles POST /api/cashflow/forecast.
func (h *Handler) runForecast(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.ForecastCashFlow(r.Context(), businessID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

package web

import (
	"net/http"

	"bizsense/internal/app"
)

// listCategories handles GET /api/categories.
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.ListCategories(r.Context(), businessID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Categories)
}

// createCategory handles POST /api/categories.
func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	result, err := h.svc.CreateCategory(r.Context(), businessID, app.CreateCategoryRequest{
		Name: payload.Name,
		Kind: payload.Kind,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Category)
}

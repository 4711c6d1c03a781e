package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"bizsense/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// Public endpoints.
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// Protected endpoints, scoped to the authenticated user's business.
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// Receipt upload: multipart, size-limited inside the handler.
		r.Post("/api/receipts/scan", h.scanReceipt)

		// Everything else: 1 MB body limit.
		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(1 << 20))

			r.Get("/api/auth/me", h.me)

			r.Post("/api/transactions", h.postTransaction)
			r.Get("/api/transactions", h.listTransactions)

			r.Get("/api/accounts", h.listAccounts)
			r.Post("/api/accounts", h.createAccount)
			r.Get("/api/accounts/{id}", h.getAccount)
			r.Post("/api/accounts/{id}/default", h.setDefaultAccount)

			r.Get("/api/categories", h.listCategories)
			r.Post("/api/categories", h.createCategory)

			r.Get("/api/journal-entries", h.listJournalEntries)
			r.Post("/api/journal-entries", h.createJournalEntry)
			r.Get("/api/journal-entries/{id}", h.getJournalEntry)
			r.Post("/api/journal-entries/{id}/reverse", h.reverseJournalEntry)

			r.Get("/api/products", h.listProducts)
			r.Post("/api/products", h.createProduct)
			r.Get("/api/products/{id}/counts", h.listStockCounts)
			r.Post("/api/products/{id}/counts", h.recordStockCount)

			r.Get("/api/customers", h.listCustomers)
			r.Post("/api/customers", h.createCustomer)
			r.Get("/api/suppliers", h.listSuppliers)
			r.Post("/api/suppliers", h.createSupplier)

			r.Get("/api/invoices", h.listInvoices)
			r.Post("/api/invoices", h.createInvoice)
			r.Get("/api/invoices/{id}", h.getInvoice)
			r.Post("/api/invoices/{id}/status", h.updateInvoiceStatus)

			r.Get("/api/purchase-invoices", h.listPurchaseInvoices)
			r.Post("/api/purchase-invoices", h.createPurchaseInvoice)
			r.Get("/api/purchase-invoices/{id}", h.getPurchaseInvoice)
			r.Post("/api/purchase-invoices/{id}/approve", h.approvePurchaseInvoice)

			r.Get("/api/payments", h.listPayments)
			r.Post("/api/payments", h.recordPayment)

			r.Get("/api/reports/aging", h.agingReport)
			r.Get("/api/reports/receivables", h.receivablesSummary)
			r.Get("/api/reports/payables", h.payablesSummary)

			r.Get("/api/cashflow/series", h.cashFlowSeries)
			r.Post("/api/cashflow/forecast", h.runForecast)
		})
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// businessID returns the authenticated caller's business, or writes 401 and
// returns false. The business is always taken from the session claims.
func (h *Handler) businessID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := authFromContext(r.Context())
	if claims == nil || claims.BusinessID == "" {
		writeError(w, r, "no business resolved for caller", "UNAUTHORIZED", http.StatusUnauthorized)
		return "", false
	}
	return claims.BusinessID, true
}

// decodeJSON decodes the request body into v. On failure it writes an error
// response and returns false: HTTP 413 when the body exceeds the limit set
// by RequestBodyLimit middleware, HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

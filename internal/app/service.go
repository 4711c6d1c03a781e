package app

import (
	"context"

	"bizsense/internal/core"
)

// ApplicationService is the single interface all adapters call. It
// decouples presentation from business logic. Implementations must contain
// no display logic of any kind; every operation is scoped to the caller's
// business, which adapters resolve from the session.
type ApplicationService interface {
	// PostTransaction validates and atomically records a business
	// transaction with its account allocations and balance updates.
	PostTransaction(ctx context.Context, businessID string, req PostTransactionRequest) (*TransactionResult, error)

	// ListTransactions returns the business's most recent transactions.
	ListTransactions(ctx context.Context, businessID string, limit int) (*TransactionListResult, error)

	// CreateAccount creates a financial account. If the account is marked
	// default, any previous default is cleared in the same transaction.
	CreateAccount(ctx context.Context, businessID string, req CreateAccountRequest) (*AccountResult, error)

	// ListAccounts returns all financial accounts for the business.
	ListAccounts(ctx context.Context, businessID string) (*AccountListResult, error)

	// GetAccount returns a single account by ID.
	GetAccount(ctx context.Context, businessID, accountID string) (*AccountResult, error)

	// SetDefaultAccount marks the account as the business's only default.
	SetDefaultAccount(ctx context.Context, businessID, accountID string) (*AccountResult, error)

	// ListCategories returns all transaction categories for the business.
	ListCategories(ctx context.Context, businessID string) (*CategoryListResult, error)

	// CreateCategory creates a transaction category. Kind defaults to EXPENSE.
	CreateCategory(ctx context.Context, businessID string, req CreateCategoryRequest) (*CategoryResult, error)

	// CreateJournalEntry records a numbered journal entry with its lines.
	CreateJournalEntry(ctx context.Context, businessID string, req JournalEntryRequest) (*JournalEntryResult, error)

	// ListJournalEntries returns journal entries, newest first, without lines.
	ListJournalEntries(ctx context.Context, businessID string) (*JournalEntryListResult, error)

	// GetJournalEntry returns a journal entry with its lines.
	GetJournalEntry(ctx context.Context, businessID, entryID string) (*JournalEntryResult, error)

	// ReverseJournalEntry posts a mirror entry and marks the original Reversed.
	ReverseJournalEntry(ctx context.Context, businessID, entryID, reason string) (*JournalEntryResult, error)

	// ListProducts returns all products for the business.
	ListProducts(ctx context.Context, businessID string) (*ProductListResult, error)

	// CreateProduct creates a product with a unique SKU.
	CreateProduct(ctx context.Context, businessID string, req CreateProductRequest) (*ProductResult, error)

	// RecordStockCount records a physical count, stores the variance against
	// the recorded quantity, and resets the product quantity to the count.
	RecordStockCount(ctx context.Context, businessID, productID string, req StockCountRequest) (*StockCountResult, error)

	// ListStockCounts returns a product's count history, newest first.
	ListStockCounts(ctx context.Context, businessID, productID string) (*StockCountListResult, error)

	// GetCashFlowSeries returns the per-day SALE/EXPENSE aggregates the
	// forecast features are built from.
	GetCashFlowSeries(ctx context.Context, businessID string) (*CashFlowSeriesResult, error)

	// ForecastCashFlow returns the cached forecast when fresh, otherwise
	// runs the model and stores the prediction.
	ForecastCashFlow(ctx context.Context, businessID string) (*core.ForecastResult, error)

	// CreateCustomer creates a customer for the business.
	CreateCustomer(ctx context.Context, businessID string, req PartyRequest) (*CustomerResult, error)

	// ListCustomers returns the business's active customers.
	ListCustomers(ctx context.Context, businessID string) (*CustomerListResult, error)

	// CreateSupplier creates a supplier for the business.
	CreateSupplier(ctx context.Context, businessID string, req PartyRequest) (*SupplierResult, error)

	// ListSuppliers returns the business's active suppliers.
	ListSuppliers(ctx context.Context, businessID string) (*SupplierListResult, error)

	// CreateInvoice records a numbered sales invoice with its line items.
	CreateInvoice(ctx context.Context, businessID string, req InvoiceRequest) (*InvoiceResult, error)

	// ListInvoices returns sales invoices, optionally filtered by status.
	ListInvoices(ctx context.Context, businessID, status string) (*InvoiceListResult, error)

	// GetInvoice returns a sales invoice with its items and payments.
	GetInvoice(ctx context.Context, businessID, invoiceID string) (*InvoiceResult, error)

	// UpdateInvoiceStatus moves a sales invoice through its lifecycle.
	UpdateInvoiceStatus(ctx context.Context, businessID, invoiceID, status string) (*InvoiceResult, error)

	// CreatePurchaseInvoice records a numbered supplier bill.
	CreatePurchaseInvoice(ctx context.Context, businessID string, req PurchaseInvoiceRequest) (*PurchaseInvoiceResult, error)

	// ListPurchaseInvoices returns the business's supplier bills.
	ListPurchaseInvoices(ctx context.Context, businessID string) (*PurchaseInvoiceListResult, error)

	// GetPurchaseInvoice returns a supplier bill with its items.
	GetPurchaseInvoice(ctx context.Context, businessID, invoiceID string) (*PurchaseInvoiceResult, error)

	// ApprovePurchaseInvoice moves a Pending bill to Approved.
	ApprovePurchaseInvoice(ctx context.Context, businessID, invoiceID string) (*PurchaseInvoiceResult, error)

	// RecordPayment records a payment and applies it to the referenced invoice.
	RecordPayment(ctx context.Context, businessID string, req PaymentRequest) (*PaymentResult, error)

	// ListPayments returns the business's payments, newest first.
	ListPayments(ctx context.Context, businessID string) (*PaymentListResult, error)

	// GetAgingReport buckets outstanding receivables by days overdue.
	GetAgingReport(ctx context.Context, businessID string) (*AgingReportResult, error)

	// GetReceivablesSummary totals open sales invoices and lists overdue ones.
	GetReceivablesSummary(ctx context.Context, businessID string) (*core.ReceivablesSummary, error)

	// GetPayablesSummary totals open supplier bills.
	GetPayablesSummary(ctx context.Context, businessID string) (*core.PayablesSummary, error)

	// ScanReceipt extracts a draft transaction from a receipt image.
	ScanReceipt(ctx context.Context, mimeType string, image []byte) (*ReceiptScanResult, error)

	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// GetUser returns a user profile by ID.
	GetUser(ctx context.Context, userID string) (*UserResult, error)
}

package app

import (
	"bizsense/internal/ai"
	"bizsense/internal/core"
)

// TransactionResult is returned by PostTransaction.
type TransactionResult struct {
	Transaction *core.BusinessTransaction
}

// TransactionListResult is returned by ListTransactions.
type TransactionListResult struct {
	Transactions []core.BusinessTransaction
}

// AccountResult is returned by single-account operations.
type AccountResult struct {
	Account *core.FinancialAccount
}

// AccountListResult is returned by ListAccounts.
type AccountListResult struct {
	Accounts []core.FinancialAccount
}

// CategoryResult is returned by CreateCategory.
type CategoryResult struct {
	Category *core.Category
}

// CategoryListResult is returned by ListCategories.
type CategoryListResult struct {
	Categories []core.Category
}

// JournalEntryResult is returned by journal entry operations.
type JournalEntryResult struct {
	Entry *core.JournalEntry
}

// JournalEntryListResult is returned by ListJournalEntries.
type JournalEntryListResult struct {
	Entries []core.JournalEntry
}

// ProductResult is returned by CreateProduct.
type ProductResult struct {
	Product *core.Product
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product
}

// StockCountResult is returned by RecordStockCount.
type StockCountResult struct {
	Count *core.StockCount
}

// StockCountListResult is returned by ListStockCounts.
type StockCountListResult struct {
	Counts []core.StockCount
}

// CashFlowSeriesResult is returned by GetCashFlowSeries.
type CashFlowSeriesResult struct {
	Series []core.DailyCashFlow
}

// CustomerResult is returned by CreateCustomer.
type CustomerResult struct {
	Customer *core.Customer
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []core.Customer
}

// SupplierResult is returned by CreateSupplier.
type SupplierResult struct {
	Supplier *core.Supplier
}

// SupplierListResult is returned by ListSuppliers.
type SupplierListResult struct {
	Suppliers []core.Supplier
}

// InvoiceResult is returned by sales invoice operations.
type InvoiceResult struct {
	Invoice *core.Invoice
}

// InvoiceListResult is returned by ListInvoices.
type InvoiceListResult struct {
	Invoices []core.Invoice
}

// PurchaseInvoiceResult is returned by supplier bill operations.
type PurchaseInvoiceResult struct {
	Invoice *core.PurchaseInvoice
}

// PurchaseInvoiceListResult is returned by ListPurchaseInvoices.
type PurchaseInvoiceListResult struct {
	Invoices []core.PurchaseInvoice
}

// PaymentResult is returned by RecordPayment.
type PaymentResult struct {
	Payment *core.Payment
}

// PaymentListResult is returned by ListPayments.
type PaymentListResult struct {
	Payments []core.Payment
}

// AgingReportResult is returned by GetAgingReport.
type AgingReportResult struct {
	Lines []core.AgingLine
}

// ReceiptScanResult is returned by ScanReceipt.
type ReceiptScanResult struct {
	Draft *ai.ReceiptDraft
}

// UserSession identifies an authenticated user and the business all their
// operations are scoped to.
type UserSession struct {
	UserID     string `json:"user_id"`
	BusinessID string `json:"business_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
}

// UserResult is returned by GetUser.
type UserResult struct {
	UserID     string `json:"user_id"`
	BusinessID string `json:"business_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

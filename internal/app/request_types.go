package app

import "github.com/shopspring/decimal"

// PostTransactionRequest is the input for posting a business transaction.
// Amount is a pointer so an absent amount can be told apart from zero.
type PostTransactionRequest struct {
	Kind        string
	Amount      *decimal.Decimal
	Description string
	CategoryID  *string
	Date        string // YYYY-MM-DD
	Allocations []AllocationInput
}

// AllocationInput is a single account allocation within a PostTransactionRequest.
type AllocationInput struct {
	AccountID             string
	Amount                *decimal.Decimal
	IsTransferSource      bool
	IsTransferDestination bool
}

// CreateAccountRequest is the input for creating a financial account.
type CreateAccountRequest struct {
	Name          string
	Type          string
	Provider      string
	AccountNumber *string
	Currency      string
	Balance       decimal.Decimal
	IsDefault     bool
}

// CreateCategoryRequest is the input for creating a transaction category.
type CreateCategoryRequest struct {
	Name string
	Kind string // defaults to EXPENSE when empty
}

// JournalEntryRequest is the input for recording a journal entry.
type JournalEntryRequest struct {
	TransactionDate string // YYYY-MM-DD
	Reference       string
	Description     string
	Lines           []JournalLineInput
}

// JournalLineInput is a single line within a JournalEntryRequest.
type JournalLineInput struct {
	AccountID    string
	DebitAmount  decimal.Decimal
	CreditAmount decimal.Decimal
	Description  string
	Reference    string
}

// CreateProductRequest is the input for creating a product.
type CreateProductRequest struct {
	Name       string
	SKU        string
	CategoryID *string
	UnitPrice  decimal.Decimal
	CostPrice  decimal.Decimal
	Quantity   int
}

// StockCountRequest is the input for recording a physical stock count.
type StockCountRequest struct {
	CountedQty int
	CountedOn  string // YYYY-MM-DD
	Note       string
}

// PartyRequest is the input for creating a customer or supplier.
type PartyRequest struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// InvoiceRequest is the input for creating a sales invoice.
type InvoiceRequest struct {
	CustomerID  string
	InvoiceDate string // YYYY-MM-DD
	DueDate     string // YYYY-MM-DD
	Notes       string
	Items       []InvoiceItemRequest
}

// InvoiceItemRequest is a single line within an InvoiceRequest.
type InvoiceItemRequest struct {
	ProductID   string
	Quantity    int
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	Description string
}

// PurchaseInvoiceRequest is the input for recording a supplier bill.
type PurchaseInvoiceRequest struct {
	SupplierID  string
	InvoiceDate string // YYYY-MM-DD
	DueDate     string // YYYY-MM-DD
	Items       []PurchaseItemRequest
}

// PurchaseItemRequest is a single line within a PurchaseInvoiceRequest.
type PurchaseItemRequest struct {
	ProductID   string
	Quantity    int
	UnitCost    decimal.Decimal
	TaxRate     decimal.Decimal
	Description string
}

// PaymentRequest is the input for recording a payment. Amount is a pointer
// so an absent amount can be told apart from zero.
type PaymentRequest struct {
	PaymentType       string
	PaymentMethod     string
	Amount            *decimal.Decimal
	PaymentDate       string // YYYY-MM-DD, defaults to today
	Reference         string
	Notes             string
	CustomerID        *string
	SupplierID        *string
	InvoiceID         *string
	PurchaseInvoiceID *string
}

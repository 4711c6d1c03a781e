package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type Business struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID           string    `json:"id"`
	BusinessID   string    `json:"business_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Category struct {
	ID         string `json:"id"`
	BusinessID string `json:"business_id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
}

// FinancialAccount is a cash-like account whose balance is a cached
// aggregate. Only the TransactionPoster mutates Balance, and only through
// relative increments.
type FinancialAccount struct {
	ID            string          `json:"id"`
	BusinessID    string          `json:"business_id"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Provider      string          `json:"provider"`
	AccountNumber *string         `json:"account_number,omitempty"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	IsDefault     bool            `json:"is_default"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TransactionKind is an open enumeration of business transaction kinds.
// Recognized kinds and their balance directions live in KindRegistry.
type TransactionKind string

const (
	KindSale                  TransactionKind = "SALE"
	KindPurchase              TransactionKind = "PURCHASE"
	KindExpense               TransactionKind = "EXPENSE"
	KindRefund                TransactionKind = "REFUND"
	KindTransfer              TransactionKind = "TRANSFER"
	KindLoanDisbursement      TransactionKind = "LOAN_DISBURSEMENT"
	KindLoanRepayment         TransactionKind = "LOAN_REPAYMENT"
	KindSubscriptionPayment   TransactionKind = "SUBSCRIPTION_PAYMENT"
	KindInvestmentInflow      TransactionKind = "INVESTMENT_INFLOW"
	KindInvestmentOutflow     TransactionKind = "INVESTMENT_OUTFLOW"
	KindTaxPayment            TransactionKind = "TAX_PAYMENT"
	KindSalaryPayment         TransactionKind = "SALARY_PAYMENT"
	KindCommission            TransactionKind = "COMMISSION"
	KindDonation              TransactionKind = "DONATION"
	KindGrantReceipt          TransactionKind = "GRANT_RECEIPT"
	KindUtilityPayment        TransactionKind = "UTILITY_PAYMENT"
	KindMaintenanceExpense    TransactionKind = "MAINTENANCE_EXPENSE"
	KindInsurancePayment      TransactionKind = "INSURANCE_PAYMENT"
	KindReimbursement         TransactionKind = "REIMBURSEMENT"
	KindPenaltyOrFine         TransactionKind = "PENALTY_OR_FINE"
	KindDepreciation          TransactionKind = "DEPRECIATION"
	KindRawMaterialPurchase   TransactionKind = "RAW_MATERIAL_PURCHASE"
	KindPackagingPurchase     TransactionKind = "PACKAGING_PURCHASE"
	KindToolPurchase          TransactionKind = "TOOL_PURCHASE"
	KindWorkshopRent          TransactionKind = "WORKSHOP_RENT"
	KindStoreRent             TransactionKind = "STORE_RENT"
	KindMarketFees            TransactionKind = "MARKET_FEES"
	KindInventoryRestock      TransactionKind = "INVENTORY_RESTOCK"
	KindStorageExpense        TransactionKind = "STORAGE_EXPENSE"
	KindTransportationExpense TransactionKind = "TRANSPORTATION_EXPENSE"
	KindEquipmentPurchase     TransactionKind = "EQUIPMENT_PURCHASE"
	KindEquipmentMaintenance  TransactionKind = "EQUIPMENT_MAINTENANCE"
	KindBusinessSupplies      TransactionKind = "BUSINESS_SUPPLIES"
	KindStaffBonus            TransactionKind = "STAFF_BONUS"
	KindTrainingExpense       TransactionKind = "TRAINING_EXPENSE"
	KindNGOGrantReceipt       TransactionKind = "NGO_GRANT_RECEIPT"
	KindProductReturn         TransactionKind = "PRODUCT_RETURN"
	KindCreditSale            TransactionKind = "CREDIT_SALE"
	KindInstallmentPayment    TransactionKind = "INSTALLMENT_PAYMENT"
)

type BusinessTransaction struct {
	ID          string              `json:"id"`
	BusinessID  string              `json:"business_id"`
	Kind        TransactionKind     `json:"kind"`
	Amount      decimal.Decimal     `json:"amount"`
	Description string              `json:"description,omitempty"`
	CategoryID  *string             `json:"category_id,omitempty"`
	OccurredOn  string              `json:"occurred_on"`
	CreatedAt   time.Time           `json:"created_at"`
	Allocations []AccountAllocation `json:"allocations,omitempty"`
}

// AccountAllocation is the portion of a transaction applied to one account.
// Amount is a magnitude; the signed balance effect comes from the kind's
// direction (or the transfer flags for TRANSFER).
type AccountAllocation struct {
	ID                    string          `json:"id,omitempty"`
	TransactionID         string          `json:"transaction_id,omitempty"`
	AccountID             string          `json:"account_id"`
	Amount                decimal.Decimal `json:"amount"`
	IsTransferSource      bool            `json:"is_transfer_source,omitempty"`
	IsTransferDestination bool            `json:"is_transfer_destination,omitempty"`
}

type JournalStatus string

const (
	JournalStatusDraft    JournalStatus = "Draft"
	JournalStatusPosted   JournalStatus = "Posted"
	JournalStatusReversed JournalStatus = "Reversed"
)

type JournalEntry struct {
	ID              string             `json:"id"`
	BusinessID      string             `json:"business_id"`
	EntryNumber     string             `json:"entry_number"`
	TransactionDate string             `json:"transaction_date"`
	Description     string             `json:"description,omitempty"`
	Reference       string             `json:"reference,omitempty"`
	Status          JournalStatus      `json:"status"`
	TotalDebit      decimal.Decimal    `json:"total_debit"`
	TotalCredit     decimal.Decimal    `json:"total_credit"`
	ReversedEntryID *string            `json:"reversed_entry_id,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	Lines           []JournalEntryLine `json:"lines,omitempty"`
}

type JournalEntryLine struct {
	ID           string          `json:"id"`
	EntryID      string          `json:"entry_id"`
	AccountID    string          `json:"account_id"`
	AccountName  string          `json:"account_name,omitempty"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	Description  string          `json:"description,omitempty"`
	Reference    string          `json:"reference,omitempty"`
}

type ProductCategory struct {
	ID         string `json:"id"`
	BusinessID string `json:"business_id"`
	Name       string `json:"name"`
}

type Product struct {
	ID         string          `json:"id"`
	BusinessID string          `json:"business_id"`
	CategoryID *string         `json:"category_id,omitempty"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CostPrice  decimal.Decimal `json:"cost_price"`
	Quantity   int             `json:"quantity"`
	CreatedAt  time.Time       `json:"created_at"`
}

// StockCount is one physical count of a product: what was on the shelf
// versus what the system had recorded at count time.
type StockCount struct {
	ID          string    `json:"id"`
	BusinessID  string    `json:"business_id"`
	ProductID   string    `json:"product_id"`
	CountedQty  int       `json:"counted_qty"`
	RecordedQty int       `json:"recorded_qty"`
	Variance    int       `json:"variance"`
	Note        string    `json:"note,omitempty"`
	CountedOn   string    `json:"counted_on"`
	CreatedAt   time.Time `json:"created_at"`
}

// Customer is a party the business sells to on credit.
type Customer struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Address    string    `json:"address,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Supplier is a party the business buys from on credit.
type Supplier struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Address    string    `json:"address,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "Draft"
	InvoiceStatusSent      InvoiceStatus = "Sent"
	InvoiceStatusPaid      InvoiceStatus = "Paid"
	InvoiceStatusOverdue   InvoiceStatus = "Overdue"
	InvoiceStatusCancelled InvoiceStatus = "Cancelled"
)

// Invoice is a numbered sales document (INV-00001...). PaidAmount and
// Balance are maintained exclusively by the PaymentService as payments
// are applied; Balance is always TotalAmount - PaidAmount.
type Invoice struct {
	ID            string          `json:"id"`
	BusinessID    string          `json:"business_id"`
	CustomerID    string          `json:"customer_id"`
	CustomerName  string          `json:"customer_name,omitempty"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   string          `json:"invoice_date"`
	DueDate       string          `json:"due_date"`
	Status        InvoiceStatus   `json:"status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Balance       decimal.Decimal `json:"balance"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []InvoiceItem   `json:"items,omitempty"`
	Payments      []Payment       `json:"payments,omitempty"`
}

type InvoiceItem struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Description string          `json:"description,omitempty"`
}

type PurchaseInvoiceStatus string

const (
	PurchaseStatusPending  PurchaseInvoiceStatus = "Pending"
	PurchaseStatusApproved PurchaseInvoiceStatus = "Approved"
	PurchaseStatusPaid     PurchaseInvoiceStatus = "Paid"
)

// PurchaseInvoice is a numbered supplier bill (PINV-00001...) with the
// same paid/balance lifecycle as a sales invoice, on the payable side.
type PurchaseInvoice struct {
	ID            string                `json:"id"`
	BusinessID    string                `json:"business_id"`
	SupplierID    string                `json:"supplier_id"`
	SupplierName  string                `json:"supplier_name,omitempty"`
	InvoiceNumber string                `json:"invoice_number"`
	InvoiceDate   string                `json:"invoice_date"`
	DueDate       string                `json:"due_date"`
	Status        PurchaseInvoiceStatus `json:"status"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	PaidAmount    decimal.Decimal       `json:"paid_amount"`
	Balance       decimal.Decimal       `json:"balance"`
	CreatedAt     time.Time             `json:"created_at"`
	Items         []PurchaseInvoiceItem `json:"items,omitempty"`
}

type PurchaseInvoiceItem struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Description string          `json:"description,omitempty"`
}

// Payment is a numbered money movement (PAY-0001...): a Receipt from a
// customer or a Payment to a supplier, optionally applied to an invoice.
type Payment struct {
	ID                string          `json:"id"`
	BusinessID        string          `json:"business_id"`
	PaymentNumber     string          `json:"payment_number"`
	PaymentType       string          `json:"payment_type"`
	PaymentMethod     string          `json:"payment_method"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentDate       string          `json:"payment_date"`
	Reference         string          `json:"reference,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CustomerID        *string         `json:"customer_id,omitempty"`
	SupplierID        *string         `json:"supplier_id,omitempty"`
	InvoiceID         *string         `json:"invoice_id,omitempty"`
	PurchaseInvoiceID *string         `json:"purchase_invoice_id,omitempty"`
	PartyName         string          `json:"party_name,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

type Prediction struct {
	ID              string    `json:"id"`
	BusinessID      string    `json:"business_id"`
	ModelID         string    `json:"model_id"`
	PredictionType  string    `json:"prediction_type"`
	InputData       string    `json:"input_data"`
	Result          string    `json:"prediction_result"`
	ConfidenceScore float64   `json:"confidence_score"`
	CreatedAt       time.Time `json:"created_at"`
}

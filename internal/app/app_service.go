package app

import (
	"context"
	"fmt"

	"bizsense/internal/ai"
	"bizsense/internal/core"

	"golang.org/x/crypto/bcrypt"
)

type appService struct {
	poster     *core.TransactionPoster
	accounts   core.AccountService
	categories core.CategoryService
	journal    core.JournalService
	inventory  core.InventoryService
	parties    core.PartyService
	invoices   core.InvoiceService
	purchases  core.PurchaseInvoiceService
	payments   core.PaymentService
	reports    core.ReportingService
	forecast   core.ForecastService
	users      core.UserService
	scanner    ai.ReceiptScanner
	cache      core.ForecastCache
}

// NewAppService constructs an appService that satisfies ApplicationService.
// scanner and cache may be nil; the corresponding features degrade gracefully.
func NewAppService(
	poster *core.TransactionPoster,
	accounts core.AccountService,
	categories core.CategoryService,
	journal core.JournalService,
	inventory core.InventoryService,
	parties core.PartyService,
	invoices core.InvoiceService,
	purchases core.PurchaseInvoiceService,
	payments core.PaymentService,
	reports core.ReportingService,
	forecast core.ForecastService,
	users core.UserService,
	scanner ai.ReceiptScanner,
	cache core.ForecastCache,
) ApplicationService {
	return &appService{
		poster:     poster,
		accounts:   accounts,
		categories: categories,
		journal:    journal,
		inventory:  inventory,
		parties:    parties,
		invoices:   invoices,
		purchases:  purchases,
		payments:   payments,
		reports:    reports,
		forecast:   forecast,
		users:      users,
		scanner:    scanner,
		cache:      cache,
	}
}

// PostTransaction maps the request onto a posting input and records it.
func (s *appService) PostTransaction(ctx context.Context, businessID string, req PostTransactionRequest) (*TransactionResult, error) {
	if req.Amount == nil {
		return nil, &core.ValidationError{Reason: "transaction amount is required"}
	}

	input := core.PostingInput{
		Kind:        core.TransactionKind(req.Kind),
		Amount:      *req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		OccurredOn:  req.Date,
	}
	for _, a := range req.Allocations {
		if a.Amount == nil {
			return nil, &core.ValidationError{Reason: fmt.Sprintf("allocation amount is required for account %s", a.AccountID)}
		}
		input.Allocations = append(input.Allocations, core.AccountAllocation{
			AccountID:             a.AccountID,
			Amount:                *a.Amount,
			IsTransferSource:      a.IsTransferSource,
			IsTransferDestination: a.IsTransferDestination,
		})
	}

	txn, err := s.poster.Post(ctx, businessID, input)
	if err != nil {
		return nil, err
	}
	return &TransactionResult{Transaction: txn}, nil
}

// ListTransactions returns the business's most recent transactions.
func (s *appService) ListTransactions(ctx context.Context, businessID string, limit int) (*TransactionListResult, error) {
	txns, err := s.poster.List(ctx, businessID, limit)
	if err != nil {
		return nil, err
	}
	return &TransactionListResult{Transactions: txns}, nil
}

// CreateAccount creates a financial account for the business.
func (s *appService) CreateAccount(ctx context.Context, businessID string, req CreateAccountRequest) (*AccountResult, error) {
	account, err := s.accounts.Create(ctx, businessID, core.AccountInput{
		Name:          req.Name,
		Type:          req.Type,
		Provider:      req.Provider,
		AccountNumber: req.AccountNumber,
		Currency:      req.Currency,
		Balance:       req.Balance,
		IsDefault:     req.IsDefault,
	})
	if err != nil {
		return nil, err
	}
	return &AccountResult{Account: account}, nil
}

// ListAccounts returns all financial accounts for the business.
func (s *appService) ListAccounts(ctx context.Context, businessID string) (*AccountListResult, error) {
	accounts, err := s.accounts.List(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return &AccountListResult{Accounts: accounts}, nil
}

// GetAccount returns a single account by ID.
func (s *appService) GetAccount(ctx context.Context, businessID, accountID string) (*AccountResult, error) {
	account, err := s.accounts.Get(ctx, businessID, accountID)
	if err != nil {
		return nil, err
	}
	return &AccountResult{Account: account}, nil
}

// SetDefaultAccount marks the account as the business's only default.
func (s *appService) SetDefaultAccount(ctx context.Context, businessID, accountID string) (*AccountResult, error) {
	account, err := s.accounts.SetDefault(ctx, businessID, accountID)
	if err != nil {
		return nil, err
	}
	return &AccountResult{Account: account}, nil
}

// ListCategories returns all transaction categories for the business.
func (s *appService) ListCategories(ctx context.Context, businessID string) (*CategoryListResult, error) {
	categories, err := s.categories.List(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return &CategoryListResult{Categories: categories}, nil
}

// CreateCategory creates a transaction category.
func (s *appService) CreateCategory(ctx context.Context, businessID string, req CreateCategoryRequest) (*CategoryResult, error) {
	category, err := s.categories.Create(ctx, businessID, req.Name, req.Kind)
	if err != nil {
		return nil, err
	}
	return &CategoryResult{Category: category}, nil
}

// CreateJournalEntry records a numbered journal entry with its lines.
func (s *appService) CreateJournalEntry(ctx context.Context, businessID string, req JournalEntryRequest) (*JournalEntryResult, error) {
	input := core.JournalInput{
		TransactionDate: req.TransactionDate,
		Reference:       req.Reference,
		Description:     req.Description,
	}
	for _, l := range req.Lines {
		input.Lines = append(input.Lines, core.JournalLineInput{
			AccountID:    l.AccountID,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			Description:  l.Description,
			Reference:    l.Reference,
		})
	}

	entry, err := s.journal.Create(ctx, businessID, input)
	if err != nil {
		return nil, err
	}
	return &JournalEntryResult{Entry: entry}, nil
}

// ListJournalEntries returns journal entries, newest first.
func (s *appService) ListJournalEntries(ctx context.Context, businessID string) (*JournalEntryListResult, error) {
	entries, err := s.journal.List(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return &JournalEntryListResult{Entries: entries}, nil
}

// GetJournalEntry returns a journal entry with its lines.
func (s *appService) GetJournalEntry(ctx context.Context, businessID, entryID string) (*JournalEntryResult, error) {
	entry, err := s.journal.Get(ctx, businessID, entryID)
	if err != nil {
		return nil, err
	}
	return &JournalEntryResult{Entry: entry}, nil
}

// ReverseJournalEntry posts a mirror entry and marks the original Reversed.
func (s *appService) ReverseJournalEntry(ctx context.Context, businessID, entryID, reason string) (*JournalEntryResult, error) {
	reversal, err := s.journal.Reverse(ctx, businessID, entryID, reason)
	if err != nil {
		return nil, err
	}
	return &JournalEntryResult{Entry: reversal}, nil
}

// ListProducts returns all products for the business.
func (s *appService) ListProducts(ctx context.Context, businessID string) (*ProductListResult, error) {
	products, err := s.inventory.ListProducts(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

// CreateProduct creates a product with a unique SKU.
func (s *appService) CreateProduct(ctx context.Context, businessID string, req CreateProductRequest) (*ProductResult, error) {
	product, err := s.inventory.CreateProduct(ctx, businessID, core.ProductInput{
		Name:       req.Name,
		SKU:        req.SKU,
		CategoryID: req.CategoryID,
		UnitPrice:  req.UnitPrice,
		CostPrice:  req.CostPrice,
		Quantity:   req.Quantity,
	})
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: product}, nil
}

// RecordStockCount records a physical count for the product.
func (s *appService) RecordStockCount(ctx context.Context, businessID, productID string, req StockCountRequest) (*StockCountResult, error) {
	count, err := s.inventory.RecordPhysicalCount(ctx, businessID, productID, core.PhysicalCountInput{
		CountedQty: req.CountedQty,
		CountedOn:  req.CountedOn,
		Note:       req.Note,
	})
	if err != nil {
		return nil, err
	}
	return &StockCountResult{Count: count}, nil
}

// ListStockCounts returns a product's count history.
func (s *appService) ListStockCounts(ctx context.Context, businessID, productID string) (*StockCountListResult, error) {
	counts, err := s.inventory.ListCounts(ctx, businessID, productID)
	if err != nil {
		return nil, err
	}
	return &StockCountListResult{Counts: counts}, nil
}

// CreateCustomer creates a customer for the business.
func (s *appService) CreateCustomer(ctx context.Context, businessID string, req PartyRequest) (*CustomerResult, error) {
	customer, err := s.parties.CreateCustomer(ctx, businessID, core.PartyInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: customer}, nil
}

// ListCustomers returns the business's active customers.
func (s *appService) ListCustomers(ctx context.Context, businessID string) (*CustomerListResult, error) {
	customers, err := s.parties.ListCustomers(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers}, nil
}

// CreateSupplier creates a supplier for the business.
func (s *appService) CreateSupplier(ctx context.Context, businessID string, req PartyRequest) (*SupplierResult, error) {
	supplier, err := s.parties.CreateSupplier(ctx, businessID, core.PartyInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return nil, err
	}
	return &SupplierResult{Supplier: supplier}, nil
}

// ListSuppliers returns the business's active suppliers.
func (s *appService) ListSuppliers(ctx context.Context, businessID string) (*SupplierListResult, error) {
	suppliers, err := s.parties.ListSuppliers(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return &SupplierListResult{Suppliers: suppliers}, nil
}

// CreateInvoice records a numbered sales invoice with its line items.
func (s *appService) CreateInvoice(ctx context.Context, businessID string, req InvoiceRequest) (*InvoiceResult, error) {
	input := core.InvoiceInput{
		CustomerID:  req.CustomerID,
		InvoiceDate: req.InvoiceDate,
		DueDate:     req.DueDate,
		Notes:       req.Notes,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, core.InvoiceItemInput{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			Description: item.Description,
		})
	}

	invoice, err := s.invoices.Create(ctx, businessID, input)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: invoice}, nil
}

// ListInvoices returns sales invoices, optionally filtered by status.
func (s *appService) ListInvoices(ctx context.Context, businessID, status string) (*InvoiceListResult, error) {
	invoices, err := s.invoices.List(ctx, businessID, status)
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices}, nil
}

// GetInvoice returns a sales invoice with its items and payments.
func (s *appService) GetInvoice(ctx context.Context, businessID, invoiceID string) (*InvoiceResult, error) {
	invoice, err := s.invoices.Get(ctx, businessID, invoiceID)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: invoice}, nil
}

// UpdateInvoiceStatus moves a sales invoice through its lifecycle.
func (s *appService) UpdateInvoiceStatus(ctx context.Context, businessID, invoiceID, status string) (*InvoiceResult, error) {
	invoice, err := s.invoices.UpdateStatus(ctx, businessID, invoiceID, core.InvoiceStatus(status))
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: invoice}, nil
}

// CreatePurchaseInvoice records a numbered supplier bill.
func (s *appService) CreatePurchaseInvoice(ctx context.Context, businessID string, req PurchaseInvoiceRequest) (*PurchaseInvoiceResult, error) {
	input := core.PurchaseInvoiceInput{
		SupplierID:  req.SupplierID,
		InvoiceDate: req.InvoiceDate,
		DueDate:     req.DueDate,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, core.PurchaseItemInput{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
			TaxRate:     item.TaxRate,
			Description: item.Description,
		})
	}

	invoice, err := s.purchases.Create(ctx, businessID, input)
	if err != nil {
		return nil, err
	}
	return &PurchaseInvoiceResult{Invoice: invoice}, nil
}

// ListPurchaseInvoices returns the business's supplier bills.
func (s *appService) ListPurchaseInvoices(ctx context.Context, businessID string) (*PurchaseInvoiceListResult, error) {
	invoices, err := s.purchases.List(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return &PurchaseInvoiceListResult{Invoices: invoices}, nil
}

// GetPurchaseInvoice returns a supplier bill with its items.
func (s *appService) GetPurchaseInvoice(ctx context.Context, businessID, invoiceID string) (*PurchaseInvoiceResult, error) {
	invoice, err := s.purchases.Get(ctx, businessID, invoiceID)
	if err != nil {
		return nil, err
	}
	return &PurchaseInvoiceResult{Invoice: invoice}, nil
}

// ApprovePurchaseInvoice moves a Pending bill to Approved.
func (s *appService) ApprovePurchaseInvoice(ctx context.Context, businessID, invoiceID string) (*PurchaseInvoiceResult, error) {
	invoice, err := s.purchases.Approve(ctx, businessID, invoiceID)
	if err != nil {
		return nil, err
	}
	return &PurchaseInvoiceResult{Invoice: invoice}, nil
}

// RecordPayment records a payment and applies it to the referenced invoice.
func (s *appService) RecordPayment(ctx context.Context, businessID string, req PaymentRequest) (*PaymentResult, error) {
	if req.Amount == nil {
		return nil, &core.ValidationError{Reason: "payment amount is required"}
	}

	payment, err := s.payments.Record(ctx, businessID, core.PaymentInput{
		PaymentType:       req.PaymentType,
		PaymentMethod:     req.PaymentMethod,
		Amount:            *req.Amount,
		PaymentDate:       req.PaymentDate,
		Reference:         req.Reference,
		Notes:             req.Notes,
		CustomerID:        req.CustomerID,
		SupplierID:        req.SupplierID,
		InvoiceID:         req.InvoiceID,
		PurchaseInvoiceID: req.PurchaseInvoiceID,
	})
	if err != nil {
		return nil, err
	}
	return &PaymentResult{Payment: payment}, nil
}

// ListPayments returns the business's payments, newest first.
func (s *appService) ListPayments(ctx context.Context, businessID string) (*PaymentListResult, error) {
	payments, err := s.payments.List(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return &PaymentListResult{Payments: payments}, nil
}

// GetAgingReport buckets outstanding receivables by days overdue.
func (s *appService) GetAgingReport(ctx context.Context, businessID string) (*AgingReportResult, error) {
	lines, err := s.reports.AgingReport(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return &AgingReportResult{Lines: lines}, nil
}

// GetReceivablesSummary totals open sales invoices and lists overdue ones.
func (s *appService) GetReceivablesSummary(ctx context.Context, businessID string) (*core.ReceivablesSummary, error) {
	return s.reports.Receivables(ctx, businessID)
}

// GetPayablesSummary totals open supplier bills.
func (s *appService) GetPayablesSummary(ctx context.Context, businessID string) (*core.PayablesSummary, error) {
	return s.reports.Payables(ctx, businessID)
}

// GetCashFlowSeries returns the per-day cash flow aggregates.
func (s *appService) GetCashFlowSeries(ctx context.Context, businessID string) (*CashFlowSeriesResult, error) {
	series, err := s.forecast.DailySeries(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return &CashFlowSeriesResult{Series: series}, nil
}

// ForecastCashFlow serves the cached forecast when present, otherwise runs
// the model and persists the new prediction.
func (s *appService) ForecastCashFlow(ctx context.Context, businessID string) (*core.ForecastResult, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetForecast(ctx, businessID); ok {
			return cached, nil
		}
	}
	return s.forecast.RunForecast(ctx, businessID)
}

// ScanReceipt extracts a draft transaction from a receipt image.
func (s *appService) ScanReceipt(ctx context.Context, mimeType string, image []byte) (*ReceiptScanResult, error) {
	if s.scanner == nil {
		return nil, fmt.Errorf("receipt scanning is not configured, set OPENAI_API_KEY")
	}
	draft, err := s.scanner.ScanReceipt(ctx, mimeType, image)
	if err != nil {
		return nil, err
	}
	return &ReceiptScanResult{Draft: draft}, nil
}

// AuthenticateUser verifies credentials against the stored bcrypt hash.
func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("authentication failed: invalid credentials")
	}
	return &UserSession{
		UserID:     user.ID,
		BusinessID: user.BusinessID,
		Username:   user.Username,
		Role:       user.Role,
	}, nil
}

// GetUser returns a user profile by ID.
func (s *appService) GetUser(ctx context.Context, userID string) (*UserResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserResult{
		UserID:     user.ID,
		BusinessID: user.BusinessID,
		Username:   user.Username,
		Email:      user.Email,
		Role:       user.Role,
	}, nil
}

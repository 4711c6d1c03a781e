package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PurchaseItemInput struct {
	ProductID   string
	Quantity    int
	UnitCost    decimal.Decimal
	TaxRate     decimal.Decimal // percent, 0..100
	Description string
}

type PurchaseInvoiceInput struct {
	SupplierID  string
	InvoiceDate string // YYYY-MM-DD
	DueDate     string // YYYY-MM-DD
	Items       []PurchaseItemInput
}

// PurchaseInvoiceService manages numbered supplier bills. A bill starts
// Pending, must be approved before it can be paid, and moves to Paid
// through the PaymentService.
type PurchaseInvoiceService interface {
	Create(ctx context.Context, businessID string, input PurchaseInvoiceInput) (*PurchaseInvoice, error)
	List(ctx context.Context, businessID string) ([]PurchaseInvoice, error)
	Get(ctx context.Context, businessID, invoiceID string) (*PurchaseInvoice, error)
	// Approve transitions Pending to Approved; any other starting status is
	// refused.
	Approve(ctx context.Context, businessID, invoiceID string) (*PurchaseInvoice, error)
}

type purchaseInvoiceService struct {
	pool *pgxpool.Pool
}

func NewPurchaseInvoiceService(pool *pgxpool.Pool) PurchaseInvoiceService {
	return &purchaseInvoiceService{pool: pool}
}

func (in *PurchaseInvoiceInput) validate() error {
	if in.SupplierID == "" {
		return &ValidationError{Reason: "supplier id is required"}
	}
	for _, field := range []struct{ name, value string }{
		{"invoice date", in.InvoiceDate},
		{"due date", in.DueDate},
	} {
		if field.value == "" {
			return &ValidationError{Reason: field.name + " is required"}
		}
		if _, err := time.Parse("2006-01-02", field.value); err != nil {
			return &ValidationError{Reason: fmt.Sprintf("invalid %s %q, want YYYY-MM-DD", field.name, field.value)}
		}
	}
	if len(in.Items) == 0 {
		return &ValidationError{Reason: "at least one invoice item is required"}
	}
	hundred := decimal.NewFromInt(100)
	for _, item := range in.Items {
		if item.ProductID == "" {
			return &ValidationError{Reason: "invoice item is missing a product id"}
		}
		if item.Quantity <= 0 {
			return &ValidationError{Reason: fmt.Sprintf("invoice item quantity must be positive for product %s", item.ProductID)}
		}
		if item.UnitCost.IsNegative() {
			return &ValidationError{Reason: fmt.Sprintf("invoice item cost cannot be negative for product %s", item.ProductID)}
		}
		if item.TaxRate.IsNegative() || item.TaxRate.GreaterThan(hundred) {
			return &ValidationError{Reason: fmt.Sprintf("invoice item tax rate must be between 0 and 100 for product %s", item.ProductID)}
		}
	}
	return nil
}

// nextPurchaseInvoiceNumber returns the next PINV-%05d number for the
// business, taken over the numeric suffix inside the insert transaction.
func nextPurchaseInvoiceNumber(ctx context.Context, tx pgx.Tx, businessID string) (string, error) {
	var last int
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(substring(invoice_number from 6)::int), 0)
		FROM purchase_invoices
		WHERE business_id = $1
	`, businessID).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("failed to fetch last purchase invoice number: %w", err)
	}
	return fmt.Sprintf("PINV-%05d", last+1), nil
}

func (s *purchaseInvoiceService) Create(ctx context.Context, businessID string, input PurchaseInvoiceInput) (*PurchaseInvoice, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var supplierName string
	err = tx.QueryRow(ctx,
		"SELECT name FROM suppliers WHERE id = $1 AND business_id = $2",
		input.SupplierID, businessID,
	).Scan(&supplierName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Reason: fmt.Sprintf("supplier %s not found for this business", input.SupplierID)}
		}
		return nil, fmt.Errorf("failed to resolve supplier: %w", err)
	}

	number, err := nextPurchaseInvoiceNumber(ctx, tx, businessID)
	if err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	inv := &PurchaseInvoice{
		ID:            uuid.NewString(),
		BusinessID:    businessID,
		SupplierID:    input.SupplierID,
		SupplierName:  supplierName,
		InvoiceNumber: number,
		InvoiceDate:   input.InvoiceDate,
		DueDate:       input.DueDate,
		Status:        PurchaseStatusPending,
	}
	for _, item := range input.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		lineTotal := item.UnitCost.Mul(qty)
		taxAmount := lineTotal.Mul(item.TaxRate).Div(hundred)
		inv.Subtotal = inv.Subtotal.Add(lineTotal)
		inv.TaxAmount = inv.TaxAmount.Add(taxAmount)
		inv.Items = append(inv.Items, PurchaseInvoiceItem{
			ID:          uuid.NewString(),
			InvoiceID:   inv.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
			TaxRate:     item.TaxRate,
			TaxAmount:   taxAmount,
			LineTotal:   lineTotal,
			Description: item.Description,
		})
	}
	inv.TotalAmount = inv.Subtotal.Add(inv.TaxAmount)
	inv.Balance = inv.TotalAmount

	err = tx.QueryRow(ctx, `
		INSERT INTO purchase_invoices (id, business_id, supplier_id, invoice_number, invoice_date, due_date,
		                               status, subtotal, tax_amount, total_amount, paid_amount, balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, $11, NOW())
		RETURNING created_at
	`, inv.ID, businessID, inv.SupplierID, number, inv.InvoiceDate, inv.DueDate,
		string(inv.Status), inv.Subtotal, inv.TaxAmount, inv.TotalAmount, inv.Balance,
	).Scan(&inv.CreatedAt)
	if err != nil {
		if uniqueViolation(err) != nil {
			return nil, &ConflictError{Reason: fmt.Sprintf("invoice number %s was taken by a concurrent create, retry", number)}
		}
		return nil, fmt.Errorf("failed to insert purchase invoice: %w", err)
	}

	for _, item := range inv.Items {
		var exists bool
		err = tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM products WHERE id = $1 AND business_id = $2)",
			item.ProductID, businessID,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check product %s: %w", item.ProductID, err)
		}
		if !exists {
			return nil, &NotFoundError{Reason: fmt.Sprintf("product %s not found for this business", item.ProductID)}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO purchase_invoice_items (id, invoice_id, product_id, quantity, unit_cost, tax_rate, tax_amount, line_total, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, item.ID, inv.ID, item.ProductID, item.Quantity, item.UnitCost,
			item.TaxRate, item.TaxAmount, item.LineTotal, item.Description)
		if err != nil {
			return nil, fmt.Errorf("failed to insert purchase invoice item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit purchase invoice: %w", err)
	}
	return inv, nil
}

func (s *purchaseInvoiceService) List(ctx context.Context, businessID string) ([]PurchaseInvoice, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pi.id, pi.business_id, pi.supplier_id, sp.name, pi.invoice_number,
		       to_char(pi.invoice_date, 'YYYY-MM-DD'), to_char(pi.due_date, 'YYYY-MM-DD'),
		       pi.status, pi.subtotal, pi.tax_amount, pi.total_amount, pi.paid_amount, pi.balance, pi.created_at
		FROM purchase_invoices pi
		JOIN suppliers sp ON sp.id = pi.supplier_id
		WHERE pi.business_id = $1
		ORDER BY pi.invoice_date DESC, pi.invoice_number DESC
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase invoices: %w", err)
	}
	defer rows.Close()

	var invoices []PurchaseInvoice
	for rows.Next() {
		var inv PurchaseInvoice
		var st string
		if err := rows.Scan(&inv.ID, &inv.BusinessID, &inv.SupplierID, &inv.SupplierName,
			&inv.InvoiceNumber, &inv.InvoiceDate, &inv.DueDate, &st,
			&inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount, &inv.PaidAmount, &inv.Balance,
			&inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase invoice: %w", err)
		}
		inv.Status = PurchaseInvoiceStatus(st)
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase invoices: %w", err)
	}
	return invoices, nil
}

func (s *purchaseInvoiceService) Get(ctx context.Context, businessID, invoiceID string) (*PurchaseInvoice, error) {
	inv := &PurchaseInvoice{}
	var st string
	err := s.pool.QueryRow(ctx, `
		SELECT pi.id, pi.business_id, pi.supplier_id, sp.name, pi.invoice_number,
		       to_char(pi.invoice_date, 'YYYY-MM-DD'), to_char(pi.due_date, 'YYYY-MM-DD'),
		       pi.status, pi.subtotal, pi.tax_amount, pi.total_amount, pi.paid_amount, pi.balance, pi.created_at
		FROM purchase_invoices pi
		JOIN suppliers sp ON sp.id = pi.supplier_id
		WHERE pi.id = $1 AND pi.business_id = $2
	`, invoiceID, businessID).Scan(&inv.ID, &inv.BusinessID, &inv.SupplierID, &inv.SupplierName,
		&inv.InvoiceNumber, &inv.InvoiceDate, &inv.DueDate, &st,
		&inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount, &inv.PaidAmount, &inv.Balance, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Reason: fmt.Sprintf("purchase invoice %s not found", invoiceID)}
		}
		return nil, fmt.Errorf("failed to fetch purchase invoice %s: %w", invoiceID, err)
	}
	inv.Status = PurchaseInvoiceStatus(st)

	rows, err := s.pool.Query(ctx, `
		SELECT it.id, it.invoice_id, it.product_id, p.name, it.quantity,
		       it.unit_cost, it.tax_rate, it.tax_amount, it.line_total, COALESCE(it.description, '')
		FROM purchase_invoice_items it
		JOIN products p ON p.id = it.product_id
		WHERE it.invoice_id = $1
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item PurchaseInvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitCost, &item.TaxRate, &item.TaxAmount,
			&item.LineTotal, &item.Description); err != nil {
			return nil, fmt.Errorf("failed to scan purchase invoice item: %w", err)
		}
		inv.Items = append(inv.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase invoice items: %w", err)
	}
	return inv, nil
}

func (s *purchaseInvoiceService) Approve(ctx context.Context, businessID, invoiceID string) (*PurchaseInvoice, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx,
		"SELECT status FROM purchase_invoices WHERE id = $1 AND business_id = $2 FOR UPDATE",
		invoiceID, businessID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Reason: fmt.Sprintf("purchase invoice %s not found", invoiceID)}
		}
		return nil, fmt.Errorf("failed to fetch purchase invoice %s: %w", invoiceID, err)
	}
	if PurchaseInvoiceStatus(current) != PurchaseStatusPending {
		return nil, &ConflictError{Reason: fmt.Sprintf("purchase invoice cannot be approved: status is %s, must be Pending", current)}
	}

	if _, err := tx.Exec(ctx,
		"UPDATE purchase_invoices SET status = $1 WHERE id = $2",
		string(PurchaseStatusApproved), invoiceID,
	); err != nil {
		return nil, fmt.Errorf("failed to approve purchase invoice: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}
	return s.Get(ctx, businessID, invoiceID)
}

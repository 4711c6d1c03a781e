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

type InvoiceItemInput struct {
	ProductID   string
	Quantity    int
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal // percent, 0..100
	Description string
}

type InvoiceInput struct {
	CustomerID  string
	InvoiceDate string // YYYY-MM-DD
	DueDate     string // YYYY-MM-DD
	Notes       string
	Items       []InvoiceItemInput
}

// InvoiceService manages numbered sales invoices. Creating an invoice
// computes per-line tax and totals; payments are applied through the
// PaymentService, which owns the paid/balance lifecycle.
type InvoiceService interface {
	Create(ctx context.Context, businessID string, input InvoiceInput) (*Invoice, error)
	List(ctx context.Context, businessID string, status string) ([]Invoice, error)
	Get(ctx context.Context, businessID, invoiceID string) (*Invoice, error)
	// UpdateStatus moves the invoice to newStatus. A Paid invoice cannot be
	// modified; marking Paid requires the balance to be settled; marking
	// Overdue requires the due date to have passed.
	UpdateStatus(ctx context.Context, businessID, invoiceID string, newStatus InvoiceStatus) (*Invoice, error)
}

type invoiceService struct {
	pool *pgxpool.Pool
}

func NewInvoiceService(pool *pgxpool.Pool) InvoiceService {
	return &invoiceService{pool: pool}
}

func (in *InvoiceInput) validate() error {
	if in.CustomerID == "" {
		return &ValidationError{Reason: "customer id is required"}
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
		if item.UnitPrice.IsNegative() {
			return &ValidationError{Reason: fmt.Sprintf("invoice item price cannot be negative for product %s", item.ProductID)}
		}
		if item.TaxRate.IsNegative() || item.TaxRate.GreaterThan(hundred) {
			return &ValidationError{Reason: fmt.Sprintf("invoice item tax rate must be between 0 and 100 for product %s", item.ProductID)}
		}
	}
	return nil
}

// nextInvoiceNumber returns the next INV-%05d number for the business,
// taken over the numeric suffix inside the insert transaction.
func nextInvoiceNumber(ctx context.Context, tx pgx.Tx, businessID string) (string, error) {
	var last int
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(substring(invoice_number from 5)::int), 0)
		FROM invoices
		WHERE business_id = $1
	`, businessID).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("failed to fetch last invoice number: %w", err)
	}
	return fmt.Sprintf("INV-%05d", last+1), nil
}

func (s *invoiceService) Create(ctx context.Context, businessID string, input InvoiceInput) (*Invoice, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var customerName string
	err = tx.QueryRow(ctx,
		"SELECT name FROM customers WHERE id = $1 AND business_id = $2",
		input.CustomerID, businessID,
	).Scan(&customerName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Reason: fmt.Sprintf("customer %s not found for this business", input.CustomerID)}
		}
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	number, err := nextInvoiceNumber(ctx, tx, businessID)
	if err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	inv := &Invoice{
		ID:            uuid.NewString(),
		BusinessID:    businessID,
		CustomerID:    input.CustomerID,
		CustomerName:  customerName,
		InvoiceNumber: number,
		InvoiceDate:   input.InvoiceDate,
		DueDate:       input.DueDate,
		Status:        InvoiceStatusDraft,
		Notes:         input.Notes,
	}
	for _, item := range input.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		lineTotal := item.UnitPrice.Mul(qty)
		taxAmount := lineTotal.Mul(item.TaxRate).Div(hundred)
		inv.Subtotal = inv.Subtotal.Add(lineTotal)
		inv.TaxAmount = inv.TaxAmount.Add(taxAmount)
		inv.Items = append(inv.Items, InvoiceItem{
			ID:          uuid.NewString(),
			InvoiceID:   inv.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			TaxAmount:   taxAmount,
			LineTotal:   lineTotal,
			Description: item.Description,
		})
	}
	inv.TotalAmount = inv.Subtotal.Add(inv.TaxAmount)
	inv.Balance = inv.TotalAmount

	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (id, business_id, customer_id, invoice_number, invoice_date, due_date,
		                      status, subtotal, tax_amount, total_amount, paid_amount, balance, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, $11, $12, NOW())
		RETURNING created_at
	`, inv.ID, businessID, inv.CustomerID, number, inv.InvoiceDate, inv.DueDate,
		string(inv.Status), inv.Subtotal, inv.TaxAmount, inv.TotalAmount, inv.Balance, inv.Notes,
	).Scan(&inv.CreatedAt)
	if err != nil {
		if uniqueViolation(err) != nil {
			return nil, &ConflictError{Reason: fmt.Sprintf("invoice number %s was taken by a concurrent create, retry", number)}
		}
		return nil, fmt.Errorf("failed to insert invoice: %w", err)
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
			INSERT INTO invoice_items (id, invoice_id, product_id, quantity, unit_price, tax_rate, tax_amount, line_total, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, item.ID, inv.ID, item.ProductID, item.Quantity, item.UnitPrice,
			item.TaxRate, item.TaxAmount, item.LineTotal, item.Description)
		if err != nil {
			return nil, fmt.Errorf("failed to insert invoice item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit invoice: %w", err)
	}
	return inv, nil
}

func (s *invoiceService) List(ctx context.Context, businessID string, status string) ([]Invoice, error) {
	query := `
		SELECT i.id, i.business_id, i.customer_id, c.name, i.invoice_number,
		       to_char(i.invoice_date, 'YYYY-MM-DD'), to_char(i.due_date, 'YYYY-MM-DD'),
		       i.status, i.subtotal, i.tax_amount, i.total_amount, i.paid_amount, i.balance,
		       COALESCE(i.notes, ''), i.created_at
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.business_id = $1
	`
	args := []any{businessID}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND i.status = $%d", len(args))
	}
	query += " ORDER BY i.invoice_date DESC, i.invoice_number DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		var st string
		if err := rows.Scan(&inv.ID, &inv.BusinessID, &inv.CustomerID, &inv.CustomerName,
			&inv.InvoiceNumber, &inv.InvoiceDate, &inv.DueDate, &st,
			&inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount, &inv.PaidAmount, &inv.Balance,
			&inv.Notes, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		inv.Status = InvoiceStatus(st)
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}
	return invoices, nil
}

func (s *invoiceService) Get(ctx context.Context, businessID, invoiceID string) (*Invoice, error) {
	inv := &Invoice{}
	var st string
	err := s.pool.QueryRow(ctx, `
		SELECT i.id, i.business_id, i.customer_id, c.name, i.invoice_number,
		       to_char(i.invoice_date, 'YYYY-MM-DD'), to_char(i.due_date, 'YYYY-MM-DD'),
		       i.status, i.subtotal, i.tax_amount, i.total_amount, i.paid_amount, i.balance,
		       COALESCE(i.notes, ''), i.created_at
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.id = $1 AND i.business_id = $2
	`, invoiceID, businessID).Scan(&inv.ID, &inv.BusinessID, &inv.CustomerID, &inv.CustomerName,
		&inv.InvoiceNumber, &inv.InvoiceDate, &inv.DueDate, &st,
		&inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount, &inv.PaidAmount, &inv.Balance,
		&inv.Notes, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Reason: fmt.Sprintf("invoice %s not found", invoiceID)}
		}
		return nil, fmt.Errorf("failed to fetch invoice %s: %w", invoiceID, err)
	}
	inv.Status = InvoiceStatus(st)

	rows, err := s.pool.Query(ctx, `
		SELECT it.id, it.invoice_id, it.product_id, p.name, it.quantity,
		       it.unit_price, it.tax_rate, it.tax_amount, it.line_total, COALESCE(it.description, '')
		FROM invoice_items it
		JOIN products p ON p.id = it.product_id
		WHERE it.invoice_id = $1
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.TaxRate, &item.TaxAmount,
			&item.LineTotal, &item.Description); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		inv.Items = append(inv.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice items: %w", err)
	}

	payRows, err := s.pool.Query(ctx, `
		SELECT id, business_id, payment_number, payment_type, payment_method, amount,
		       to_char(payment_date, 'YYYY-MM-DD'), COALESCE(reference, ''), COALESCE(notes, ''), created_at
		FROM payments
		WHERE invoice_id = $1
		ORDER BY payment_date, created_at
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice payments: %w", err)
	}
	defer payRows.Close()

	for payRows.Next() {
		var p Payment
		if err := payRows.Scan(&p.ID, &p.BusinessID, &p.PaymentNumber, &p.PaymentType,
			&p.PaymentMethod, &p.Amount, &p.PaymentDate, &p.Reference, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice payment: %w", err)
		}
		p.InvoiceID = &inv.ID
		inv.Payments = append(inv.Payments, p)
	}
	if err := payRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice payments: %w", err)
	}
	return inv, nil
}

func (s *invoiceService) UpdateStatus(ctx context.Context, businessID, invoiceID string, newStatus InvoiceStatus) (*Invoice, error) {
	switch newStatus {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
	default:
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown invoice status %q", newStatus)}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current, dueDate string
	var total, paid decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT status, to_char(due_date, 'YYYY-MM-DD'), total_amount, paid_amount
		FROM invoices
		WHERE id = $1 AND business_id = $2
		FOR UPDATE
	`, invoiceID, businessID).Scan(&current, &dueDate, &total, &paid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Reason: fmt.Sprintf("invoice %s not found", invoiceID)}
		}
		return nil, fmt.Errorf("failed to fetch invoice %s: %w", invoiceID, err)
	}

	if InvoiceStatus(current) == InvoiceStatusPaid {
		return nil, &ConflictError{Reason: "a paid invoice cannot be modified"}
	}

	switch newStatus {
	case InvoiceStatusPaid:
		if paid.LessThan(total) {
			return nil, &ConflictError{Reason: "invoice is not fully paid"}
		}
		_, err = tx.Exec(ctx,
			"UPDATE invoices SET status = $1, balance = 0 WHERE id = $2",
			string(newStatus), invoiceID)
	case InvoiceStatusOverdue:
		if dueDate >= time.Now().Format("2006-01-02") {
			return nil, &ValidationError{Reason: "cannot mark a future-dated invoice as overdue"}
		}
		_, err = tx.Exec(ctx,
			"UPDATE invoices SET status = $1 WHERE id = $2", string(newStatus), invoiceID)
	default:
		_, err = tx.Exec(ctx,
			"UPDATE invoices SET status = $1 WHERE id = $2", string(newStatus), invoiceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}
	return s.Get(ctx, businessID, invoiceID)
}

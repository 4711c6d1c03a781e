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

const (
	PaymentTypeReceipt = "Receipt" // money in, from a customer
	PaymentTypePayment = "Payment" // money out, to a supplier
)

type PaymentInput struct {
	PaymentType       string
	PaymentMethod     string
	Amount            decimal.Decimal
	PaymentDate       string // YYYY-MM-DD, defaults to today
	Reference         string
	Notes             string
	CustomerID        *string
	SupplierID        *string
	InvoiceID         *string
	PurchaseInvoiceID *string
}

// PaymentService records numbered payments and applies them to invoices.
// Applying a payment locks the invoice, advances paid_amount and balance,
// and moves the status to Paid once the total is covered, all in one
// database transaction.
type PaymentService interface {
	Record(ctx context.Context, businessID string, input PaymentInput) (*Payment, error)
	List(ctx context.Context, businessID string) ([]Payment, error)
}

type paymentService struct {
	pool *pgxpool.Pool
}

func NewPaymentService(pool *pgxpool.Pool) PaymentService {
	return &paymentService{pool: pool}
}

func (in *PaymentInput) validate() error {
	switch in.PaymentType {
	case PaymentTypeReceipt, PaymentTypePayment:
	default:
		return &ValidationError{Reason: fmt.Sprintf("payment type must be %q or %q", PaymentTypeReceipt, PaymentTypePayment)}
	}
	if in.PaymentMethod == "" {
		return &ValidationError{Reason: "payment method is required"}
	}
	if !in.Amount.IsPositive() {
		return &ValidationError{Reason: "payment amount must be greater than zero"}
	}
	if in.PaymentDate != "" {
		if _, err := time.Parse("2006-01-02", in.PaymentDate); err != nil {
			return &ValidationError{Reason: fmt.Sprintf("invalid payment date %q, want YYYY-MM-DD", in.PaymentDate)}
		}
	}
	if in.InvoiceID != nil && in.PaymentType != PaymentTypeReceipt {
		return &ValidationError{Reason: "a payment applied to a sales invoice must be a Receipt"}
	}
	if in.PurchaseInvoiceID != nil && in.PaymentType != PaymentTypePayment {
		return &ValidationError{Reason: "a payment applied to a purchase invoice must be a Payment"}
	}
	return nil
}

// nextPaymentNumber returns the next PAY-%04d number for the business,
// taken over the numeric suffix inside the insert transaction.
func nextPaymentNumber(ctx context.Context, tx pgx.Tx, businessID string) (string, error) {
	var last int
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(substring(payment_number from 5)::int), 0)
		FROM payments
		WHERE business_id = $1
	`, businessID).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("failed to fetch last payment number: %w", err)
	}
	return fmt.Sprintf("PAY-%04d", last+1), nil
}

func (s *paymentService) Record(ctx context.Context, businessID string, input PaymentInput) (*Payment, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if input.PaymentDate == "" {
		input.PaymentDate = time.Now().Format("2006-01-02")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	number, err := nextPaymentNumber(ctx, tx, businessID)
	if err != nil {
		return nil, err
	}

	if input.InvoiceID != nil {
		if err := s.applyToInvoice(ctx, tx, businessID, *input.InvoiceID, input.Amount); err != nil {
			return nil, err
		}
	}
	if input.PurchaseInvoiceID != nil {
		if err := s.applyToPurchaseInvoice(ctx, tx, businessID, *input.PurchaseInvoiceID, input.Amount); err != nil {
			return nil, err
		}
	}

	p := &Payment{
		ID:                uuid.NewString(),
		BusinessID:        businessID,
		PaymentNumber:     number,
		PaymentType:       input.PaymentType,
		PaymentMethod:     input.PaymentMethod,
		Amount:            input.Amount,
		PaymentDate:       input.PaymentDate,
		Reference:         input.Reference,
		Notes:             input.Notes,
		CustomerID:        input.CustomerID,
		SupplierID:        input.SupplierID,
		InvoiceID:         input.InvoiceID,
		PurchaseInvoiceID: input.PurchaseInvoiceID,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO payments (id, business_id, payment_number, payment_type, payment_method, amount,
		                      payment_date, reference, notes, customer_id, supplier_id, invoice_id, purchase_invoice_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		RETURNING created_at
	`, p.ID, businessID, number, p.PaymentType, p.PaymentMethod, p.Amount,
		p.PaymentDate, p.Reference, p.Notes, p.CustomerID, p.SupplierID, p.InvoiceID, p.PurchaseInvoiceID,
	).Scan(&p.CreatedAt)
	if err != nil {
		if uniqueViolation(err) != nil {
			return nil, &ConflictError{Reason: fmt.Sprintf("payment number %s was taken by a concurrent create, retry", number)}
		}
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}
	return p, nil
}

// applyToInvoice advances the sales invoice's paid amount under a row
// lock. Once payments cover the total the invoice is Paid; a partial
// payment past the due date marks it Overdue.
func (s *paymentService) applyToInvoice(ctx context.Context, tx pgx.Tx, businessID, invoiceID string, amount decimal.Decimal) error {
	var status, dueDate string
	var total, paid decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT status, to_char(due_date, 'YYYY-MM-DD'), total_amount, paid_amount
		FROM invoices
		WHERE id = $1 AND business_id = $2
		FOR UPDATE
	`, invoiceID, businessID).Scan(&status, &dueDate, &total, &paid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Reason: fmt.Sprintf("invoice %s not found for this business", invoiceID)}
		}
		return fmt.Errorf("failed to lock invoice %s: %w", invoiceID, err)
	}
	if InvoiceStatus(status) == InvoiceStatusPaid {
		return &ConflictError{Reason: "invoice is already fully paid"}
	}
	if InvoiceStatus(status) == InvoiceStatusCancelled {
		return &ConflictError{Reason: "a cancelled invoice cannot receive payments"}
	}

	newPaid := paid.Add(amount)
	newBalance := total.Sub(newPaid)
	newStatus := status
	if newPaid.GreaterThanOrEqual(total) {
		newStatus = string(InvoiceStatusPaid)
	} else if dueDate < time.Now().Format("2006-01-02") {
		newStatus = string(InvoiceStatusOverdue)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE invoices SET paid_amount = $1, balance = $2, status = $3 WHERE id = $4
	`, newPaid, newBalance, newStatus, invoiceID); err != nil {
		return fmt.Errorf("failed to apply payment to invoice %s: %w", invoiceID, err)
	}
	return nil
}

// applyToPurchaseInvoice advances a supplier bill's paid amount. Only
// approved bills accept payments.
func (s *paymentService) applyToPurchaseInvoice(ctx context.Context, tx pgx.Tx, businessID, invoiceID string, amount decimal.Decimal) error {
	var status string
	var total, paid decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT status, total_amount, paid_amount
		FROM purchase_invoices
		WHERE id = $1 AND business_id = $2
		FOR UPDATE
	`, invoiceID, businessID).Scan(&status, &total, &paid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Reason: fmt.Sprintf("purchase invoice %s not found for this business", invoiceID)}
		}
		return fmt.Errorf("failed to lock purchase invoice %s: %w", invoiceID, err)
	}
	switch PurchaseInvoiceStatus(status) {
	case PurchaseStatusPaid:
		return &ConflictError{Reason: "purchase invoice is already fully paid"}
	case PurchaseStatusPending:
		return &ConflictError{Reason: "purchase invoice must be approved before payment"}
	}

	newPaid := paid.Add(amount)
	newBalance := total.Sub(newPaid)
	newStatus := status
	if newPaid.GreaterThanOrEqual(total) {
		newStatus = string(PurchaseStatusPaid)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE purchase_invoices SET paid_amount = $1, balance = $2, status = $3 WHERE id = $4
	`, newPaid, newBalance, newStatus, invoiceID); err != nil {
		return fmt.Errorf("failed to apply payment to purchase invoice %s: %w", invoiceID, err)
	}
	return nil
}

func (s *paymentService) List(ctx context.Context, businessID string) ([]Payment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.business_id, p.payment_number, p.payment_type, p.payment_method, p.amount,
		       to_char(p.payment_date, 'YYYY-MM-DD'), COALESCE(p.reference, ''), COALESCE(p.notes, ''),
		       p.customer_id, p.supplier_id, p.invoice_id, p.purchase_invoice_id,
		       COALESCE(c.name, sp.name, ''), p.created_at
		FROM payments p
		LEFT JOIN customers c ON c.id = p.customer_id
		LEFT JOIN suppliers sp ON sp.id = p.supplier_id
		WHERE p.business_id = $1
		ORDER BY p.created_at DESC
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.PaymentNumber, &p.PaymentType, &p.PaymentMethod,
			&p.Amount, &p.PaymentDate, &p.Reference, &p.Notes,
			&p.CustomerID, &p.SupplierID, &p.InvoiceID, &p.PurchaseInvoiceID,
			&p.PartyName, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return payments, nil
}

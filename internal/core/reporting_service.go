package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AgingLine is one customer's outstanding balance bucketed by how far
// past due it is. Current holds invoices not yet due.
type AgingLine struct {
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	TotalDue     decimal.Decimal `json:"total_due"`
	Current      decimal.Decimal `json:"current"`
	Days1To30    decimal.Decimal `json:"days_1_to_30"`
	Days31To60   decimal.Decimal `json:"days_31_to_60"`
	Days61Plus   decimal.Decimal `json:"days_61_plus"`
}

type ReceivablesSummary struct {
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	OverdueCount     int             `json:"overdue_count"`
	OverdueInvoices  []Invoice       `json:"overdue_invoices"`
}

type PayablesSummary struct {
	TotalOutstanding decimal.Decimal   `json:"total_outstanding"`
	OverdueCount     int               `json:"overdue_count"`
	OpenInvoices     []PurchaseInvoice `json:"open_invoices"`
}

// ReportingService aggregates open invoices into receivables and
// payables views. All amounts come from invoice balances, so the
// figures always match what the payment lifecycle has recorded.
type ReportingService interface {
	AgingReport(ctx context.Context, businessID string) ([]AgingLine, error)
	Receivables(ctx context.Context, businessID string) (*ReceivablesSummary, error)
	Payables(ctx context.Context, businessID string) (*PayablesSummary, error)
}

type reportingService struct {
	pool *pgxpool.Pool
}

func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

func (s *reportingService) AgingReport(ctx context.Context, businessID string) ([]AgingLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.name,
		       SUM(i.balance),
		       SUM(CASE WHEN CURRENT_DATE - i.due_date <= 0 THEN i.balance ELSE 0 END),
		       SUM(CASE WHEN CURRENT_DATE - i.due_date BETWEEN 1 AND 30 THEN i.balance ELSE 0 END),
		       SUM(CASE WHEN CURRENT_DATE - i.due_date BETWEEN 31 AND 60 THEN i.balance ELSE 0 END),
		       SUM(CASE WHEN CURRENT_DATE - i.due_date > 60 THEN i.balance ELSE 0 END)
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.business_id = $1
		  AND i.status NOT IN ($2, $3)
		  AND i.balance > 0
		GROUP BY c.id, c.name
		ORDER BY SUM(i.balance) DESC
	`, businessID, string(InvoiceStatusPaid), string(InvoiceStatusCancelled))
	if err != nil {
		return nil, fmt.Errorf("failed to query aging report: %w", err)
	}
	defer rows.Close()

	var lines []AgingLine
	for rows.Next() {
		var l AgingLine
		if err := rows.Scan(&l.CustomerID, &l.CustomerName, &l.TotalDue,
			&l.Current, &l.Days1To30, &l.Days31To60, &l.Days61Plus); err != nil {
			return nil, fmt.Errorf("failed to scan aging line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aging report: %w", err)
	}
	return lines, nil
}

func (s *reportingService) Receivables(ctx context.Context, businessID string) (*ReceivablesSummary, error) {
	summary := &ReceivablesSummary{TotalOutstanding: decimal.Zero}

	rows, err := s.pool.Query(ctx, `
		SELECT i.id, i.business_id, i.invoice_number, i.customer_id, c.name, i.status,
		       to_char(i.invoice_date, 'YYYY-MM-DD'), to_char(i.due_date, 'YYYY-MM-DD'),
		       i.subtotal, i.tax_amount, i.total_amount, i.paid_amount, i.balance,
		       COALESCE(i.notes, ''), i.created_at
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.business_id = $1
		  AND i.status NOT IN ($2, $3)
		  AND i.balance > 0
		ORDER BY i.due_date ASC
	`, businessID, string(InvoiceStatusPaid), string(InvoiceStatusCancelled))
	if err != nil {
		return nil, fmt.Errorf("failed to query receivables: %w", err)
	}
	defer rows.Close()

	today := time.Now().Format("2006-01-02")
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.BusinessID, &inv.InvoiceNumber, &inv.CustomerID, &inv.CustomerName,
			&inv.Status, &inv.InvoiceDate, &inv.DueDate,
			&inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount, &inv.PaidAmount, &inv.Balance,
			&inv.Notes, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receivable invoice: %w", err)
		}
		summary.TotalOutstanding = summary.TotalOutstanding.Add(inv.Balance)
		if inv.DueDate < today {
			summary.OverdueCount++
			summary.OverdueInvoices = append(summary.OverdueInvoices, inv)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receivables: %w", err)
	}
	return summary, nil
}

func (s *reportingService) Payables(ctx context.Context, businessID string) (*PayablesSummary, error) {
	summary := &PayablesSummary{TotalOutstanding: decimal.Zero}

	rows, err := s.pool.Query(ctx, `
		SELECT pi.id, pi.business_id, pi.invoice_number, pi.supplier_id, sp.name, pi.status,
		       to_char(pi.invoice_date, 'YYYY-MM-DD'), to_char(pi.due_date, 'YYYY-MM-DD'),
		       pi.subtotal, pi.tax_amount, pi.total_amount, pi.paid_amount, pi.balance,
		       pi.created_at
		FROM purchase_invoices pi
		JOIN suppliers sp ON sp.id = pi.supplier_id
		WHERE pi.business_id = $1
		  AND pi.status <> $2
		  AND pi.balance > 0
		ORDER BY pi.due_date ASC
	`, businessID, string(PurchaseStatusPaid))
	if err != nil {
		return nil, fmt.Errorf("failed to query payables: %w", err)
	}
	defer rows.Close()

	today := time.Now().Format("2006-01-02")
	for rows.Next() {
		var pi PurchaseInvoice
		if err := rows.Scan(&pi.ID, &pi.BusinessID, &pi.InvoiceNumber, &pi.SupplierID, &pi.SupplierName,
			&pi.Status, &pi.InvoiceDate, &pi.DueDate,
			&pi.Subtotal, &pi.TaxAmount, &pi.TotalAmount, &pi.PaidAmount, &pi.Balance,
			&pi.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payable invoice: %w", err)
		}
		summary.TotalOutstanding = summary.TotalOutstanding.Add(pi.Balance)
		if pi.DueDate < today {
			summary.OverdueCount++
		}
		summary.OpenInvoices = append(summary.OpenInvoices, pi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payables: %w", err)
	}
	return summary, nil
}

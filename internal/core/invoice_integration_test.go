package core_test

import (
	"context"
	"testing"

	"bizsense/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func seedProduct(t *testing.T, pool *pgxpool.Pool, id, businessID, sku string) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO products (id, business_id, name, sku, unit_price, cost_price, quantity)
		VALUES ($1, $2, $3, $4, 500, 350, 100)
	`, id, businessID, "Product "+sku, sku)
	if err != nil {
		t.Fatalf("Failed to seed product %s: %v", id, err)
	}
}

func seedInvoice(t *testing.T, svc core.InvoiceService, dueDate string) *core.Invoice {
	t.Helper()
	inv, err := svc.Create(context.Background(), "biz-a", core.InvoiceInput{
		CustomerID:  "cust-a",
		InvoiceDate: "2026-08-01",
		DueDate:     dueDate,
		Items: []core.InvoiceItemInput{
			{ProductID: "prod-1", Quantity: 2, UnitPrice: decimal.NewFromInt(500), TaxRate: decimal.NewFromInt(10)},
		},
	})
	if err != nil {
		t.Fatalf("Failed to create invoice: %v", err)
	}
	return inv
}

func TestInvoiceService_CreateComputesTotals(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	seedProduct(t, pool, "prod-1", "biz-a", "SOAP-01")
	seedProduct(t, pool, "prod-2", "biz-a", "SOAP-02")

	svc := core.NewInvoiceService(pool)
	ctx := context.Background()

	inv, err := svc.Create(ctx, "biz-a", core.InvoiceInput{
		CustomerID:  "cust-a",
		InvoiceDate: "2026-08-01",
		DueDate:     "2026-09-01",
		Items: []core.InvoiceItemInput{
			{ProductID: "prod-1", Quantity: 3, UnitPrice: decimal.NewFromInt(1000), TaxRate: decimal.NewFromInt(19)},
			{ProductID: "prod-2", Quantity: 1, UnitPrice: decimal.NewFromInt(400)},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if inv.InvoiceNumber != "INV-00001" {
		t.Errorf("invoice number = %s, want INV-00001", inv.InvoiceNumber)
	}
	if !inv.Subtotal.Equal(decimal.NewFromInt(3400)) {
		t.Errorf("subtotal = %s, want 3400", inv.Subtotal)
	}
	if !inv.TaxAmount.Equal(decimal.NewFromInt(570)) {
		t.Errorf("tax = %s, want 570", inv.TaxAmount)
	}
	if !inv.TotalAmount.Equal(decimal.NewFromInt(3970)) {
		t.Errorf("total = %s, want 3970", inv.TotalAmount)
	}
	if !inv.Balance.Equal(inv.TotalAmount) {
		t.Errorf("balance = %s, want the full total before any payment", inv.Balance)
	}
	if inv.Status != core.InvoiceStatusDraft {
		t.Errorf("status = %s, want Draft", inv.Status)
	}

	second := seedInvoice(t, svc, "2026-09-01")
	if second.InvoiceNumber != "INV-00002" {
		t.Errorf("second invoice number = %s, want INV-00002", second.InvoiceNumber)
	}

	fetched, err := svc.Get(ctx, "biz-a", inv.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(fetched.Items) != 2 {
		t.Fatalf("Get returned %d items, want 2", len(fetched.Items))
	}
	if fetched.CustomerName != "Hotel Akwa" {
		t.Errorf("customer name = %s, want Hotel Akwa", fetched.CustomerName)
	}
}

func TestInvoiceService_ForeignCustomerAndProduct(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	seedProduct(t, pool, "prod-1", "biz-a", "SOAP-01")
	seedProduct(t, pool, "prod-b", "biz-b", "SOAP-B")

	svc := core.NewInvoiceService(pool)
	ctx := context.Background()

	// cust-b belongs to biz-b.
	_, err := svc.Create(ctx, "biz-a", core.InvoiceInput{
		CustomerID:  "cust-b",
		InvoiceDate: "2026-08-01",
		DueDate:     "2026-09-01",
		Items: []core.InvoiceItemInput{
			{ProductID: "prod-1", Quantity: 1, UnitPrice: decimal.NewFromInt(500)},
		},
	})
	if !core.IsNotFound(err) {
		t.Errorf("foreign customer: expected NotFoundError, got %T: %v", err, err)
	}

	_, err = svc.Create(ctx, "biz-a", core.InvoiceInput{
		CustomerID:  "cust-a",
		InvoiceDate: "2026-08-01",
		DueDate:     "2026-09-01",
		Items: []core.InvoiceItemInput{
			{ProductID: "prod-b", Quantity: 1, UnitPrice: decimal.NewFromInt(500)},
		},
	})
	if !core.IsNotFound(err) {
		t.Errorf("foreign product: expected NotFoundError, got %T: %v", err, err)
	}
	if n := countRows(t, pool, "invoices"); n != 0 {
		t.Errorf("invoices has %d rows, want 0 after rollback", n)
	}
}

func TestPaymentService_InvoiceLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	seedProduct(t, pool, "prod-1", "biz-a", "SOAP-01")

	invoices := core.NewInvoiceService(pool)
	payments := core.NewPaymentService(pool)
	ctx := context.Background()

	inv := seedInvoice(t, invoices, "2099-01-01") // total 1100: 2 x 500 + 10% tax
	customerID := inv.CustomerID

	partial, err := payments.Record(ctx, "biz-a", core.PaymentInput{
		PaymentType:   core.PaymentTypeReceipt,
		PaymentMethod: "CASH",
		Amount:        decimal.NewFromInt(600),
		CustomerID:    &customerID,
		InvoiceID:     &inv.ID,
	})
	if err != nil {
		t.Fatalf("Partial payment failed: %v", err)
	}
	if partial.PaymentNumber != "PAY-0001" {
		t.Errorf("payment number = %s, want PAY-0001", partial.PaymentNumber)
	}

	after, err := invoices.Get(ctx, "biz-a", inv.ID)
	if err != nil {
		t.Fatalf("Get after partial payment failed: %v", err)
	}
	if !after.PaidAmount.Equal(decimal.NewFromInt(600)) || !after.Balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("paid/balance = %s/%s, want 600/500", after.PaidAmount, after.Balance)
	}
	if after.Status == core.InvoiceStatusPaid {
		t.Error("partially paid invoice must not be Paid")
	}

	if _, err := payments.Record(ctx, "biz-a", core.PaymentInput{
		PaymentType:   core.PaymentTypeReceipt,
		PaymentMethod: "MOBILE_MONEY",
		Amount:        decimal.NewFromInt(500),
		InvoiceID:     &inv.ID,
	}); err != nil {
		t.Fatalf("Settling payment failed: %v", err)
	}

	settled, err := invoices.Get(ctx, "biz-a", inv.ID)
	if err != nil {
		t.Fatalf("Get after settlement failed: %v", err)
	}
	if settled.Status != core.InvoiceStatusPaid {
		t.Errorf("status = %s, want Paid", settled.Status)
	}
	if !settled.Balance.IsZero() {
		t.Errorf("balance = %s, want 0", settled.Balance)
	}
	if len(settled.Payments) != 2 {
		t.Errorf("invoice carries %d payments, want 2", len(settled.Payments))
	}

	// A settled invoice refuses further payments.
	_, err = payments.Record(ctx, "biz-a", core.PaymentInput{
		PaymentType:   core.PaymentTypeReceipt,
		PaymentMethod: "CASH",
		Amount:        decimal.NewFromInt(50),
		InvoiceID:     &inv.ID,
	})
	if !core.IsConflict(err) {
		t.Errorf("expected ConflictError paying a Paid invoice, got %T: %v", err, err)
	}
}

func TestInvoiceService_StatusGuards(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	seedProduct(t, pool, "prod-1", "biz-a", "SOAP-01")

	invoices := core.NewInvoiceService(pool)
	payments := core.NewPaymentService(pool)
	ctx := context.Background()

	inv := seedInvoice(t, invoices, "2099-01-01")

	// Unpaid invoices cannot be marked Paid by hand.
	if _, err := invoices.UpdateStatus(ctx, "biz-a", inv.ID, core.InvoiceStatusPaid); !core.IsConflict(err) {
		t.Errorf("expected ConflictError marking an unpaid invoice Paid, got %T: %v", err, err)
	}

	// A future-dated invoice cannot be marked Overdue.
	if _, err := invoices.UpdateStatus(ctx, "biz-a", inv.ID, core.InvoiceStatusOverdue); !core.IsValidation(err) {
		t.Errorf("expected ValidationError marking a future invoice Overdue, got %T: %v", err, err)
	}

	sent, err := invoices.UpdateStatus(ctx, "biz-a", inv.ID, core.InvoiceStatusSent)
	if err != nil {
		t.Fatalf("Marking Sent failed: %v", err)
	}
	if sent.Status != core.InvoiceStatusSent {
		t.Errorf("status = %s, want Sent", sent.Status)
	}

	if _, err := payments.Record(ctx, "biz-a", core.PaymentInput{
		PaymentType:   core.PaymentTypeReceipt,
		PaymentMethod: "CASH",
		Amount:        decimal.NewFromInt(1100),
		InvoiceID:     &inv.ID,
	}); err != nil {
		t.Fatalf("Settling payment failed: %v", err)
	}

	// Paid invoices are immutable.
	if _, err := invoices.UpdateStatus(ctx, "biz-a", inv.ID, core.InvoiceStatusCancelled); !core.IsConflict(err) {
		t.Errorf("expected ConflictError modifying a Paid invoice, got %T: %v", err, err)
	}
}

func TestPurchaseInvoiceService_ApproveAndPay(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	seedProduct(t, pool, "prod-1", "biz-a", "SOAP-01")

	purchases := core.NewPurchaseInvoiceService(pool)
	payments := core.NewPaymentService(pool)
	ctx := context.Background()

	bill, err := purchases.Create(ctx, "biz-a", core.PurchaseInvoiceInput{
		SupplierID:  "supp-a",
		InvoiceDate: "2026-08-01",
		DueDate:     "2026-09-01",
		Items: []core.PurchaseItemInput{
			{ProductID: "prod-1", Quantity: 10, UnitCost: decimal.NewFromInt(350)},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if bill.InvoiceNumber != "PINV-00001" {
		t.Errorf("invoice number = %s, want PINV-00001", bill.InvoiceNumber)
	}
	if bill.Status != core.PurchaseStatusPending {
		t.Errorf("status = %s, want Pending", bill.Status)
	}

	// A Pending bill cannot be paid.
	_, err = payments.Record(ctx, "biz-a", core.PaymentInput{
		PaymentType:       core.PaymentTypePayment,
		PaymentMethod:     "BANK",
		Amount:            decimal.NewFromInt(3500),
		PurchaseInvoiceID: &bill.ID,
	})
	if !core.IsConflict(err) {
		t.Errorf("expected ConflictError paying a Pending bill, got %T: %v", err, err)
	}

	approved, err := purchases.Approve(ctx, "biz-a", bill.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.Status != core.PurchaseStatusApproved {
		t.Errorf("status = %s, want Approved", approved.Status)
	}

	if _, err := purchases.Approve(ctx, "biz-a", bill.ID); !core.IsConflict(err) {
		t.Errorf("expected ConflictError on double approval, got %T: %v", err, err)
	}

	if _, err := payments.Record(ctx, "biz-a", core.PaymentInput{
		PaymentType:       core.PaymentTypePayment,
		PaymentMethod:     "BANK",
		Amount:            decimal.NewFromInt(3500),
		SupplierID:        &bill.SupplierID,
		PurchaseInvoiceID: &bill.ID,
	}); err != nil {
		t.Fatalf("Settling payment failed: %v", err)
	}

	paid, err := purchases.Get(ctx, "biz-a", bill.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if paid.Status != core.PurchaseStatusPaid {
		t.Errorf("status = %s, want Paid", paid.Status)
	}
	if !paid.Balance.IsZero() {
		t.Errorf("balance = %s, want 0", paid.Balance)
	}
}

func TestPaymentService_TypeMustMatchDocument(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	payments := core.NewPaymentService(pool)
	ctx := context.Background()

	someID := "inv-x"
	_, err := payments.Record(ctx, "biz-a", core.PaymentInput{
		PaymentType:   core.PaymentTypePayment,
		PaymentMethod: "CASH",
		Amount:        decimal.NewFromInt(100),
		InvoiceID:     &someID,
	})
	if !core.IsValidation(err) {
		t.Errorf("expected ValidationError for Payment against a sales invoice, got %T: %v", err, err)
	}

	_, err = payments.Record(ctx, "biz-a", core.PaymentInput{
		PaymentType:   "Refund",
		PaymentMethod: "CASH",
		Amount:        decimal.NewFromInt(100),
	})
	if !core.IsValidation(err) {
		t.Errorf("expected ValidationError for unknown payment type, got %T: %v", err, err)
	}

	_, err = payments.Record(ctx, "biz-a", core.PaymentInput{
		PaymentType:   core.PaymentTypeReceipt,
		PaymentMethod: "CASH",
		Amount:        decimal.Zero,
	})
	if !core.IsValidation(err) {
		t.Errorf("expected ValidationError for zero amount, got %T: %v", err, err)
	}
}

package core_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and seed test DB
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE payments, purchase_invoice_items, purchase_invoices, invoice_items, invoices,
			suppliers, customers, ai_predictions, ai_models, stock_counts, products, product_categories,
			journal_entry_lines, journal_entries, account_transactions, transactions,
			financial_accounts, categories, users, businesses CASCADE;

		INSERT INTO businesses (id, name, currency) VALUES
		('biz-a', 'Mama Ngozi Provisions', 'XAF'),
		('biz-b', 'Douala Tailoring', 'XAF');

		INSERT INTO financial_accounts (id, business_id, name, type, balance) VALUES
		('acct-cash', 'biz-a', 'Cash Box', 'CASH', 0),
		('acct-momo', 'biz-a', 'Mobile Money', 'MOBILE_MONEY', 0),
		('acct-other', 'biz-b', 'Cash Box', 'CASH', 0);

		INSERT INTO customers (id, business_id, name) VALUES
		('cust-a', 'biz-a', 'Hotel Akwa'),
		('cust-b', 'biz-b', 'Bonanjo Cafe');

		INSERT INTO suppliers (id, business_id, name) VALUES
		('supp-a', 'biz-a', 'Marche Central Wholesale');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func fetchBalance(t *testing.T, pool *pgxpool.Pool, accountID string) decimal.Decimal {
	t.Helper()
	var balance decimal.Decimal
	err := pool.QueryRow(context.Background(),
		"SELECT balance FROM financial_accounts WHERE id = $1", accountID,
	).Scan(&balance)
	if err != nil {
		t.Fatalf("Failed to fetch balance for %s: %v", accountID, err)
	}
	return balance
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	err := pool.QueryRow(context.Background(), "SELECT count(*) FROM "+table).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return n
}

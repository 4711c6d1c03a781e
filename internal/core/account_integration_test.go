package core_test

import (
	"context"
	"sync"
	"testing"

	"bizsense/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func countDefaults(t *testing.T, pool *pgxpool.Pool, businessID string) int {
	t.Helper()
	var n int
	err := pool.QueryRow(context.Background(),
		"SELECT count(*) FROM financial_accounts WHERE business_id = $1 AND is_default", businessID,
	).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count defaults: %v", err)
	}
	return n
}

func TestAccountService_DefaultExclusivity(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewAccountService(pool)
	ctx := context.Background()

	first, err := svc.Create(ctx, "biz-a", core.AccountInput{
		Name:      "Savings",
		Type:      "BANK",
		Balance:   decimal.NewFromInt(5000),
		IsDefault: true,
	})
	if err != nil {
		t.Fatalf("Failed to create first account: %v", err)
	}

	// Creating a second default must demote the first in the same transaction.
	second, err := svc.Create(ctx, "biz-a", core.AccountInput{
		Name:      "Checking",
		Type:      "BANK",
		IsDefault: true,
	})
	if err != nil {
		t.Fatalf("Failed to create second account: %v", err)
	}
	if n := countDefaults(t, pool, "biz-a"); n != 1 {
		t.Fatalf("business has %d default accounts, want 1", n)
	}

	demoted, err := svc.Get(ctx, "biz-a", first.ID)
	if err != nil {
		t.Fatalf("Failed to fetch first account: %v", err)
	}
	if demoted.IsDefault {
		t.Error("first account should have been demoted")
	}

	// Toggling the default back is also exclusive.
	toggled, err := svc.SetDefault(ctx, "biz-a", first.ID)
	if err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if !toggled.IsDefault {
		t.Error("SetDefault should return the account marked default")
	}
	if n := countDefaults(t, pool, "biz-a"); n != 1 {
		t.Fatalf("business has %d default accounts after toggle, want 1", n)
	}

	current, err := svc.Get(ctx, "biz-a", second.ID)
	if err != nil {
		t.Fatalf("Failed to fetch second account: %v", err)
	}
	if current.IsDefault {
		t.Error("second account should have been demoted by the toggle")
	}
}

func TestAccountService_SetDefaultUnknownAccount(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewAccountService(pool)

	_, err := svc.SetDefault(context.Background(), "biz-a", "acct-ghost")
	if err == nil {
		t.Fatal("expected SetDefault on unknown account to fail")
	}
	if !core.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestAccountService_SetDefaultForeignAccount(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewAccountService(pool)

	// acct-other belongs to biz-b; biz-a cannot claim it as default.
	_, err := svc.SetDefault(context.Background(), "biz-a", "acct-other")
	if err == nil {
		t.Fatal("expected cross-business SetDefault to fail")
	}
	if !core.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestAccountService_DuplicateName(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewAccountService(pool)
	ctx := context.Background()

	// "Cash Box" is seeded for biz-a.
	_, err := svc.Create(ctx, "biz-a", core.AccountInput{Name: "Cash Box", Type: "CASH"})
	if err == nil {
		t.Fatal("expected duplicate account name to be rejected")
	}
	if !core.IsConflict(err) {
		t.Errorf("expected ConflictError, got %T: %v", err, err)
	}

	// The same name is fine for a different business.
	if _, err := svc.Create(ctx, "biz-b", core.AccountInput{Name: "Savings", Type: "BANK"}); err != nil {
		t.Fatalf("Failed to create account for biz-b: %v", err)
	}
}

func TestAccountService_ConcurrentSetDefault(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewAccountService(pool)
	ctx := context.Background()

	// Racing toggles may trip the partial unique index after both clear the
	// old default; the loser must get a retriable conflict, not a raw store
	// error, and exactly one default must survive.
	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			accountID := "acct-cash"
			if i%2 == 1 {
				accountID = "acct-momo"
			}
			_, errs[i] = svc.SetDefault(ctx, "biz-a", accountID)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil && !core.IsConflict(err) {
			t.Errorf("goroutine %d: expected nil or ConflictError, got %T: %v", i, err, err)
		}
	}
	if n := countDefaults(t, pool, "biz-a"); n != 1 {
		t.Fatalf("business has %d default accounts after racing toggles, want 1", n)
	}
}

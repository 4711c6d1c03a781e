package core_test

import (
	"context"
	"sync"
	"testing"

	"bizsense/internal/core"

	"github.com/shopspring/decimal"
)

func TestPoster_SignCorrectness(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	poster := core.NewTransactionPoster(pool, core.DefaultKinds())
	ctx := context.Background()

	_, err := poster.Post(ctx, "biz-a", core.PostingInput{
		Kind:       core.KindSale,
		Amount:     decimal.NewFromInt(1000),
		OccurredOn: "2026-08-01",
		Allocations: []core.AccountAllocation{
			{AccountID: "acct-cash", Amount: decimal.NewFromInt(1000)},
		},
	})
	if err != nil {
		t.Fatalf("Failed to post sale: %v", err)
	}

	_, err = poster.Post(ctx, "biz-a", core.PostingInput{
		Kind:       core.KindExpense,
		Amount:     decimal.NewFromInt(500),
		OccurredOn: "2026-08-02",
		Allocations: []core.AccountAllocation{
			{AccountID: "acct-cash", Amount: decimal.NewFromInt(500)},
		},
	})
	if err != nil {
		t.Fatalf("Failed to post expense: %v", err)
	}

	balance := fetchBalance(t, pool, "acct-cash")
	if !balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("balance = %s, want 500 after +1000 sale and -500 expense", balance)
	}
}

func TestPoster_Transfer(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	poster := core.NewTransactionPoster(pool, core.DefaultKinds())
	ctx := context.Background()

	txn, err := poster.Post(ctx, "biz-a", core.PostingInput{
		Kind:       core.KindTransfer,
		Amount:     decimal.NewFromInt(300),
		OccurredOn: "2026-08-03",
		Allocations: []core.AccountAllocation{
			{AccountID: "acct-cash", Amount: decimal.NewFromInt(300), IsTransferSource: true},
			{AccountID: "acct-momo", Amount: decimal.NewFromInt(300), IsTransferDestination: true},
		},
	})
	if err != nil {
		t.Fatalf("Failed to post transfer: %v", err)
	}
	if len(txn.Allocations) != 2 {
		t.Fatalf("transfer stored %d allocations, want 2", len(txn.Allocations))
	}

	if got := fetchBalance(t, pool, "acct-cash"); !got.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("source balance = %s, want -300", got)
	}
	if got := fetchBalance(t, pool, "acct-momo"); !got.Equal(decimal.NewFromInt(300)) {
		t.Errorf("destination balance = %s, want 300", got)
	}
}

func TestPoster_AtomicityOnBadAccount(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	poster := core.NewTransactionPoster(pool, core.DefaultKinds())
	ctx := context.Background()

	// Second allocation targets an account that does not exist. The whole
	// posting must roll back, including the first allocation's balance update.
	_, err := poster.Post(ctx, "biz-a", core.PostingInput{
		Kind:       core.KindSale,
		Amount:     decimal.NewFromInt(800),
		OccurredOn: "2026-08-04",
		Allocations: []core.AccountAllocation{
			{AccountID: "acct-cash", Amount: decimal.NewFromInt(400)},
			{AccountID: "acct-ghost", Amount: decimal.NewFromInt(400)},
		},
	})
	if err == nil {
		t.Fatal("expected posting to fail on missing account")
	}
	if !core.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %T: %v", err, err)
	}

	if got := fetchBalance(t, pool, "acct-cash"); !got.IsZero() {
		t.Errorf("balance = %s, want 0 after rollback", got)
	}
	if n := countRows(t, pool, "transactions"); n != 0 {
		t.Errorf("transactions table has %d rows, want 0", n)
	}
	if n := countRows(t, pool, "account_transactions"); n != 0 {
		t.Errorf("account_transactions table has %d rows, want 0", n)
	}
}

func TestPoster_TenantIsolation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	poster := core.NewTransactionPoster(pool, core.DefaultKinds())
	ctx := context.Background()

	// acct-other belongs to biz-b. From biz-a's perspective it must be
	// indistinguishable from a nonexistent account.
	_, err := poster.Post(ctx, "biz-a", core.PostingInput{
		Kind:       core.KindSale,
		Amount:     decimal.NewFromInt(100),
		OccurredOn: "2026-08-05",
		Allocations: []core.AccountAllocation{
			{AccountID: "acct-other", Amount: decimal.NewFromInt(100)},
		},
	})
	if err == nil {
		t.Fatal("expected cross-business posting to fail")
	}
	if !core.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %T: %v", err, err)
	}

	if got := fetchBalance(t, pool, "acct-other"); !got.IsZero() {
		t.Errorf("foreign account balance = %s, want 0", got)
	}
}

func TestPoster_NoBusinessResolved(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	poster := core.NewTransactionPoster(pool, core.DefaultKinds())

	_, err := poster.Post(context.Background(), "", validPostingInput())
	if err == nil {
		t.Fatal("expected posting without a business to fail")
	}
	if !core.IsAuthorization(err) {
		t.Errorf("expected AuthorizationError, got %T: %v", err, err)
	}
}

func TestPoster_ValidationWritesNothing(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	poster := core.NewTransactionPoster(pool, core.DefaultKinds())
	ctx := context.Background()

	_, err := poster.Post(ctx, "biz-a", core.PostingInput{
		Kind:       "MYSTERY_INCOME",
		Amount:     decimal.NewFromInt(100),
		OccurredOn: "2026-08-06",
		Allocations: []core.AccountAllocation{
			{AccountID: "acct-cash", Amount: decimal.NewFromInt(100)},
		},
	})
	if err == nil {
		t.Fatal("expected unknown kind to be rejected")
	}
	if !core.IsValidation(err) {
		t.Errorf("expected ValidationError, got %T: %v", err, err)
	}
	if n := countRows(t, pool, "transactions"); n != 0 {
		t.Errorf("transactions table has %d rows, want 0", n)
	}
}

func TestPoster_ConcurrentPostingsCommute(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	poster := core.NewTransactionPoster(pool, core.DefaultKinds())
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := poster.Post(ctx, "biz-a", core.PostingInput{
				Kind:       core.KindSale,
				Amount:     decimal.NewFromInt(10),
				OccurredOn: "2026-08-07",
				Allocations: []core.AccountAllocation{
					{AccountID: "acct-cash", Amount: decimal.NewFromInt(10)},
				},
			})
			errs <- err

			_, err = poster.Post(ctx, "biz-a", core.PostingInput{
				Kind:       core.KindExpense,
				Amount:     decimal.NewFromInt(3),
				OccurredOn: "2026-08-07",
				Allocations: []core.AccountAllocation{
					{AccountID: "acct-cash", Amount: decimal.NewFromInt(3)},
				},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent posting failed: %v", err)
		}
	}

	// 10 * (+10 - 3) regardless of interleaving.
	want := decimal.NewFromInt(workers * 7)
	if got := fetchBalance(t, pool, "acct-cash"); !got.Equal(want) {
		t.Errorf("balance = %s, want %s", got, want)
	}
}

func TestPoster_List(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	poster := core.NewTransactionPoster(pool, core.DefaultKinds())
	ctx := context.Background()

	for _, day := range []string{"2026-08-01", "2026-08-02", "2026-08-03"} {
		if _, err := poster.Post(ctx, "biz-a", core.PostingInput{
			Kind:       core.KindSale,
			Amount:     decimal.NewFromInt(50),
			OccurredOn: day,
			Allocations: []core.AccountAllocation{
				{AccountID: "acct-cash", Amount: decimal.NewFromInt(50)},
			},
		}); err != nil {
			t.Fatalf("Failed to post sale on %s: %v", day, err)
		}
	}

	txns, err := poster.List(ctx, "biz-a", 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("List returned %d transactions, want 2", len(txns))
	}
	if txns[0].OccurredOn != "2026-08-03" {
		t.Errorf("newest transaction date = %s, want 2026-08-03", txns[0].OccurredOn)
	}
	if len(txns[0].Allocations) != 1 {
		t.Errorf("transaction has %d allocations, want 1", len(txns[0].Allocations))
	}

	// Other businesses see nothing.
	other, err := poster.List(ctx, "biz-b", 0)
	if err != nil {
		t.Fatalf("List for biz-b failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("biz-b sees %d transactions, want 0", len(other))
	}
}

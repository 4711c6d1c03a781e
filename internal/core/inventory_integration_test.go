package core_test

import (
	"context"
	"sync"
	"testing"

	"bizsense/internal/core"

	"github.com/shopspring/decimal"
)

func TestInventoryService_PhysicalCount(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewInventoryService(pool)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, "biz-a", core.ProductInput{
		Name:      "Palm Oil 1L",
		SKU:       "OIL-1L",
		UnitPrice: decimal.NewFromInt(1200),
		CostPrice: decimal.NewFromInt(900),
		Quantity:  40,
	})
	if err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	count, err := svc.RecordPhysicalCount(ctx, "biz-a", product.ID, core.PhysicalCountInput{
		CountedQty: 37,
		CountedOn:  "2026-08-15",
		Note:       "monthly shelf count",
	})
	if err != nil {
		t.Fatalf("RecordPhysicalCount failed: %v", err)
	}

	if count.RecordedQty != 40 {
		t.Errorf("recorded qty = %d, want 40", count.RecordedQty)
	}
	if count.Variance != -3 {
		t.Errorf("variance = %d, want -3", count.Variance)
	}

	// The product quantity resets to the counted value.
	products, err := svc.ListProducts(ctx, "biz-a")
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 1 || products[0].Quantity != 37 {
		t.Errorf("product quantity after count = %d, want 37", products[0].Quantity)
	}

	counts, err := svc.ListCounts(ctx, "biz-a", product.ID)
	if err != nil {
		t.Fatalf("ListCounts failed: %v", err)
	}
	if len(counts) != 1 || counts[0].CountedQty != 37 {
		t.Fatalf("count history not recorded as expected: %+v", counts)
	}
}

func TestInventoryService_CountOnForeignProduct(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewInventoryService(pool)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, "biz-b", core.ProductInput{
		Name: "Fabric Roll", SKU: "FAB-01", Quantity: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	_, err = svc.RecordPhysicalCount(ctx, "biz-a", product.ID, core.PhysicalCountInput{
		CountedQty: 4,
		CountedOn:  "2026-08-15",
	})
	if err == nil {
		t.Fatal("expected count against another business's product to fail")
	}
	if !core.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestInventoryService_DuplicateSKU(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewInventoryService(pool)
	ctx := context.Background()

	if _, err := svc.CreateProduct(ctx, "biz-a", core.ProductInput{Name: "Soap", SKU: "SOAP-01"}); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	_, err := svc.CreateProduct(ctx, "biz-a", core.ProductInput{Name: "Soap Large", SKU: "SOAP-01"})
	if err == nil {
		t.Fatal("expected duplicate SKU to be rejected")
	}
	if !core.IsConflict(err) {
		t.Errorf("expected ConflictError, got %T: %v", err, err)
	}

	// Same SKU is allowed for another business.
	if _, err := svc.CreateProduct(ctx, "biz-b", core.ProductInput{Name: "Soap", SKU: "SOAP-01"}); err != nil {
		t.Fatalf("Failed to create product for biz-b: %v", err)
	}
}

func TestInventoryService_ConcurrentDuplicateSKU(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewInventoryService(pool)
	ctx := context.Background()

	// Simultaneous creates with the same SKU race past the existence check;
	// the store's unique constraint catches them and every loser must see a
	// conflict, not a generic failure.
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateProduct(ctx, "biz-a", core.ProductInput{
				Name:      "Rice 25kg",
				SKU:       "RICE-25",
				UnitPrice: decimal.NewFromInt(18000),
			})
		}(i)
	}
	wg.Wait()

	var succeeded int
	for i, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !core.IsConflict(err):
			t.Errorf("goroutine %d: expected ConflictError, got %T: %v", i, err, err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d creates succeeded, want exactly 1", succeeded)
	}
	if n := countRows(t, pool, "products"); n != 1 {
		t.Errorf("products has %d rows, want 1", n)
	}
}

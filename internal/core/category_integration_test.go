package core_test

import (
	"context"
	"testing"

	"bizsense/internal/core"
)

func TestCategoryService_CreateAndList(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewCategoryService(pool)
	ctx := context.Background()

	created, err := svc.Create(ctx, "biz-a", "Transport", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Kind != "EXPENSE" {
		t.Errorf("kind = %s, want default EXPENSE", created.Kind)
	}

	if _, err := svc.Create(ctx, "biz-a", "Sales", "INCOME"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Duplicate names collide within a business.
	_, err = svc.Create(ctx, "biz-a", "Transport", "")
	if err == nil {
		t.Fatal("expected duplicate category to be rejected")
	}
	if !core.IsConflict(err) {
		t.Errorf("expected ConflictError, got %T: %v", err, err)
	}

	categories, err := svc.List(ctx, "biz-a")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(categories) != 2 {
		t.Errorf("List returned %d categories, want 2", len(categories))
	}

	// Another business has its own namespace.
	if _, err := svc.Create(ctx, "biz-b", "Transport", ""); err != nil {
		t.Fatalf("Create for biz-b failed: %v", err)
	}
}

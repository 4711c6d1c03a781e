package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "products_business_id_sku_key"}

	if got := uniqueViolation(dup); got == nil {
		t.Error("expected a direct 23505 error to match")
	}
	wrapped := fmt.Errorf("failed to insert product: %w", dup)
	if got := uniqueViolation(wrapped); got == nil {
		t.Error("expected a wrapped 23505 error to match")
	} else if got.ConstraintName != "products_business_id_sku_key" {
		t.Errorf("constraint = %s, want products_business_id_sku_key", got.ConstraintName)
	}

	if got := uniqueViolation(&pgconn.PgError{Code: "23503"}); got != nil {
		t.Error("a foreign key violation must not match")
	}
	if got := uniqueViolation(errors.New("connection reset")); got != nil {
		t.Error("a plain error must not match")
	}
	if got := uniqueViolation(nil); got != nil {
		t.Error("nil must not match")
	}
}

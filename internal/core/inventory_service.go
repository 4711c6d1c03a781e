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

type ProductInput struct {
	Name       string
	SKU        string
	CategoryID *string
	UnitPrice  decimal.Decimal
	CostPrice  decimal.Decimal
	Quantity   int
}

type PhysicalCountInput struct {
	CountedQty int
	CountedOn  string
	Note       string
}

// InventoryService manages products and physical stock counts. A count
// snapshots the recorded quantity, stores the variance, and resets the
// product's quantity to what was actually counted, all in one database
// transaction.
type InventoryService interface {
	ListProducts(ctx context.Context, businessID string) ([]Product, error)
	CreateProduct(ctx context.Context, businessID string, input ProductInput) (*Product, error)
	RecordPhysicalCount(ctx context.Context, businessID, productID string, input PhysicalCountInput) (*StockCount, error)
	ListCounts(ctx context.Context, businessID, productID string) ([]StockCount, error)
}

type inventoryService struct {
	pool *pgxpool.Pool
}

func NewInventoryService(pool *pgxpool.Pool) InventoryService {
	return &inventoryService{pool: pool}
}

func (s *inventoryService) ListProducts(ctx context.Context, businessID string) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, business_id, category_id, name, sku, unit_price, cost_price, quantity, created_at
		FROM products
		WHERE business_id = $1
		ORDER BY name
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.CategoryID, &p.Name, &p.SKU,
			&p.UnitPrice, &p.CostPrice, &p.Quantity, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

func (s *inventoryService) CreateProduct(ctx context.Context, businessID string, input ProductInput) (*Product, error) {
	if input.Name == "" {
		return nil, &ValidationError{Reason: "product name is required"}
	}
	if input.SKU == "" {
		return nil, &ValidationError{Reason: "product sku is required"}
	}
	if input.Quantity < 0 {
		return nil, &ValidationError{Reason: "product quantity cannot be negative"}
	}

	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM products WHERE business_id = $1 AND sku = $2)",
		businessID, input.SKU,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check product sku: %w", err)
	}
	if exists {
		return nil, &ConflictError{Reason: fmt.Sprintf("product with sku %q already exists", input.SKU)}
	}

	p := &Product{
		ID:         uuid.NewString(),
		BusinessID: businessID,
		CategoryID: input.CategoryID,
		Name:       input.Name,
		SKU:        input.SKU,
		UnitPrice:  input.UnitPrice,
		CostPrice:  input.CostPrice,
		Quantity:   input.Quantity,
	}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO products (id, business_id, category_id, name, sku, unit_price, cost_price, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`, p.ID, businessID, p.CategoryID, p.Name, p.SKU, p.UnitPrice, p.CostPrice, p.Quantity).Scan(&p.CreatedAt)
	if err != nil {
		if uniqueViolation(err) != nil {
			return nil, &ConflictError{Reason: fmt.Sprintf("product with sku %q already exists", input.SKU)}
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	return p, nil
}

func (s *inventoryService) RecordPhysicalCount(ctx context.Context, businessID, productID string, input PhysicalCountInput) (*StockCount, error) {
	if input.CountedQty < 0 {
		return nil, &ValidationError{Reason: "counted quantity cannot be negative"}
	}
	if input.CountedOn == "" {
		return nil, &ValidationError{Reason: "count date is required"}
	}
	if _, err := time.Parse("2006-01-02", input.CountedOn); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("invalid count date %q, want YYYY-MM-DD", input.CountedOn)}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var recorded int
	err = tx.QueryRow(ctx,
		"SELECT quantity FROM products WHERE id = $1 AND business_id = $2 FOR UPDATE",
		productID, businessID,
	).Scan(&recorded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Reason: fmt.Sprintf("product %s not found for this business", productID)}
		}
		return nil, fmt.Errorf("failed to fetch product %s: %w", productID, err)
	}

	count := &StockCount{
		ID:          uuid.NewString(),
		BusinessID:  businessID,
		ProductID:   productID,
		CountedQty:  input.CountedQty,
		RecordedQty: recorded,
		Variance:    input.CountedQty - recorded,
		Note:        input.Note,
		CountedOn:   input.CountedOn,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO stock_counts (id, business_id, product_id, counted_qty, recorded_qty, variance, note, counted_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`, count.ID, businessID, productID, count.CountedQty, count.RecordedQty,
		count.Variance, count.Note, count.CountedOn).Scan(&count.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert stock count: %w", err)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE products SET quantity = $1 WHERE id = $2",
		input.CountedQty, productID,
	); err != nil {
		return nil, fmt.Errorf("failed to update product quantity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stock count: %w", err)
	}
	return count, nil
}

func (s *inventoryService) ListCounts(ctx context.Context, businessID, productID string) ([]StockCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, business_id, product_id, counted_qty, recorded_qty, variance,
		       COALESCE(note, ''), to_char(counted_on, 'YYYY-MM-DD'), created_at
		FROM stock_counts
		WHERE business_id = $1 AND product_id = $2
		ORDER BY counted_on DESC, created_at DESC
	`, businessID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock counts: %w", err)
	}
	defer rows.Close()

	var counts []StockCount
	for rows.Next() {
		var c StockCount
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.ProductID, &c.CountedQty,
			&c.RecordedQty, &c.Variance, &c.Note, &c.CountedOn, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock counts: %w", err)
	}
	return counts, nil
}

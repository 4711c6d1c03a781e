package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryService lists and creates the transaction categories a business
// tags its postings with.
type CategoryService interface {
	List(ctx context.Context, businessID string) ([]Category, error)
	Create(ctx context.Context, businessID, name, kind string) (*Category, error)
}

type categoryService struct {
	pool *pgxpool.Pool
}

func NewCategoryService(pool *pgxpool.Pool) CategoryService {
	return &categoryService{pool: pool}
}

func (s *categoryService) List(ctx context.Context, businessID string) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, business_id, name, kind
		FROM categories
		WHERE business_id = $1
		ORDER BY name
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Name, &c.Kind); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) Create(ctx context.Context, businessID, name, kind string) (*Category, error) {
	if name == "" {
		return nil, &ValidationError{Reason: "category name is required"}
	}
	if kind == "" {
		kind = "EXPENSE"
	}

	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM categories WHERE business_id = $1 AND name = $2)",
		businessID, name,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if exists {
		return nil, &ConflictError{Reason: fmt.Sprintf("category %q already exists", name)}
	}

	c := &Category{ID: uuid.NewString(), BusinessID: businessID, Name: name, Kind: kind}
	if _, err := s.pool.Exec(ctx,
		"INSERT INTO categories (id, business_id, name, kind) VALUES ($1, $2, $3, $4)",
		c.ID, businessID, name, kind,
	); err != nil {
		if uniqueViolation(err) != nil {
			return nil, &ConflictError{Reason: fmt.Sprintf("category %q already exists", name)}
		}
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}
	return c, nil
}

package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PartyInput describes a customer or supplier to create.
type PartyInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// PartyService manages the customers and suppliers that invoices and
// payments reference.
type PartyService interface {
	CreateCustomer(ctx context.Context, businessID string, input PartyInput) (*Customer, error)
	ListCustomers(ctx context.Context, businessID string) ([]Customer, error)
	CreateSupplier(ctx context.Context, businessID string, input PartyInput) (*Supplier, error)
	ListSuppliers(ctx context.Context, businessID string) ([]Supplier, error)
}

type partyService struct {
	pool *pgxpool.Pool
}

func NewPartyService(pool *pgxpool.Pool) PartyService {
	return &partyService{pool: pool}
}

func (s *partyService) CreateCustomer(ctx context.Context, businessID string, input PartyInput) (*Customer, error) {
	if input.Name == "" {
		return nil, &ValidationError{Reason: "customer name is required"}
	}

	c := &Customer{
		ID:         uuid.NewString(),
		BusinessID: businessID,
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Address:    input.Address,
		IsActive:   true,
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO customers (id, business_id, name, email, phone, address, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW())
		RETURNING created_at
	`, c.ID, businessID, c.Name, c.Email, c.Phone, c.Address).Scan(&c.CreatedAt)
	if err != nil {
		if uniqueViolation(err) != nil {
			return nil, &ConflictError{Reason: fmt.Sprintf("customer %q already exists", input.Name)}
		}
		return nil, fmt.Errorf("failed to insert customer: %w", err)
	}
	return c, nil
}

func (s *partyService) ListCustomers(ctx context.Context, businessID string) ([]Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, business_id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''), is_active, created_at
		FROM customers
		WHERE business_id = $1 AND is_active
		ORDER BY created_at DESC
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Name, &c.Email, &c.Phone,
			&c.Address, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}
	return customers, nil
}

func (s *partyService) CreateSupplier(ctx context.Context, businessID string, input PartyInput) (*Supplier, error) {
	if input.Name == "" {
		return nil, &ValidationError{Reason: "supplier name is required"}
	}

	sp := &Supplier{
		ID:         uuid.NewString(),
		BusinessID: businessID,
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Address:    input.Address,
		IsActive:   true,
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (id, business_id, name, email, phone, address, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW())
		RETURNING created_at
	`, sp.ID, businessID, sp.Name, sp.Email, sp.Phone, sp.Address).Scan(&sp.CreatedAt)
	if err != nil {
		if uniqueViolation(err) != nil {
			return nil, &ConflictError{Reason: fmt.Sprintf("supplier %q already exists", input.Name)}
		}
		return nil, fmt.Errorf("failed to insert supplier: %w", err)
	}
	return sp, nil
}

func (s *partyService) ListSuppliers(ctx context.Context, businessID string) ([]Supplier, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, business_id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''), is_active, created_at
		FROM suppliers
		WHERE business_id = $1 AND is_active
		ORDER BY created_at DESC
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var sp Supplier
		if err := rows.Scan(&sp.ID, &sp.BusinessID, &sp.Name, &sp.Email, &sp.Phone,
			&sp.Address, &sp.IsActive, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suppliers: %w", err)
	}
	return suppliers, nil
}

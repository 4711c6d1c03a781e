package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AccountInput describes a financial account to create.
type AccountInput struct {
	Name          string
	Type          string
	Provider      string
	AccountNumber *string
	Currency      string
	Balance       decimal.Decimal
	IsDefault     bool
}

// AccountService manages financial accounts for a business. It owns the
// at-most-one-default invariant; balances are owned by TransactionPoster.
type AccountService interface {
	Create(ctx context.Context, businessID string, input AccountInput) (*FinancialAccount, error)
	List(ctx context.Context, businessID string) ([]FinancialAccount, error)
	Get(ctx context.Context, businessID, accountID string) (*FinancialAccount, error)
	// SetDefault clears any existing default and marks accountID as the
	// business's default, atomically. No reader ever observes zero or two
	// defaults mid-toggle.
	SetDefault(ctx context.Context, businessID, accountID string) (*FinancialAccount, error)
}

type accountService struct {
	pool *pgxpool.Pool
}

func NewAccountService(pool *pgxpool.Pool) AccountService {
	return &accountService{pool: pool}
}

func (s *accountService) Create(ctx context.Context, businessID string, input AccountInput) (*FinancialAccount, error) {
	if input.Name == "" {
		return nil, &ValidationError{Reason: "account name is required"}
	}
	if input.Type == "" {
		return nil, &ValidationError{Reason: "account type is required"}
	}
	if input.Currency == "" {
		input.Currency = "XAF"
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM financial_accounts WHERE business_id = $1 AND name = $2)",
		businessID, input.Name,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check account name: %w", err)
	}
	if exists {
		return nil, &ConflictError{Reason: fmt.Sprintf("account %q already exists", input.Name)}
	}

	if input.IsDefault {
		if _, err := tx.Exec(ctx,
			"UPDATE financial_accounts SET is_default = FALSE WHERE business_id = $1 AND is_default",
			businessID,
		); err != nil {
			return nil, fmt.Errorf("failed to clear default account: %w", err)
		}
	}

	account := &FinancialAccount{
		ID:            uuid.NewString(),
		BusinessID:    businessID,
		Name:          input.Name,
		Type:          input.Type,
		Provider:      input.Provider,
		AccountNumber: input.AccountNumber,
		Currency:      input.Currency,
		Balance:       input.Balance,
		IsDefault:     input.IsDefault,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO financial_accounts (id, business_id, name, type, provider, account_number, currency, balance, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`, account.ID, businessID, account.Name, account.Type, account.Provider,
		account.AccountNumber, account.Currency, account.Balance, account.IsDefault,
	).Scan(&account.CreatedAt)
	if err != nil {
		// A concurrent create can slip past the existence check above; the
		// unique constraints catch it and it is still a conflict, not a
		// store failure.
		if pgErr := uniqueViolation(err); pgErr != nil {
			if pgErr.ConstraintName == "financial_accounts_one_default" {
				return nil, &ConflictError{Reason: "another account became the default concurrently, retry"}
			}
			return nil, &ConflictError{Reason: fmt.Sprintf("account %q already exists", input.Name)}
		}
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit account creation: %w", err)
	}
	return account, nil
}

func (s *accountService) List(ctx context.Context, businessID string) ([]FinancialAccount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, business_id, name, type, provider, account_number, currency, balance, is_default, created_at
		FROM financial_accounts
		WHERE business_id = $1
		ORDER BY created_at
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []FinancialAccount
	for rows.Next() {
		var a FinancialAccount
		if err := rows.Scan(&a.ID, &a.BusinessID, &a.Name, &a.Type, &a.Provider,
			&a.AccountNumber, &a.Currency, &a.Balance, &a.IsDefault, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

func (s *accountService) Get(ctx context.Context, businessID, accountID string) (*FinancialAccount, error) {
	a := &FinancialAccount{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, business_id, name, type, provider, account_number, currency, balance, is_default, created_at
		FROM financial_accounts
		WHERE id = $1 AND business_id = $2
	`, accountID, businessID).Scan(&a.ID, &a.BusinessID, &a.Name, &a.Type, &a.Provider,
		&a.AccountNumber, &a.Currency, &a.Balance, &a.IsDefault, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Reason: fmt.Sprintf("account %s not found for this business", accountID)}
		}
		return nil, fmt.Errorf("failed to fetch account %s: %w", accountID, err)
	}
	return a, nil
}

func (s *accountService) SetDefault(ctx context.Context, businessID, accountID string) (*FinancialAccount, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Clear before set: the partial unique index forbids two defaults at any
	// point inside the transaction.
	if _, err := tx.Exec(ctx,
		"UPDATE financial_accounts SET is_default = FALSE WHERE business_id = $1 AND is_default",
		businessID,
	); err != nil {
		return nil, fmt.Errorf("failed to clear default account: %w", err)
	}

	a := &FinancialAccount{}
	err = tx.QueryRow(ctx, `
		UPDATE financial_accounts
		SET is_default = TRUE
		WHERE id = $1 AND business_id = $2
		RETURNING id, business_id, name, type, provider, account_number, currency, balance, is_default, created_at
	`, accountID, businessID).Scan(&a.ID, &a.BusinessID, &a.Name, &a.Type, &a.Provider,
		&a.AccountNumber, &a.Currency, &a.Balance, &a.IsDefault, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Reason: fmt.Sprintf("account %s not found for this business", accountID)}
		}
		// Two concurrent toggles can both clear and then race on the set;
		// the partial unique index rejects the loser.
		if uniqueViolation(err) != nil {
			return nil, &ConflictError{Reason: "another account became the default concurrently, retry"}
		}
		return nil, fmt.Errorf("failed to set default account: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit default toggle: %w", err)
	}
	return a, nil
}

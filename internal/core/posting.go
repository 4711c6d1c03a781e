package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostingInput is a proposed business transaction with its account
// allocations. BusinessID is never part of the input; it is resolved from
// the caller's session and passed separately.
type PostingInput struct {
	Kind        TransactionKind
	Amount      decimal.Decimal
	Description string
	CategoryID  *string
	OccurredOn  string
	Allocations []AccountAllocation
}

// Validate fails fast, before any persistence is attempted.
func (in *PostingInput) Validate(kinds KindRegistry) error {
	if in.Kind == "" {
		return &ValidationError{Reason: "transaction kind is required"}
	}
	if !kinds.Recognizes(in.Kind) {
		return &ValidationError{Reason: fmt.Sprintf("unrecognized transaction kind %q", in.Kind)}
	}
	if !in.Amount.IsPositive() {
		return &ValidationError{Reason: "transaction amount must be greater than zero"}
	}
	if in.OccurredOn == "" {
		return &ValidationError{Reason: "transaction date is required"}
	}
	if _, err := time.Parse("2006-01-02", in.OccurredOn); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("invalid transaction date %q, want YYYY-MM-DD", in.OccurredOn)}
	}
	if len(in.Allocations) == 0 {
		return &ValidationError{Reason: "at least one account allocation is required"}
	}

	sources, destinations := 0, 0
	for _, alloc := range in.Allocations {
		if alloc.AccountID == "" {
			return &ValidationError{Reason: "allocation is missing an account id"}
		}
		if !alloc.Amount.IsPositive() {
			return &ValidationError{Reason: fmt.Sprintf("allocation amount must be greater than zero for account %s", alloc.AccountID)}
		}
		if alloc.IsTransferSource && alloc.IsTransferDestination {
			return &ValidationError{Reason: fmt.Sprintf("allocation for account %s cannot be both transfer source and destination", alloc.AccountID)}
		}
		if alloc.IsTransferSource {
			sources++
		}
		if alloc.IsTransferDestination {
			destinations++
		}
	}

	if in.Kind == KindTransfer {
		if sources != 1 {
			return &ValidationError{Reason: "transfer requires exactly one source allocation"}
		}
		if destinations > 1 {
			return &ValidationError{Reason: "transfer allows at most one destination allocation"}
		}
	}
	return nil
}

// TransactionPoster atomically records a business transaction, its
// allocations, and the resulting balance deltas on each referenced
// account. All writes happen inside one database transaction; the balance
// update is a relative increment so concurrent postings compose.
type TransactionPoster struct {
	pool  *pgxpool.Pool
	kinds KindRegistry
}

func NewTransactionPoster(pool *pgxpool.Pool, kinds KindRegistry) *TransactionPoster {
	return &TransactionPoster{pool: pool, kinds: kinds}
}

// Post validates and persists the transaction for the given business.
// Either every row and every balance increment is applied, or none are.
func (p *TransactionPoster) Post(ctx context.Context, businessID string, input PostingInput) (*BusinessTransaction, error) {
	if businessID == "" {
		return nil, &AuthorizationError{Reason: "no business resolved for caller"}
	}
	if err := input.Validate(p.kinds); err != nil {
		return nil, err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	txn := &BusinessTransaction{
		ID:          uuid.NewString(),
		BusinessID:  businessID,
		Kind:        input.Kind,
		Amount:      input.Amount,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		OccurredOn:  input.OccurredOn,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (id, business_id, kind, amount, description, category_id, occurred_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`, txn.ID, businessID, string(input.Kind), input.Amount, input.Description, input.CategoryID, input.OccurredOn).Scan(&txn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	for _, alloc := range input.Allocations {
		alloc.ID = uuid.NewString()
		alloc.TransactionID = txn.ID

		_, err = tx.Exec(ctx, `
			INSERT INTO account_transactions (id, transaction_id, account_id, amount, is_transfer_source, is_transfer_destination)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, alloc.ID, alloc.TransactionID, alloc.AccountID, alloc.Amount, alloc.IsTransferSource, alloc.IsTransferDestination)
		if err != nil {
			return nil, fmt.Errorf("failed to insert allocation for account %s: %w", alloc.AccountID, err)
		}

		delta, err := p.kinds.BalanceChange(input.Kind, alloc)
		if err != nil {
			return nil, err
		}

		// Relative increment, never read-modify-write: concurrent postings
		// against the same account must commute. The business_id predicate
		// makes accounts outside the caller's business unreachable.
		tag, err := tx.Exec(ctx, `
			UPDATE financial_accounts
			SET balance = balance + $1
			WHERE id = $2 AND business_id = $3
		`, delta, alloc.AccountID, businessID)
		if err != nil {
			return nil, fmt.Errorf("failed to update balance for account %s: %w", alloc.AccountID, err)
		}
		if tag.RowsAffected() == 0 {
			return nil, &NotFoundError{Reason: fmt.Sprintf("account %s not found for this business", alloc.AccountID)}
		}

		txn.Allocations = append(txn.Allocations, alloc)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit posting: %w", err)
	}
	return txn, nil
}

// List returns the business's most recent transactions, allocations included.
func (p *TransactionPoster) List(ctx context.Context, businessID string, limit int) ([]BusinessTransaction, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := p.pool.Query(ctx, `
		SELECT id, business_id, kind, amount, COALESCE(description, ''), category_id, to_char(occurred_on, 'YYYY-MM-DD'), created_at
		FROM transactions
		WHERE business_id = $1
		ORDER BY occurred_on DESC, created_at DESC
		LIMIT $2
	`, businessID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []BusinessTransaction
	index := make(map[string]int)
	for rows.Next() {
		var t BusinessTransaction
		var kind string
		if err := rows.Scan(&t.ID, &t.BusinessID, &kind, &t.Amount, &t.Description, &t.CategoryID, &t.OccurredOn, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Kind = TransactionKind(kind)
		index[t.ID] = len(txns)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	if len(txns) == 0 {
		return txns, nil
	}

	ids := make([]string, 0, len(txns))
	for _, t := range txns {
		ids = append(ids, t.ID)
	}

	allocRows, err := p.pool.Query(ctx, `
		SELECT id, transaction_id, account_id, amount, is_transfer_source, is_transfer_destination
		FROM account_transactions
		WHERE transaction_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer allocRows.Close()

	for allocRows.Next() {
		var a AccountAllocation
		if err := allocRows.Scan(&a.ID, &a.TransactionID, &a.AccountID, &a.Amount, &a.IsTransferSource, &a.IsTransferDestination); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		if i, ok := index[a.TransactionID]; ok {
			txns[i].Allocations = append(txns[i].Allocations, a)
		}
	}
	if err := allocRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocations: %w", err)
	}
	return txns, nil
}

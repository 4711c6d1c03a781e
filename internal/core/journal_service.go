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

type JournalLineInput struct {
	AccountID    string
	DebitAmount  decimal.Decimal
	CreditAmount decimal.Decimal
	Description  string
	Reference    string
}

type JournalInput struct {
	TransactionDate string
	Reference       string
	Description     string
	Lines           []JournalLineInput
}

// JournalService records numbered journal entries and their reversals.
// Entries are bookkeeping records only; they do not touch financial
// account balances, which belong to the TransactionPoster.
type JournalService interface {
	Create(ctx context.Context, businessID string, input JournalInput) (*JournalEntry, error)
	List(ctx context.Context, businessID string) ([]JournalEntry, error)
	Get(ctx context.Context, businessID, entryID string) (*JournalEntry, error)
	// Reverse writes a mirror entry (debits and credits swapped) linked to
	// the original and marks the original Reversed. A second reversal of the
	// same entry is refused.
	Reverse(ctx context.Context, businessID, entryID, reason string) (*JournalEntry, error)
}

type journalService struct {
	pool *pgxpool.Pool
}

func NewJournalService(pool *pgxpool.Pool) JournalService {
	return &journalService{pool: pool}
}

func (in *JournalInput) validate() error {
	if in.TransactionDate == "" {
		return &ValidationError{Reason: "transaction date is required"}
	}
	if _, err := time.Parse("2006-01-02", in.TransactionDate); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("invalid transaction date %q, want YYYY-MM-DD", in.TransactionDate)}
	}
	if len(in.Lines) == 0 {
		return &ValidationError{Reason: "at least one journal line is required"}
	}
	for _, line := range in.Lines {
		if line.AccountID == "" {
			return &ValidationError{Reason: "journal line is missing an account id"}
		}
		if line.DebitAmount.IsNegative() || line.CreditAmount.IsNegative() {
			return &ValidationError{Reason: fmt.Sprintf("journal line amounts cannot be negative for account %s", line.AccountID)}
		}
		if line.DebitAmount.IsZero() && line.CreditAmount.IsZero() {
			return &ValidationError{Reason: fmt.Sprintf("journal line for account %s has no amount", line.AccountID)}
		}
	}
	return nil
}

// nextEntryNumber returns the next JE-%05d number for the business. The
// maximum is taken over the numeric suffix, not the text: past JE-99999
// the numbers outgrow the padding and "JE-100000" sorts before "JE-99999".
// Must run inside the insert transaction so concurrent creates collide on
// the (business_id, entry_number) unique constraint instead of both winning.
func nextEntryNumber(ctx context.Context, tx pgx.Tx, businessID string) (string, error) {
	var last int
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(substring(entry_number from 4)::int), 0)
		FROM journal_entries
		WHERE business_id = $1
	`, businessID).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("failed to fetch last entry number: %w", err)
	}
	return fmt.Sprintf("JE-%05d", last+1), nil
}

func (s *journalService) Create(ctx context.Context, businessID string, input JournalInput) (*JournalEntry, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	number, err := nextEntryNumber(ctx, tx, businessID)
	if err != nil {
		return nil, err
	}

	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, line := range input.Lines {
		totalDebit = totalDebit.Add(line.DebitAmount)
		totalCredit = totalCredit.Add(line.CreditAmount)
	}

	entry := &JournalEntry{
		ID:              uuid.NewString(),
		BusinessID:      businessID,
		EntryNumber:     number,
		TransactionDate: input.TransactionDate,
		Description:     input.Description,
		Reference:       input.Reference,
		Status:          JournalStatusPosted,
		TotalDebit:      totalDebit,
		TotalCredit:     totalCredit,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO journal_entries (id, business_id, entry_number, transaction_date, description, reference, status, total_debit, total_credit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`, entry.ID, businessID, number, input.TransactionDate, input.Description,
		input.Reference, string(entry.Status), totalDebit, totalCredit,
	).Scan(&entry.CreatedAt)
	if err != nil {
		if uniqueViolation(err) != nil {
			return nil, &ConflictError{Reason: fmt.Sprintf("entry number %s was taken by a concurrent create, retry", number)}
		}
		return nil, fmt.Errorf("failed to insert journal entry: %w", err)
	}

	for _, line := range input.Lines {
		var exists bool
		err = tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM financial_accounts WHERE id = $1 AND business_id = $2)",
			line.AccountID, businessID,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check account %s: %w", line.AccountID, err)
		}
		if !exists {
			return nil, &NotFoundError{Reason: fmt.Sprintf("account %s not found for this business", line.AccountID)}
		}

		jl := JournalEntryLine{
			ID:           uuid.NewString(),
			EntryID:      entry.ID,
			AccountID:    line.AccountID,
			DebitAmount:  line.DebitAmount,
			CreditAmount: line.CreditAmount,
			Description:  line.Description,
			Reference:    line.Reference,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO journal_entry_lines (id, entry_id, account_id, debit_amount, credit_amount, description, reference)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, jl.ID, jl.EntryID, jl.AccountID, jl.DebitAmount, jl.CreditAmount, jl.Description, jl.Reference)
		if err != nil {
			return nil, fmt.Errorf("failed to insert journal line: %w", err)
		}
		entry.Lines = append(entry.Lines, jl)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit journal entry: %w", err)
	}
	return entry, nil
}

func (s *journalService) List(ctx context.Context, businessID string) ([]JournalEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, business_id, entry_number, to_char(transaction_date, 'YYYY-MM-DD'),
		       COALESCE(description, ''), COALESCE(reference, ''), status,
		       total_debit, total_credit, reversed_entry_id, created_at
		FROM journal_entries
		WHERE business_id = $1 AND NOT is_deleted
		ORDER BY transaction_date DESC, entry_number DESC
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var status string
		if err := rows.Scan(&e.ID, &e.BusinessID, &e.EntryNumber, &e.TransactionDate,
			&e.Description, &e.Reference, &status, &e.TotalDebit, &e.TotalCredit,
			&e.ReversedEntryID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.Status = JournalStatus(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entries: %w", err)
	}
	return entries, nil
}

func (s *journalService) Get(ctx context.Context, businessID, entryID string) (*JournalEntry, error) {
	e := &JournalEntry{}
	var status string
	err := s.pool.QueryRow(ctx, `
		SELECT id, business_id, entry_number, to_char(transaction_date, 'YYYY-MM-DD'),
		       COALESCE(description, ''), COALESCE(reference, ''), status,
		       total_debit, total_credit, reversed_entry_id, created_at
		FROM journal_entries
		WHERE id = $1 AND business_id = $2 AND NOT is_deleted
	`, entryID, businessID).Scan(&e.ID, &e.BusinessID, &e.EntryNumber, &e.TransactionDate,
		&e.Description, &e.Reference, &status, &e.TotalDebit, &e.TotalCredit,
		&e.ReversedEntryID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Reason: fmt.Sprintf("journal entry %s not found", entryID)}
		}
		return nil, fmt.Errorf("failed to fetch journal entry %s: %w", entryID, err)
	}
	e.Status = JournalStatus(status)

	rows, err := s.pool.Query(ctx, `
		SELECT l.id, l.entry_id, l.account_id, a.name, l.debit_amount, l.credit_amount,
		       COALESCE(l.description, ''), COALESCE(l.reference, '')
		FROM journal_entry_lines l
		JOIN financial_accounts a ON a.id = l.account_id
		WHERE l.entry_id = $1
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l JournalEntryLine
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.AccountName,
			&l.DebitAmount, &l.CreditAmount, &l.Description, &l.Reference); err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		e.Lines = append(e.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal lines: %w", err)
	}
	return e, nil
}

func (s *journalService) Reverse(ctx context.Context, businessID, entryID, reason string) (*JournalEntry, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var number, date, description string
	err = tx.QueryRow(ctx, `
		SELECT entry_number, to_char(transaction_date, 'YYYY-MM-DD'), COALESCE(description, '')
		FROM journal_entries
		WHERE id = $1 AND business_id = $2 AND NOT is_deleted
	`, entryID, businessID).Scan(&number, &date, &description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Reason: fmt.Sprintf("journal entry %s not found", entryID)}
		}
		return nil, fmt.Errorf("failed to fetch journal entry %s: %w", entryID, err)
	}

	var count int
	err = tx.QueryRow(ctx,
		"SELECT count(*) FROM journal_entries WHERE reversed_entry_id = $1", entryID,
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to check reversal status: %w", err)
	}
	if count > 0 {
		return nil, &ConflictError{Reason: fmt.Sprintf("journal entry %s is already reversed", number)}
	}

	reversalNumber, err := nextEntryNumber(ctx, tx, businessID)
	if err != nil {
		return nil, err
	}

	reversal := &JournalEntry{
		ID:              uuid.NewString(),
		BusinessID:      businessID,
		EntryNumber:     reversalNumber,
		TransactionDate: date,
		Description:     fmt.Sprintf("Reversal of %s: %s", number, description),
		Reference:       reason,
		Status:          JournalStatusPosted,
		ReversedEntryID: &entryID,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO journal_entries (id, business_id, entry_number, transaction_date, description, reference, status, total_debit, total_credit, reversed_entry_id, created_at)
		SELECT $1, business_id, $2, transaction_date, $3, $4, $5, total_credit, total_debit, $6, NOW()
		FROM journal_entries WHERE id = $6
		RETURNING total_debit, total_credit, created_at
	`, reversal.ID, reversalNumber, reversal.Description, reason, string(JournalStatusPosted), entryID,
	).Scan(&reversal.TotalDebit, &reversal.TotalCredit, &reversal.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert reversal entry: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT account_id, debit_amount, credit_amount, COALESCE(description, ''), COALESCE(reference, '')
		FROM journal_entry_lines
		WHERE entry_id = $1
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
	}

	var lines []JournalEntryLine
	for rows.Next() {
		var l JournalEntryLine
		if err := rows.Scan(&l.AccountID, &l.DebitAmount, &l.CreditAmount, &l.Description, &l.Reference); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal lines: %w", err)
	}

	for _, l := range lines {
		// Debit and credit swap on the reversal.
		jl := JournalEntryLine{
			ID:           uuid.NewString(),
			EntryID:      reversal.ID,
			AccountID:    l.AccountID,
			DebitAmount:  l.CreditAmount,
			CreditAmount: l.DebitAmount,
			Description:  l.Description,
			Reference:    l.Reference,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO journal_entry_lines (id, entry_id, account_id, debit_amount, credit_amount, description, reference)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, jl.ID, jl.EntryID, jl.AccountID, jl.DebitAmount, jl.CreditAmount, jl.Description, jl.Reference)
		if err != nil {
			return nil, fmt.Errorf("failed to insert reversal line: %w", err)
		}
		reversal.Lines = append(reversal.Lines, jl)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE journal_entries SET status = $1 WHERE id = $2",
		string(JournalStatusReversed), entryID,
	); err != nil {
		return nil, fmt.Errorf("failed to mark entry reversed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reversal: %w", err)
	}
	return reversal, nil
}

package core_test

import (
	"context"
	"testing"

	"bizsense/internal/core"

	"github.com/shopspring/decimal"
)

func seedJournalEntry(t *testing.T, svc core.JournalService) *core.JournalEntry {
	t.Helper()
	entry, err := svc.Create(context.Background(), "biz-a", core.JournalInput{
		TransactionDate: "2026-08-10",
		Description:     "Opening stock purchase",
		Lines: []core.JournalLineInput{
			{AccountID: "acct-cash", CreditAmount: decimal.NewFromInt(700)},
			{AccountID: "acct-momo", DebitAmount: decimal.NewFromInt(700)},
		},
	})
	if err != nil {
		t.Fatalf("Failed to create journal entry: %v", err)
	}
	return entry
}

func TestJournalService_EntryNumbering(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewJournalService(pool)

	first := seedJournalEntry(t, svc)
	if first.EntryNumber != "JE-00001" {
		t.Errorf("first entry number = %s, want JE-00001", first.EntryNumber)
	}
	if !first.TotalDebit.Equal(decimal.NewFromInt(700)) || !first.TotalCredit.Equal(decimal.NewFromInt(700)) {
		t.Errorf("totals = %s/%s, want 700/700", first.TotalDebit, first.TotalCredit)
	}

	second, err := svc.Create(context.Background(), "biz-a", core.JournalInput{
		TransactionDate: "2026-08-11",
		Lines: []core.JournalLineInput{
			{AccountID: "acct-cash", DebitAmount: decimal.NewFromInt(50)},
		},
	})
	if err != nil {
		t.Fatalf("Failed to create second entry: %v", err)
	}
	if second.EntryNumber != "JE-00002" {
		t.Errorf("second entry number = %s, want JE-00002", second.EntryNumber)
	}
}

func TestJournalService_LineAccountMustBelongToBusiness(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewJournalService(pool)

	_, err := svc.Create(context.Background(), "biz-a", core.JournalInput{
		TransactionDate: "2026-08-10",
		Lines: []core.JournalLineInput{
			{AccountID: "acct-other", DebitAmount: decimal.NewFromInt(10)},
		},
	})
	if err == nil {
		t.Fatal("expected entry against a foreign account to fail")
	}
	if !core.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %T: %v", err, err)
	}
	if n := countRows(t, pool, "journal_entries"); n != 0 {
		t.Errorf("journal_entries has %d rows, want 0 after rollback", n)
	}
}

func TestJournalService_Reversal(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewJournalService(pool)
	ctx := context.Background()

	original := seedJournalEntry(t, svc)

	reversal, err := svc.Reverse(ctx, "biz-a", original.ID, "entered against wrong account")
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}

	if reversal.ReversedEntryID == nil || *reversal.ReversedEntryID != original.ID {
		t.Error("reversal should link back to the original entry")
	}
	if !reversal.TotalDebit.Equal(original.TotalCredit) || !reversal.TotalCredit.Equal(original.TotalDebit) {
		t.Errorf("reversal totals = %s/%s, want originals swapped %s/%s",
			reversal.TotalDebit, reversal.TotalCredit, original.TotalCredit, original.TotalDebit)
	}

	// Lines mirror the original with debit and credit swapped.
	detailed, err := svc.Get(ctx, "biz-a", reversal.ID)
	if err != nil {
		t.Fatalf("Failed to fetch reversal: %v", err)
	}
	if len(detailed.Lines) != 2 {
		t.Fatalf("reversal has %d lines, want 2", len(detailed.Lines))
	}
	for _, line := range detailed.Lines {
		switch line.AccountID {
		case "acct-cash":
			if !line.DebitAmount.Equal(decimal.NewFromInt(700)) || !line.CreditAmount.IsZero() {
				t.Errorf("cash line = %s/%s, want 700/0", line.DebitAmount, line.CreditAmount)
			}
		case "acct-momo":
			if !line.CreditAmount.Equal(decimal.NewFromInt(700)) || !line.DebitAmount.IsZero() {
				t.Errorf("momo line = %s/%s, want 0/700", line.DebitAmount, line.CreditAmount)
			}
		default:
			t.Errorf("unexpected account %s in reversal", line.AccountID)
		}
	}

	// The original is now marked Reversed.
	refreshed, err := svc.Get(ctx, "biz-a", original.ID)
	if err != nil {
		t.Fatalf("Failed to fetch original: %v", err)
	}
	if refreshed.Status != core.JournalStatusReversed {
		t.Errorf("original status = %s, want %s", refreshed.Status, core.JournalStatusReversed)
	}
}

func TestJournalService_DoubleReversalRefused(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewJournalService(pool)
	ctx := context.Background()

	original := seedJournalEntry(t, svc)

	if _, err := svc.Reverse(ctx, "biz-a", original.ID, "first reversal"); err != nil {
		t.Fatalf("First reversal failed: %v", err)
	}

	_, err := svc.Reverse(ctx, "biz-a", original.ID, "second reversal")
	if err == nil {
		t.Fatal("expected second reversal to be refused")
	}
	if !core.IsConflict(err) {
		t.Errorf("expected ConflictError, got %T: %v", err, err)
	}
}

func TestJournalService_ValidationRejectsEmptyLine(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewJournalService(pool)

	_, err := svc.Create(context.Background(), "biz-a", core.JournalInput{
		TransactionDate: "2026-08-10",
		Lines: []core.JournalLineInput{
			{AccountID: "acct-cash"},
		},
	})
	if err == nil {
		t.Fatal("expected line without any amount to be rejected")
	}
	if !core.IsValidation(err) {
		t.Errorf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestJournalService_EntryNumberingPastFiveDigits(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	// JE-100000 sorts before JE-99999 as text; numbering must compare the
	// numeric suffix or it would reissue JE-100000 forever.
	_, err := pool.Exec(context.Background(), `
		INSERT INTO journal_entries (id, business_id, entry_number, transaction_date) VALUES
		('je-hi-1', 'biz-a', 'JE-99999', '2026-08-01'),
		('je-hi-2', 'biz-a', 'JE-100000', '2026-08-02')
	`)
	if err != nil {
		t.Fatalf("Failed to seed high-numbered entries: %v", err)
	}

	svc := core.NewJournalService(pool)
	entry, err := svc.Create(context.Background(), "biz-a", core.JournalInput{
		TransactionDate: "2026-08-03",
		Lines: []core.JournalLineInput{
			{AccountID: "acct-cash", DebitAmount: decimal.NewFromInt(10)},
		},
	})
	if err != nil {
		t.Fatalf("Create after JE-100000 failed: %v", err)
	}
	if entry.EntryNumber != "JE-100001" {
		t.Errorf("entry number = %s, want JE-100001", entry.EntryNumber)
	}
}

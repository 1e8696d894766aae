package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, s *Store, id, name string, category domain.AccountCategory) {
	t.Helper()
	require.NoError(t, s.SaveAccount(context.Background(), domain.Account{AccountID: id, Name: name, Category: category}))
}

func entry(id string, date time.Time, desc string, lines ...domain.JournalLine) domain.JournalEntry {
	for i := range lines {
		lines[i].EntryID = id
		lines[i].LineNo = i
		lines[i].LineID = fmt.Sprintf("%s-%d", id, i)
	}
	return domain.JournalEntry{EntryID: id, EntryDate: date, Description: desc, Lines: lines}
}

func line(accountID string, side domain.EntrySide, amount string) domain.JournalLine {
	return domain.JournalLine{AccountID: accountID, Side: side, Amount: decimal.RequireFromString(amount)}
}

func insert(t *testing.T, s *Store, e domain.JournalEntry) {
	t.Helper()
	require.NoError(t, s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.InsertEntry(ctx, e)
	}))
}

func TestSaveAccount_DuplicateName(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "a1", "Cash", domain.Asset)

	err := s.SaveAccount(context.Background(), domain.Account{AccountID: "a2", Name: "Cash", Category: domain.Asset})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestFindAccountByID_NotFound(t *testing.T) {
	_, err := NewStore().FindAccountByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRunInTx_FailedUnitLeavesNoTrace(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "a1", "Cash", domain.Asset)
	seedAccount(t, s, "a2", "Equity", domain.Equity)
	boom := errors.New("boom")
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		require.NoError(t, tx.InsertEntry(ctx, entry("e1", day, "seed", line("a1", domain.Debit, "10"), line("a2", domain.Credit, "10"))))
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := s.CountLines(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	_, err = s.FindEntryByID(context.Background(), "e1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRunInTx_StagedWritesVisibleInsideUnit(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "a1", "Cash", domain.Asset)
	seedAccount(t, s, "a2", "Equity", domain.Equity)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		require.NoError(t, tx.InsertEntry(ctx, entry("e1", day, "seed", line("a1", domain.Debit, "10"), line("a2", domain.Credit, "10"))))
		totals, err := tx.AccountLineTotals(ctx, "a1")
		require.NoError(t, err)
		assert.True(t, totals.DebitTotal.Equal(decimal.NewFromInt(10)))

		inUse, err := tx.AccountInUse(ctx, "a2")
		require.NoError(t, err)
		assert.True(t, inUse)
		return nil
	})
	require.NoError(t, err)
}

func TestDeleteAccount_RefusesAccountWithLines(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "a1", "Cash", domain.Asset)
	seedAccount(t, s, "a2", "Equity", domain.Equity)
	insert(t, s, entry("e1", time.Now(), "seed", line("a1", domain.Debit, "1"), line("a2", domain.Credit, "1")))

	err := s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.DeleteAccount(ctx, "a1")
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUpdateAccount_RenameFreesOldName(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "a1", "Cash", domain.Asset)

	require.NoError(t, s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.UpdateAccount(ctx, domain.Account{AccountID: "a1", Name: "Petty Cash", Category: domain.Asset})
	}))

	seedAccount(t, s, "a2", "Cash", domain.Asset)
	err := s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.UpdateAccount(ctx, domain.Account{AccountID: "a2", Name: "Petty Cash", Category: domain.Asset})
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestInsertEntry_SecondReversalConflicts(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "a1", "Cash", domain.Asset)
	seedAccount(t, s, "a2", "Equity", domain.Equity)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	insert(t, s, entry("e1", day, "seed", line("a1", domain.Debit, "5"), line("a2", domain.Credit, "5")))

	original := "e1"
	rev := entry("e2", day, "undo", line("a1", domain.Credit, "5"), line("a2", domain.Debit, "5"))
	rev.ReversesEntryID = &original
	insert(t, s, rev)

	again := entry("e3", day, "undo again", line("a1", domain.Credit, "5"), line("a2", domain.Debit, "5"))
	again.ReversesEntryID = &original
	err := s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.InsertEntry(ctx, again)
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestListAccounts_PagesInNameOrder(t *testing.T) {
	s := NewStore()
	for i, name := range []string{"Delta", "alpha", "Charlie", "Bravo", "Echo"} {
		seedAccount(t, s, fmt.Sprintf("id-%d", i), name, domain.Asset)
	}

	var names []string
	var token *string
	for {
		page, next, err := s.ListAccounts(context.Background(), domain.AccountFilter{}, 2, token)
		require.NoError(t, err)
		for _, a := range page {
			names = append(names, a.Name)
		}
		if next == nil {
			break
		}
		token = next
	}
	assert.Equal(t, []string{"Bravo", "Charlie", "Delta", "Echo", "alpha"}, names)
}

func TestListAccounts_Filter(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "a1", "Cash at bank", domain.Asset)
	seedAccount(t, s, "a2", "Bank loan", domain.Liability)
	seedAccount(t, s, "a3", "Rent", domain.Expense)

	liability := domain.Liability
	page, next, err := s.ListAccounts(context.Background(), domain.AccountFilter{Category: &liability}, 10, nil)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, page, 1)
	assert.Equal(t, "a2", page[0].AccountID)

	page, _, err = s.ListAccounts(context.Background(), domain.AccountFilter{NameLike: "BANK"}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestListAccounts_BadToken(t *testing.T) {
	bad := "%%%"
	_, _, err := NewStore().ListAccounts(context.Background(), domain.AccountFilter{}, 10, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestListEntries_NewestFirstWithFilters(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "cash", "Cash", domain.Asset)
	seedAccount(t, s, "rev", "Sales", domain.Revenue)
	seedAccount(t, s, "eq", "Capital", domain.Equity)

	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	insert(t, s, entry("e1", d1, "capital injection", line("cash", domain.Debit, "100"), line("eq", domain.Credit, "100")))
	insert(t, s, entry("e2", d2, "sale", line("cash", domain.Debit, "20"), line("rev", domain.Credit, "20")))
	insert(t, s, entry("e3", d2, "another sale", line("cash", domain.Debit, "30"), line("rev", domain.Credit, "30")))

	var got []string
	var token *string
	for {
		page, next, err := s.ListEntries(context.Background(), domain.EntryFilter{}, 2, token)
		require.NoError(t, err)
		for _, e := range page {
			got = append(got, e.EntryID)
		}
		if next == nil {
			break
		}
		token = next
	}
	assert.Equal(t, []string{"e3", "e2", "e1"}, got)

	page, _, err := s.ListEntries(context.Background(), domain.EntryFilter{AccountID: "rev"}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, _, err = s.ListEntries(context.Background(), domain.EntryFilter{To: &d1}, 10, nil)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "e1", page[0].EntryID)

	page, _, err = s.ListEntries(context.Background(), domain.EntryFilter{DescriptionLike: "SALE"}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestFindEntryByID_ReturnsCopy(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "a1", "Cash", domain.Asset)
	seedAccount(t, s, "a2", "Equity", domain.Equity)
	insert(t, s, entry("e1", time.Now(), "seed", line("a1", domain.Debit, "1"), line("a2", domain.Credit, "1")))

	got, err := s.FindEntryByID(context.Background(), "e1")
	require.NoError(t, err)
	got.Lines[0].Amount = decimal.NewFromInt(999)

	again, err := s.FindEntryByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.True(t, again.Lines[0].Amount.Equal(decimal.NewFromInt(1)))
}

func TestRunInTx_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := NewStore().RunInTx(ctx, func(context.Context, portsrepo.LedgerTx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

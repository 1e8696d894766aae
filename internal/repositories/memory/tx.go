package memory

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

// RunInTx holds the store's write lock for the whole of fn. Writes are staged on
// the tx and applied only when fn returns nil.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		s:       s,
		updated: make(map[string]domain.Account),
		deleted: make(map[string]struct{}),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memTx struct {
	s       *Store
	updated map[string]domain.Account
	deleted map[string]struct{}
	entries []domain.JournalEntry
}

var _ portsrepo.LedgerTx = (*memTx)(nil)

func (t *memTx) account(accountID string) (domain.Account, bool) {
	if _, gone := t.deleted[accountID]; gone {
		return domain.Account{}, false
	}
	if a, ok := t.updated[accountID]; ok {
		return a, true
	}
	a, ok := t.s.accounts[accountID]
	return a, ok
}

func (t *memTx) LockAccountsForPosting(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	found := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if a, ok := t.account(id); ok {
			found[id] = a
		}
	}
	return found, nil
}

func (t *memTx) LockAccountForUpdate(_ context.Context, accountID string) (*domain.Account, error) {
	a, ok := t.account(accountID)
	if !ok {
		return nil, apperrors.NewNotFoundError("account", accountID)
	}
	return &a, nil
}

func (t *memTx) AccountLineTotals(_ context.Context, accountID string) (domain.LineTotals, error) {
	totals := t.s.totalsOf(accountID)
	for _, e := range t.entries {
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				totals = addLine(totals, l)
			}
		}
	}
	return totals, nil
}

func (t *memTx) AccountInUse(ctx context.Context, accountID string) (bool, error) {
	totals, err := t.AccountLineTotals(ctx, accountID)
	return totals.LineCount > 0, err
}

func (t *memTx) UpdateAccount(_ context.Context, account domain.Account) error {
	current, ok := t.account(account.AccountID)
	if !ok {
		return apperrors.NewNotFoundError("account", account.AccountID)
	}
	if account.Name != current.Name {
		if owner, taken := t.s.names[account.Name]; taken && owner != account.AccountID {
			if holder, ok := t.account(owner); ok && holder.Name == account.Name {
				return apperrors.NewConflictError("account", account.Name, "name already registered")
			}
		}
		for id, staged := range t.updated {
			if id != account.AccountID && staged.Name == account.Name {
				return apperrors.NewConflictError("account", account.Name, "name already registered")
			}
		}
	}
	t.updated[account.AccountID] = account
	return nil
}

// DeleteAccount refuses accounts with lines, mirroring the foreign key in postgres.
func (t *memTx) DeleteAccount(ctx context.Context, accountID string) error {
	if _, ok := t.account(accountID); !ok {
		return apperrors.NewNotFoundError("account", accountID)
	}
	if inUse, _ := t.AccountInUse(ctx, accountID); inUse {
		return apperrors.NewConflictError("account", accountID, "account in use by journal lines")
	}
	delete(t.updated, accountID)
	t.deleted[accountID] = struct{}{}
	return nil
}

func (t *memTx) FindEntryByID(_ context.Context, entryID string) (*domain.JournalEntry, error) {
	for _, e := range t.entries {
		if e.EntryID == entryID {
			return cloneEntry(e), nil
		}
	}
	e, ok := t.s.entries[entryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("journal entry", entryID)
	}
	return cloneEntry(e), nil
}

func (t *memTx) FindReversalOf(_ context.Context, entryID string) (string, error) {
	for _, e := range t.entries {
		if e.ReversesEntryID != nil && *e.ReversesEntryID == entryID {
			return e.EntryID, nil
		}
	}
	return t.s.reversals[entryID], nil
}

func (t *memTx) InsertEntry(ctx context.Context, entry domain.JournalEntry) error {
	if _, exists := t.s.entries[entry.EntryID]; exists {
		return apperrors.NewConflictError("journal entry", entry.EntryID, "id already exists")
	}
	if entry.ReversesEntryID != nil {
		if existing, _ := t.FindReversalOf(ctx, *entry.ReversesEntryID); existing != "" {
			return apperrors.NewConflictError("journal entry", *entry.ReversesEntryID, "already reversed by "+existing)
		}
	}
	for i, l := range entry.Lines {
		if _, ok := t.account(l.AccountID); !ok {
			return &apperrors.NotFoundError{Resource: "account", ID: l.AccountID, LineIndex: i}
		}
	}
	t.entries = append(t.entries, *cloneEntry(entry))
	return nil
}

func (t *memTx) commit() {
	s := t.s
	for id := range t.deleted {
		if a, ok := s.accounts[id]; ok {
			delete(s.names, a.Name)
			delete(s.accounts, id)
		}
	}
	for id := range t.updated {
		if old, ok := s.accounts[id]; ok {
			delete(s.names, old.Name)
		}
	}
	for id, a := range t.updated {
		s.accounts[id] = a
		s.names[a.Name] = id
	}
	for _, e := range t.entries {
		s.entries[e.EntryID] = e
		if e.ReversesEntryID != nil {
			s.reversals[*e.ReversesEntryID] = e.EntryID
		}
		for _, l := range e.Lines {
			s.totals[l.AccountID] = addLine(s.totalsOf(l.AccountID), l)
			s.lineCount++
		}
	}
}

func addLine(t domain.LineTotals, l domain.JournalLine) domain.LineTotals {
	if l.Side == domain.Debit {
		t.DebitTotal = t.DebitTotal.Add(l.Amount)
	} else {
		t.CreditTotal = t.CreditTotal.Add(l.Amount)
	}
	t.LineCount++
	return t
}

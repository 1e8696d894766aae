package repositories

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// LedgerTx exposes the operations that must run inside one atomic unit.
// Every method is bound to the surrounding transaction.
type LedgerTx interface {
	// LockAccountsForPosting loads the accounts and holds a shared lock on them until
	// the unit ends, so no concurrent delete can remove them. Unknown ids are absent from the map.
	LockAccountsForPosting(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// LockAccountForUpdate loads one account with an exclusive lock.
	LockAccountForUpdate(ctx context.Context, accountID string) (*domain.Account, error)

	// AccountLineTotals folds the lines of one account as seen by this unit.
	AccountLineTotals(ctx context.Context, accountID string) (domain.LineTotals, error)

	// AccountInUse reports whether any journal line references the account.
	AccountInUse(ctx context.Context, accountID string) (bool, error)

	// UpdateAccount stores new name/category values. A duplicate name yields a ConflictError.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeleteAccount removes the account row.
	DeleteAccount(ctx context.Context, accountID string) error

	// FindEntryByID loads an entry and its lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindReversalOf returns the id of the entry reversing entryID, or "" when none exists.
	FindReversalOf(ctx context.Context, entryID string) (string, error)

	// InsertEntry writes the entry header and all of its lines.
	InsertEntry(ctx context.Context, entry domain.JournalEntry) error
}

// TransactionManager runs a function as one atomic unit. If fn returns an error nothing
// it did is persisted. Transient serialization failures may cause fn to run again.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

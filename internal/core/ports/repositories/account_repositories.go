package repositories

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves one page of accounts matching the filter, ordered by name.
	// It returns the accounts, a token for the next page, and an error.
	ListAccounts(ctx context.Context, filter domain.AccountFilter, limit int, nextToken *string) ([]domain.Account, *string, error)

	// AccountLineTotals folds every journal line that references the account.
	AccountLineTotals(ctx context.Context, accountID string) (domain.LineTotals, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. A duplicate name yields a ConflictError.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}

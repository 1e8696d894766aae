package services

import (
	"context"
	"iter"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves one page of accounts matching the filter.
	ListAccounts(ctx context.Context, filter domain.AccountFilter, limit int, nextToken *string) ([]domain.Account, *string, error)

	// IterateAccounts lazily walks every account matching the filter, page by page.
	IterateAccounts(ctx context.Context, filter domain.AccountFilter) iter.Seq2[domain.Account, error]
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// RegisterAccount adds a new account to the chart of accounts.
	RegisterAccount(ctx context.Context, name string, category domain.AccountCategory) (*domain.Account, error)

	// UpdateAccount renames or recategorises an account. Existing journal lines are untouched.
	UpdateAccount(ctx context.Context, accountID string, patch domain.AccountPatch) (*domain.Account, error)

	// DeleteAccount removes an account that no journal line references.
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountCalculatorSvc defines calculation operations for account data
type AccountCalculatorSvc interface {
	// GetAccountBalance folds the journal into the account's signed balance.
	GetAccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountCalculatorSvc
}

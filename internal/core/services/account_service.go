package services

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/google/uuid"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	txManager   portsrepo.TransactionManager
	pageSize    int
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, txManager portsrepo.TransactionManager, options ...ServiceOption) portssvc.AccountSvcFacade {
	opts := buildOptions(options)
	return &accountService{
		BaseService: BaseService{recorder: opts.recorder},
		accountRepo: repo,
		txManager:   txManager,
		pageSize:    opts.pageSize,
	}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func validateAccountName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.NewValidationError("name", "must not be empty")
	}
	return name, nil
}

func validateCategory(category domain.AccountCategory) error {
	if !category.IsValid() {
		return apperrors.NewValidationError("category", fmt.Sprintf("must be one of %v", domain.AccountCategories))
	}
	return nil
}

func (s *accountService) RegisterAccount(ctx context.Context, name string, category domain.AccountCategory) (account *domain.Account, err error) {
	defer func() { s.record("register_account", err) }()

	name, err = validateAccountName(name)
	if err != nil {
		return nil, err
	}
	if err = validateCategory(category); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	newAccount := domain.Account{
		AccountID: uuid.NewString(),
		Name:      name,
		Category:  category,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err = s.accountRepo.SaveAccount(ctx, newAccount); err != nil {
		s.LogWarn(ctx, err, "Failed to save account", slog.String("name", name))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account registered",
		slog.String("account_id", newAccount.AccountID),
		slog.String("category", string(category)))
	return &newAccount, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}
	return account, nil
}

// UpdateAccount changes only the account record. Lines already posted keep their
// amounts and sides, so a category change re-signs the derived balance without
// rewriting history.
func (s *accountService) UpdateAccount(ctx context.Context, accountID string, patch domain.AccountPatch) (updated *domain.Account, err error) {
	defer func() { s.record("update_account", err) }()

	if patch.Name != nil {
		name, verr := validateAccountName(*patch.Name)
		if verr != nil {
			return nil, verr
		}
		patch.Name = &name
	}
	if patch.Category != nil {
		if err = validateCategory(*patch.Category); err != nil {
			return nil, err
		}
	}

	err = s.txManager.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		account, err := tx.LockAccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = account
			return nil
		}
		if patch.Name != nil {
			account.Name = *patch.Name
		}
		if patch.Category != nil {
			account.Category = *patch.Category
		}
		account.LastUpdatedAt = time.Now().UTC()
		if err := tx.UpdateAccount(ctx, *account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account %s: %w", accountID, err)
	}
	return updated, nil
}

// DeleteAccount locks the account exclusively before checking for lines, so a
// concurrent posting either finishes first (and the delete fails) or waits and
// then fails its existence check.
func (s *accountService) DeleteAccount(ctx context.Context, accountID string) (err error) {
	defer func() { s.record("delete_account", err) }()

	err = s.txManager.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockAccountForUpdate(ctx, accountID); err != nil {
			return err
		}
		inUse, err := tx.AccountInUse(ctx, accountID)
		if err != nil {
			return err
		}
		if inUse {
			return apperrors.NewConflictError("account", accountID, "account in use by journal lines")
		}
		return tx.DeleteAccount(ctx, accountID)
	})
	if err != nil {
		s.LogWarn(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}

	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID))
	return nil
}

// GetAccountBalance needs no transaction: an account with lines can never be
// deleted, so the two reads cannot observe a half-removed account with history.
func (s *accountService) GetAccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}
	totals, err := s.accountRepo.AccountLineTotals(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fold journal lines", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to calculate balance for account %s: %w", accountID, err)
	}
	normal, err := accounting.NormalSide(account.Category)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "account has an unknown category", err)
	}
	balance, err := accounting.SignedBalance(account.Category, totals)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to sign account balance", err)
	}

	return &domain.AccountBalance{
		AccountID:   account.AccountID,
		Category:    account.Category,
		NormalSide:  normal,
		DebitTotal:  totals.DebitTotal,
		CreditTotal: totals.CreditTotal,
		Balance:     balance,
		AsOf:        time.Now().UTC(),
	}, nil
}

func (s *accountService) ListAccounts(ctx context.Context, filter domain.AccountFilter, limit int, nextToken *string) ([]domain.Account, *string, error) {
	if filter.Category != nil {
		if err := validateCategory(*filter.Category); err != nil {
			return nil, nil, err
		}
	}
	accounts, next, err := s.accountRepo.ListAccounts(ctx, filter, clampLimit(limit, s.pageSize), nextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, next, nil
}

func (s *accountService) IterateAccounts(ctx context.Context, filter domain.AccountFilter) iter.Seq2[domain.Account, error] {
	return func(yield func(domain.Account, error) bool) {
		var token *string
		for {
			page, next, err := s.ListAccounts(ctx, filter, s.pageSize, token)
			if err != nil {
				yield(domain.Account{}, err)
				return
			}
			for _, account := range page {
				if !yield(account, nil) {
					return
				}
			}
			if next == nil {
				return
			}
			token = next
		}
	}
}

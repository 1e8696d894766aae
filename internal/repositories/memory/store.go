// Package memory keeps the whole ledger in process memory. It backs the test
// suites and STORAGE_DRIVER=memory for local runs.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// Store is guarded by one RWMutex. Readers share it; a transaction holds the
// write lock from start to commit, which makes every unit serializable.
type Store struct {
	mu        sync.RWMutex
	accounts  map[string]domain.Account
	names     map[string]string
	entries   map[string]domain.JournalEntry
	reversals map[string]string
	totals    map[string]domain.LineTotals
	lineCount int64
}

// NewStore returns an empty ledger.
func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]domain.Account),
		names:     make(map[string]string),
		entries:   make(map[string]domain.JournalEntry),
		reversals: make(map[string]string),
		totals:    make(map[string]domain.LineTotals),
	}
}

// NewRepositoryProvider wires one Store into every repository port.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo: store,
		JournalRepo: store,
		TxManager:   store,
	}
}

var (
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade = (*Store)(nil)
	_ portsrepo.TransactionManager      = (*Store)(nil)
)

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.AccountID]; exists {
		return apperrors.NewConflictError("account", account.AccountID, "id already exists")
	}
	if _, taken := s.names[account.Name]; taken {
		return apperrors.NewConflictError("account", account.Name, "name already registered")
	}
	s.accounts[account.AccountID] = account
	s.names[account.Name] = account.AccountID
	return nil
}

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.NewNotFoundError("account", accountID)
	}
	return &account, nil
}

func (s *Store) AccountLineTotals(ctx context.Context, accountID string) (domain.LineTotals, error) {
	if err := ctx.Err(); err != nil {
		return domain.LineTotals{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalsOf(accountID), nil
}

func (s *Store) totalsOf(accountID string) domain.LineTotals {
	t, ok := s.totals[accountID]
	if !ok {
		return domain.LineTotals{DebitTotal: decimal.Zero, CreditTotal: decimal.Zero}
	}
	return t
}

// ListAccounts orders by (name, id) and resumes strictly after the token's position.
func (s *Store) ListAccounts(ctx context.Context, filter domain.AccountFilter, limit int, nextToken *string) ([]domain.Account, *string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	var afterName, afterID string
	if nextToken != nil && *nextToken != "" {
		var err error
		afterName, afterID, err = pagination.DecodeAccountToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("nextToken", err.Error())
		}
	}

	s.mu.RLock()
	matched := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if filter.Matches(a) {
			matched = append(matched, a)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b domain.Account) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.AccountID, b.AccountID))
	})
	if afterID != "" {
		start, _ := slices.BinarySearchFunc(matched, afterName, func(a domain.Account, name string) int {
			return cmp.Compare(a.Name, name)
		})
		for start < len(matched) && matched[start].Name == afterName && matched[start].AccountID <= afterID {
			start++
		}
		matched = matched[start:]
	}

	if len(matched) > limit {
		page := matched[:limit]
		last := page[len(page)-1]
		token := pagination.EncodeAccountToken(last.Name, last.AccountID)
		return page, &token, nil
	}
	return matched, nil, nil
}

func (s *Store) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[entryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("journal entry", entryID)
	}
	return cloneEntry(entry), nil
}

// ListEntries orders by (date desc, id desc).
func (s *Store) ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	var afterDate time.Time
	var afterID string
	if nextToken != nil && *nextToken != "" {
		var err error
		afterDate, afterID, err = pagination.DecodeEntryToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("nextToken", err.Error())
		}
	}

	s.mu.RLock()
	matched := make([]domain.JournalEntry, 0)
	for _, e := range s.entries {
		if !filter.Matches(e) {
			continue
		}
		if afterID != "" && !entryAfter(e, afterDate, afterID) {
			continue
		}
		matched = append(matched, *cloneEntry(e))
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b domain.JournalEntry) int {
		return cmp.Or(b.EntryDate.Compare(a.EntryDate), cmp.Compare(b.EntryID, a.EntryID))
	})

	if len(matched) > limit {
		page := matched[:limit]
		last := page[len(page)-1]
		token := pagination.EncodeEntryToken(last.EntryDate, last.EntryID)
		return page, &token, nil
	}
	return matched, nil, nil
}

// entryAfter reports whether e sorts after the cursor in (date desc, id desc) order.
func entryAfter(e domain.JournalEntry, date time.Time, id string) bool {
	if e.EntryDate.Before(date) {
		return true
	}
	return e.EntryDate.Equal(date) && e.EntryID < id
}

func (s *Store) CountLines(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lineCount, nil
}

func cloneEntry(e domain.JournalEntry) *domain.JournalEntry {
	e.Lines = slices.Clone(e.Lines)
	if e.ReversesEntryID != nil {
		id := *e.ReversesEntryID
		e.ReversesEntryID = &id
	}
	return &e
}

package services

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/ids"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/google/uuid"
)

const minEntryLines = 2

// journalService posts and reads journal entries.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	txManager   portsrepo.TransactionManager
	policies    []PostingPolicy
	pageSize    int
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, txManager portsrepo.TransactionManager, options ...ServiceOption) portssvc.JournalSvcFacade {
	opts := buildOptions(options)
	return &journalService{
		BaseService: BaseService{recorder: opts.recorder},
		journalRepo: journalRepo,
		txManager:   txManager,
		policies:    opts.policies,
		pageSize:    opts.pageSize,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// PostEntry validates in a fixed order so callers always see the first problem:
// line count, header fields, account existence, line shapes, balance, then policies.
// Existence is checked inside the same unit that writes the entry.
func (s *journalService) PostEntry(ctx context.Context, input domain.PostEntryInput) (entry *domain.JournalEntry, err error) {
	defer func() { s.record("post_entry", err) }()

	if len(input.Lines) < minEntryLines {
		return nil, apperrors.NewValidationError("lines", fmt.Sprintf("an entry needs at least %d lines, got %d", minEntryLines, len(input.Lines)))
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("description", "must not be empty")
	}
	if input.Date.IsZero() {
		return nil, apperrors.NewValidationError("date", "is required")
	}

	newEntry := domain.JournalEntry{
		EntryID:     ids.New(),
		EntryDate:   domain.TruncateDate(input.Date),
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	err = s.txManager.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return s.post(ctx, tx, &newEntry, input.Lines)
	})
	if err != nil {
		s.LogWarn(ctx, err, "Journal entry rejected", slog.Int("line_count", len(input.Lines)))
		return nil, fmt.Errorf("failed to post journal entry: %w", err)
	}

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", newEntry.EntryID),
		slog.Int("line_count", len(newEntry.Lines)))
	return &newEntry, nil
}

// post runs the in-unit checks and writes the entry. It may run more than once when
// the transaction manager retries a serialization failure.
func (s *journalService) post(ctx context.Context, tx portsrepo.LedgerTx, entry *domain.JournalEntry, lines []domain.LineInput) error {
	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.AccountID]; ok || l.AccountID == "" {
			continue
		}
		seen[l.AccountID] = struct{}{}
		accountIDs = append(accountIDs, l.AccountID)
	}

	accounts, err := tx.LockAccountsForPosting(ctx, accountIDs)
	if err != nil {
		return err
	}
	s.LogDebug(ctx, "Accounts locked for posting",
		slog.String("entry_id", entry.EntryID),
		slog.Int("requested", len(accountIDs)),
		slog.Int("found", len(accounts)))
	for i, l := range lines {
		if _, ok := accounts[l.AccountID]; !ok {
			return &apperrors.NotFoundError{Resource: "account", ID: l.AccountID, LineIndex: i}
		}
	}

	if err := accounting.ValidateLineShapes(lines); err != nil {
		return err
	}
	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return err
	}
	for _, policy := range s.policies {
		if err := policy.Check(ctx, tx, accounts, lines); err != nil {
			return err
		}
	}

	entry.Lines = make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		entry.Lines[i] = domain.JournalLine{
			LineID:    uuid.NewString(),
			EntryID:   entry.EntryID,
			LineNo:    i,
			AccountID: l.AccountID,
			Side:      l.Side,
			Amount:    l.Amount,
		}
	}
	return tx.InsertEntry(ctx, *entry)
}

// ReverseEntry posts the mirror image of an existing entry. An entry can be
// reversed only once; the link is stored on the reversing entry.
func (s *journalService) ReverseEntry(ctx context.Context, entryID string, input domain.ReverseEntryInput) (entry *domain.JournalEntry, err error) {
	defer func() { s.record("reverse_entry", err) }()

	reversal := domain.JournalEntry{
		EntryID:         ids.New(),
		ReversesEntryID: &entryID,
		CreatedAt:       time.Now().UTC(),
	}

	err = s.txManager.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		original, err := tx.FindEntryByID(ctx, entryID)
		if err != nil {
			return err
		}
		existing, err := tx.FindReversalOf(ctx, entryID)
		if err != nil {
			return err
		}
		if existing != "" {
			return apperrors.NewConflictError("journal entry", entryID, "already reversed by "+existing)
		}

		reversal.EntryDate = original.EntryDate
		if input.Date != nil {
			reversal.EntryDate = domain.TruncateDate(*input.Date)
		}
		reversal.Description = strings.TrimSpace(input.Description)
		if reversal.Description == "" {
			reversal.Description = "Reversal of " + original.Description
		}

		lines := make([]domain.LineInput, len(original.Lines))
		for i, l := range original.Lines {
			lines[i] = domain.LineInput{AccountID: l.AccountID, Side: l.Side.Opposite(), Amount: l.Amount}
		}
		return s.post(ctx, tx, &reversal, lines)
	})
	if err != nil {
		s.LogWarn(ctx, err, "Journal entry reversal rejected", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to reverse journal entry %s: %w", entryID, err)
	}

	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("entry_id", entryID),
		slog.String("reversal_id", reversal.EntryID))
	return &reversal, nil
}

func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry %s: %w", entryID, err)
	}
	return entry, nil
}

func (s *journalService) ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if filter.From != nil && filter.To != nil && domain.TruncateDate(*filter.From).After(domain.TruncateDate(*filter.To)) {
		return nil, nil, apperrors.NewValidationError("from", "must not be after to")
	}
	entries, next, err := s.journalRepo.ListEntries(ctx, filter, clampLimit(limit, s.pageSize), nextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return entries, next, nil
}

func (s *journalService) IterateEntries(ctx context.Context, filter domain.EntryFilter) iter.Seq2[domain.JournalEntry, error] {
	return func(yield func(domain.JournalEntry, error) bool) {
		var token *string
		for {
			page, next, err := s.ListEntries(ctx, filter, s.pageSize, token)
			if err != nil {
				yield(domain.JournalEntry{}, err)
				return
			}
			for _, entry := range page {
				if !yield(entry, nil) {
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

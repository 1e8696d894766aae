package pgsql

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

// pgxLedgerTx binds the LedgerTx operations to one serializable pgx transaction.
type pgxLedgerTx struct {
	tx pgx.Tx
}

var _ portsrepo.LedgerTx = (*pgxLedgerTx)(nil)

// LockAccountsForPosting takes FOR SHARE row locks in id order. Concurrent posts
// share them; a delete's FOR UPDATE waits for them to finish.
func (t *pgxLedgerTx) LockAccountsForPosting(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	found := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return found, nil
	}

	query := "SELECT " + accountColumns + " FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR SHARE"
	rows, err := t.tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts for posting: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account: %w", err)
		}
		found[m.AccountID] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked accounts: %w", err)
	}
	return found, nil
}

func (t *pgxLedgerTx) LockAccountForUpdate(ctx context.Context, accountID string) (*domain.Account, error) {
	return findAccount(ctx, t.tx, accountID, "FOR UPDATE")
}

func (t *pgxLedgerTx) AccountLineTotals(ctx context.Context, accountID string) (domain.LineTotals, error) {
	return accountLineTotals(ctx, t.tx, accountID)
}

func (t *pgxLedgerTx) AccountInUse(ctx context.Context, accountID string) (bool, error) {
	var inUse bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_lines WHERE account_id = $1)`, accountID).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("failed to check lines for account %s: %w", accountID, err)
	}
	return inUse, nil
}

func (t *pgxLedgerTx) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET name = $2, category = $3, last_updated_at = $4
		WHERE account_id = $1;
	`
	tag, err := t.tx.Exec(ctx, query, m.AccountID, m.Name, m.Category, m.LastUpdatedAt)
	if err != nil {
		if pgErrorCode(err) == codeUniqueViolation {
			return apperrors.NewConflictError("account", m.Name, "name already registered")
		}
		return translateWriteError(err, "account", m.AccountID, "failed to update account")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account", m.AccountID)
	}
	return nil
}

// DeleteAccount relies on the ON DELETE RESTRICT foreign key from journal_lines
// as a last line of defence.
func (t *pgxLedgerTx) DeleteAccount(ctx context.Context, accountID string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM accounts WHERE account_id = $1`, accountID)
	if err != nil {
		if pgErrorCode(err) == codeForeignKeyViolation {
			return apperrors.NewConflictError("account", accountID, "account in use by journal lines")
		}
		return translateWriteError(err, "account", accountID, "failed to delete account")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account", accountID)
	}
	return nil
}

func (t *pgxLedgerTx) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return findEntry(ctx, t.tx, entryID)
}

func (t *pgxLedgerTx) FindReversalOf(ctx context.Context, entryID string) (string, error) {
	var reversalID string
	err := t.tx.QueryRow(ctx, `SELECT entry_id FROM journal_entries WHERE reverses_entry_id = $1`, entryID).Scan(&reversalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up reversal of %s: %w", entryID, err)
	}
	return reversalID, nil
}

// InsertEntry writes the header and every line in a single batch round trip.
func (t *pgxLedgerTx) InsertEntry(ctx context.Context, entry domain.JournalEntry) error {
	header := mapping.ToModelJournalEntry(entry)

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO journal_entries (entry_id, entry_date, description, reverses_entry_id, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`, header.EntryID, header.EntryDate, header.Description, header.ReversesEntryID, header.CreatedAt)

	lineQuery := `
		INSERT INTO journal_lines (line_id, entry_id, line_no, account_id, side, amount)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for _, l := range entry.Lines {
		m := mapping.ToModelJournalLine(l)
		batch.Queue(lineQuery, m.LineID, m.EntryID, m.LineNo, m.AccountID, m.Side, m.Amount)
	}

	if err := t.tx.SendBatch(ctx, batch).Close(); err != nil {
		if pgErrorCode(err) == codeUniqueViolation && entry.ReversesEntryID != nil {
			return apperrors.NewConflictError("journal entry", *entry.ReversesEntryID, "already reversed")
		}
		if pgErrorCode(err) == codeForeignKeyViolation {
			return apperrors.NewNotFoundError("account", "referenced by entry "+header.EntryID)
		}
		if isRetryable(err) {
			return err
		}
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to insert journal entry "+header.EntryID, err)
	}
	return nil
}

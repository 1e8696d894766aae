package pgsql

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
	"github.com/SscSPs/ledger_core/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `e.entry_id, e.entry_date, e.description, e.reverses_entry_id, e.created_at`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries and lines.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return findEntry(ctx, r.Pool, entryID)
}

func (r *PgxJournalRepository) CountLines(ctx context.Context) (int64, error) {
	var n int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM journal_lines;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count journal lines: %w", err)
	}
	return n, nil
}

// ListEntries returns one page ordered by (entry_date DESC, entry_id DESC) with lines attached.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	query, args, err := buildEntryListQuery(filter, limit, nextToken)
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query journal entries", err)
	}
	defer rows.Close()

	modelEntries := make([]models.JournalEntry, 0, limit+1)
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan journal entry row", err)
		}
		modelEntries = append(modelEntries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(http.StatusInternalServerError, "error iterating journal entry rows", err)
	}

	var nextTokenVal *string
	if len(modelEntries) > limit {
		last := modelEntries[limit-1]
		token := pagination.EncodeEntryToken(last.EntryDate, last.EntryID)
		nextTokenVal = &token
		modelEntries = modelEntries[:limit]
	}

	entryIDs := make([]string, len(modelEntries))
	for i, m := range modelEntries {
		entryIDs[i] = m.EntryID
	}
	linesByEntry, err := findLinesByEntryIDs(ctx, r.Pool, entryIDs)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]domain.JournalEntry, len(modelEntries))
	for i, m := range modelEntries {
		entries[i] = mapping.ToDomainJournalEntry(m, linesByEntry[m.EntryID])
	}
	return entries, nextTokenVal, nil
}

// buildEntryListQuery fetches limit+1 headers so the caller can tell whether another page exists.
func buildEntryListQuery(filter domain.EntryFilter, limit int, nextToken *string) (string, []any, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.AccountID != "" {
		where = append(where, "EXISTS (SELECT 1 FROM journal_lines l WHERE l.entry_id = e.entry_id AND l.account_id = "+arg(filter.AccountID)+")")
	}
	if filter.From != nil {
		where = append(where, "e.entry_date >= "+arg(domain.TruncateDate(*filter.From)))
	}
	if filter.To != nil {
		where = append(where, "e.entry_date <= "+arg(domain.TruncateDate(*filter.To)))
	}
	if filter.DescriptionLike != "" {
		where = append(where, "e.description ILIKE "+arg(containsPattern(filter.DescriptionLike))+` ESCAPE '\'`)
	}
	if nextToken != nil && *nextToken != "" {
		lastDate, lastID, err := pagination.DecodeEntryToken(*nextToken)
		if err != nil {
			return "", nil, apperrors.NewValidationError("nextToken", err.Error())
		}
		where = append(where, "(e.entry_date, e.entry_id) < ("+arg(lastDate)+", "+arg(lastID)+")")
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + entryColumns + " FROM journal_entries e")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY e.entry_date DESC, e.entry_id DESC LIMIT " + arg(limit+1))
	return sb.String(), args, nil
}

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(&m.EntryID, &m.EntryDate, &m.Description, &m.ReversesEntryID, &m.CreatedAt)
	return m, err
}

func findEntry(ctx context.Context, q dbtx, entryID string) (*domain.JournalEntry, error) {
	m, err := scanEntry(q.QueryRow(ctx, "SELECT "+entryColumns+" FROM journal_entries e WHERE e.entry_id = $1", entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("journal entry", entryID)
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}
	lines, err := findLinesByEntryIDs(ctx, q, []string{entryID})
	if err != nil {
		return nil, err
	}
	entry := mapping.ToDomainJournalEntry(m, lines[entryID])
	return &entry, nil
}

// findLinesByEntryIDs groups lines by entry, each group in posting order.
func findLinesByEntryIDs(ctx context.Context, q dbtx, entryIDs []string) (map[string][]models.JournalLine, error) {
	result := make(map[string][]models.JournalLine, len(entryIDs))
	if len(entryIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT line_id, entry_id, line_no, account_id, side, amount
		FROM journal_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, line_no;
	`
	rows, err := q.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.JournalLine
		if err := rows.Scan(&l.LineID, &l.EntryID, &l.LineNo, &l.AccountID, &l.Side, &l.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		result[l.EntryID] = append(result[l.EntryID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal lines: %w", err)
	}
	return result, nil
}

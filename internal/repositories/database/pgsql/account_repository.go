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

const accountColumns = `account_id, name, category, created_at, last_updated_at`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	modelAcc := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (account_id, name, category, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelAcc.AccountID,
		modelAcc.Name,
		modelAcc.Category,
		modelAcc.CreatedAt,
		modelAcc.LastUpdatedAt,
	)
	if err != nil {
		if pgErrorCode(err) == codeUniqueViolation {
			return apperrors.NewConflictError("account", modelAcc.Name, "name already registered")
		}
		return fmt.Errorf("failed to save account %s: %w", modelAcc.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return findAccount(ctx, r.Pool, accountID, "")
}

// AccountLineTotals folds every line of the account in SQL.
func (r *PgxAccountRepository) AccountLineTotals(ctx context.Context, accountID string) (domain.LineTotals, error) {
	return accountLineTotals(ctx, r.Pool, accountID)
}

// ListAccounts retrieves one page of accounts ordered by (name, account_id).
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter, limit int, nextToken *string) ([]domain.Account, *string, error) {
	query, args, err := buildAccountListQuery(filter, limit, nextToken)
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query accounts", err)
	}
	defer rows.Close()

	modelAccounts := make([]models.Account, 0, limit+1)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan account row", err)
		}
		modelAccounts = append(modelAccounts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(http.StatusInternalServerError, "error iterating account rows", err)
	}

	var nextTokenVal *string
	if len(modelAccounts) > limit {
		last := modelAccounts[limit-1]
		token := pagination.EncodeAccountToken(last.Name, last.AccountID)
		nextTokenVal = &token
		modelAccounts = modelAccounts[:limit]
	}
	return mapping.ToDomainAccountSlice(modelAccounts), nextTokenVal, nil
}

// buildAccountListQuery fetches limit+1 rows so the caller can tell whether another page exists.
func buildAccountListQuery(filter domain.AccountFilter, limit int, nextToken *string) (string, []any, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Category != nil {
		where = append(where, "category = "+arg(string(*filter.Category)))
	}
	if filter.NameLike != "" {
		where = append(where, "name ILIKE "+arg(containsPattern(filter.NameLike))+` ESCAPE '\'`)
	}
	if nextToken != nil && *nextToken != "" {
		lastName, lastID, err := pagination.DecodeAccountToken(*nextToken)
		if err != nil {
			return "", nil, apperrors.NewValidationError("nextToken", err.Error())
		}
		where = append(where, "(name, account_id) > ("+arg(lastName)+", "+arg(lastID)+")")
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + accountColumns + " FROM accounts")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY name, account_id LIMIT " + arg(limit+1))
	return sb.String(), args, nil
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(&m.AccountID, &m.Name, &m.Category, &m.CreatedAt, &m.LastUpdatedAt)
	return m, err
}

// findAccount loads one account; lockClause is appended verbatim (e.g. "FOR UPDATE").
func findAccount(ctx context.Context, q dbtx, accountID, lockClause string) (*domain.Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts WHERE account_id = $1 " + lockClause
	m, err := scanAccount(q.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account", accountID)
		}
		if isRetryable(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

func accountLineTotals(ctx context.Context, q dbtx, accountID string) (domain.LineTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE side = 'DEBIT'), 0),
			COALESCE(SUM(amount) FILTER (WHERE side = 'CREDIT'), 0),
			COUNT(*)
		FROM journal_lines
		WHERE account_id = $1;
	`
	var totals domain.LineTotals
	err := q.QueryRow(ctx, query, accountID).Scan(&totals.DebitTotal, &totals.CreditTotal, &totals.LineCount)
	if err != nil {
		if isRetryable(err) {
			return domain.LineTotals{}, err
		}
		return domain.LineTotals{}, fmt.Errorf("failed to fold lines for account %s: %w", accountID, err)
	}
	return totals, nil
}

package pgsql

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres SQLSTATE codes the repositories react to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

const retryBackoff = 15 * time.Millisecond

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx so read helpers run either way.
type dbtx interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txBeginner is the part of *pgxpool.Pool that RunInTx needs.
type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool       *pgxpool.Pool
	MaxRetries int

	// beginner overrides Pool for starting transactions when set.
	beginner txBeginner
}

var _ portsrepo.TransactionManager = (*BaseRepository)(nil)

// RunInTx runs fn inside a SERIALIZABLE transaction. Serialization failures and
// deadlocks roll back and re-run fn up to MaxRetries times; any other error is
// returned as is.
func (r *BaseRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	for attempt := 0; ; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		if attempt >= r.MaxRetries {
			return apperrors.NewAppError(http.StatusServiceUnavailable, "transaction could not be serialized, retry the request", err)
		}

		middleware.GetLoggerFromCtx(ctx).Warn("Retrying serializable transaction",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * retryBackoff):
		}
	}
}

func (r *BaseRepository) runOnce(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	var beginner txBeginner = r.Pool
	if r.beginner != nil {
		beginner = r.beginner
	}
	tx, err := beginner.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to begin transaction", err)
	}
	defer r.Rollback(ctx, tx) // no-op once committed

	if err := fn(ctx, &pgxLedgerTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isRetryable(err) {
			return err
		}
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to rollback transaction", err)
	}
	return nil
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isRetryable(err error) bool {
	switch pgErrorCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

// translateWriteError maps constraint violations to ledger errors. Retryable
// errors pass through untouched so RunInTx can see them.
func translateWriteError(err error, resource, id, msg string) error {
	switch pgErrorCode(err) {
	case codeUniqueViolation:
		return apperrors.NewConflictError(resource, id, "already exists")
	case codeForeignKeyViolation:
		return apperrors.NewConflictError(resource, id, "referenced by other ledger rows")
	case codeSerializationFailure, codeDeadlockDetected:
		return err
	}
	return apperrors.NewAppError(http.StatusInternalServerError, msg, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns free text into an ILIKE pattern matching it anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

package pgsql

import (
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the pgx repositories. maxRetries bounds how often a
// transaction is re-run after a serialization failure.
func NewRepositoryProvider(dbPool *pgxpool.Pool, maxRetries int) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo: newPgxAccountRepository(dbPool),
		JournalRepo: newPgxJournalRepository(dbPool),
		TxManager:   &BaseRepository{Pool: dbPool, MaxRetries: maxRetries},
	}
}

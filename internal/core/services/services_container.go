package services

import (
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, recorder OperationRecorder) *portssvc.ServiceContainer {
	opts := []ServiceOption{
		WithRecorder(recorder),
		WithPageSize(cfg.ListPageSize),
	}
	if cfg.EnforceCreditCoverage {
		opts = append(opts, WithPostingPolicies(CreditCoveragePolicy{}))
	}

	return &portssvc.ServiceContainer{
		Account: NewAccountService(repos.AccountRepo, repos.TxManager, opts...),
		Journal: NewJournalService(repos.JournalRepo, repos.TxManager, opts...),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade = (*accountService)(nil)
	_ portssvc.JournalSvcFacade = (*journalService)(nil)
)

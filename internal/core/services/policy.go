package services

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// PostingPolicy is an optional business rule checked after an entry has passed the
// double-entry checks and before it is written. It runs inside the posting unit.
type PostingPolicy interface {
	Name() string
	Check(ctx context.Context, tx portsrepo.LedgerTx, accounts map[string]domain.Account, lines []domain.LineInput) error
}

// CreditCoveragePolicy rejects entries that would leave a credit-normal account
// (liability, equity, revenue) with more debits than credits recorded against it.
// Debit-normal accounts are not restricted.
type CreditCoveragePolicy struct{}

var _ PostingPolicy = CreditCoveragePolicy{}

func (CreditCoveragePolicy) Name() string { return "credit_coverage" }

func (p CreditCoveragePolicy) Check(ctx context.Context, tx portsrepo.LedgerTx, accounts map[string]domain.Account, lines []domain.LineInput) error {
	type sides struct{ debit, credit decimal.Decimal }
	var order []string
	perAccount := make(map[string]*sides)
	for _, l := range lines {
		acc, ok := perAccount[l.AccountID]
		if !ok {
			acc = &sides{debit: decimal.Zero, credit: decimal.Zero}
			perAccount[l.AccountID] = acc
			order = append(order, l.AccountID)
		}
		if l.Side == domain.Debit {
			acc.debit = acc.debit.Add(l.Amount)
		} else {
			acc.credit = acc.credit.Add(l.Amount)
		}
	}

	for _, accountID := range order {
		acc := perAccount[accountID]
		if acc.debit.IsZero() {
			continue
		}
		if normal, err := accounting.NormalSide(accounts[accountID].Category); err != nil || normal != domain.Credit {
			continue
		}
		prior, err := tx.AccountLineTotals(ctx, accountID)
		if err != nil {
			return err
		}
		debits := prior.DebitTotal.Add(acc.debit)
		credits := prior.CreditTotal.Add(acc.credit)
		if debits.GreaterThan(credits) {
			return &apperrors.PolicyError{
				Policy:    p.Name(),
				AccountID: accountID,
				Message:   fmt.Sprintf("debits %s would exceed recorded credits %s", debits, credits),
			}
		}
	}
	return nil
}

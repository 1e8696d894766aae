package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Setup ---

type AccountServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	recorder *recordingRecorder
	accounts portssvc.AccountSvcFacade
	journal  portssvc.JournalSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.NewStore()
	suite.recorder = &recordingRecorder{}
	suite.accounts = services.NewAccountService(suite.store, suite.store, services.WithRecorder(suite.recorder), services.WithPageSize(2))
	suite.journal = services.NewJournalService(suite.store, suite.store)
}

func (suite *AccountServiceTestSuite) register(name string, category domain.AccountCategory) *domain.Account {
	acc, err := suite.accounts.RegisterAccount(suite.ctx, name, category)
	suite.Require().NoError(err)
	return acc
}

func (suite *AccountServiceTestSuite) post(lines ...domain.LineInput) *domain.JournalEntry {
	entry, err := suite.journal.PostEntry(suite.ctx, domain.PostEntryInput{
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Description: "test entry",
		Lines:       lines,
	})
	suite.Require().NoError(err)
	return entry
}

// --- Test Cases ---

func (suite *AccountServiceTestSuite) TestRegisterAccount_Success() {
	acc, err := suite.accounts.RegisterAccount(suite.ctx, "  Cash  ", domain.Asset)

	suite.Require().NoError(err)
	suite.NotEmpty(acc.AccountID)
	suite.Equal("Cash", acc.Name)
	suite.Equal(domain.Asset, acc.Category)
	suite.False(acc.CreatedAt.IsZero())
	suite.Equal([]string{"register_account:ok"}, suite.recorder.calls)
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_EmptyName() {
	_, err := suite.accounts.RegisterAccount(suite.ctx, "   ", domain.Asset)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	var verr *apperrors.ValidationError
	suite.Require().ErrorAs(err, &verr)
	suite.Equal("name", verr.Field)
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_InvalidCategory() {
	_, err := suite.accounts.RegisterAccount(suite.ctx, "Cash", domain.AccountCategory("CASHFLOW"))

	var verr *apperrors.ValidationError
	suite.Require().ErrorAs(err, &verr)
	suite.Equal("category", verr.Field)
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_DuplicateName() {
	suite.register("Cash", domain.Asset)

	_, err := suite.accounts.RegisterAccount(suite.ctx, "Cash", domain.Expense)

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Equal("register_account:error", suite.recorder.calls[len(suite.recorder.calls)-1])
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_RenameAndRecategorise() {
	acc := suite.register("Sundry", domain.Expense)
	name := "Sundry income"
	category := domain.Revenue

	updated, err := suite.accounts.UpdateAccount(suite.ctx, acc.AccountID, domain.AccountPatch{Name: &name, Category: &category})

	suite.Require().NoError(err)
	suite.Equal(name, updated.Name)
	suite.Equal(domain.Revenue, updated.Category)

	stored, err := suite.accounts.GetAccountByID(suite.ctx, acc.AccountID)
	suite.Require().NoError(err)
	suite.Equal(name, stored.Name)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_CategoryChangeResignsBalance() {
	cash := suite.register("Cash", domain.Asset)
	other := suite.register("Suspense", domain.Expense)
	suite.post(
		domain.LineInput{AccountID: other.AccountID, Side: domain.Debit, Amount: decimal.NewFromInt(40)},
		domain.LineInput{AccountID: cash.AccountID, Side: domain.Credit, Amount: decimal.NewFromInt(40)},
	)

	before, err := suite.accounts.GetAccountBalance(suite.ctx, other.AccountID)
	suite.Require().NoError(err)
	suite.True(before.Balance.Equal(decimal.NewFromInt(40)))

	liability := domain.Liability
	_, err = suite.accounts.UpdateAccount(suite.ctx, other.AccountID, domain.AccountPatch{Category: &liability})
	suite.Require().NoError(err)

	after, err := suite.accounts.GetAccountBalance(suite.ctx, other.AccountID)
	suite.Require().NoError(err)
	suite.True(after.Balance.Equal(decimal.NewFromInt(-40)))
	suite.True(after.DebitTotal.Equal(before.DebitTotal))
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_NotFound() {
	name := "Whatever"
	_, err := suite.accounts.UpdateAccount(suite.ctx, "missing", domain.AccountPatch{Name: &name})
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_DuplicateName() {
	suite.register("Cash", domain.Asset)
	bank := suite.register("Bank", domain.Asset)
	name := "Cash"

	_, err := suite.accounts.UpdateAccount(suite.ctx, bank.AccountID, domain.AccountPatch{Name: &name})
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_EmptyPatchReturnsAccount() {
	acc := suite.register("Cash", domain.Asset)

	got, err := suite.accounts.UpdateAccount(suite.ctx, acc.AccountID, domain.AccountPatch{})
	suite.Require().NoError(err)
	suite.Equal(acc.Name, got.Name)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_Unused() {
	acc := suite.register("Cash", domain.Asset)

	suite.Require().NoError(suite.accounts.DeleteAccount(suite.ctx, acc.AccountID))

	_, err := suite.accounts.GetAccountByID(suite.ctx, acc.AccountID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_InUse() {
	cash := suite.register("Cash", domain.Asset)
	capital := suite.register("Capital", domain.Equity)
	suite.post(
		domain.LineInput{AccountID: cash.AccountID, Side: domain.Debit, Amount: decimal.NewFromInt(1)},
		domain.LineInput{AccountID: capital.AccountID, Side: domain.Credit, Amount: decimal.NewFromInt(1)},
	)

	err := suite.accounts.DeleteAccount(suite.ctx, cash.AccountID)

	suite.ErrorIs(err, apperrors.ErrConflict)
	_, err = suite.accounts.GetAccountByID(suite.ctx, cash.AccountID)
	suite.NoError(err)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_NotFound() {
	suite.ErrorIs(suite.accounts.DeleteAccount(suite.ctx, "missing"), apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestGetAccountBalance_NormalSides() {
	cash := suite.register("Cash", domain.Asset)
	loan := suite.register("Loan", domain.Liability)
	sales := suite.register("Sales", domain.Revenue)

	suite.post(
		domain.LineInput{AccountID: cash.AccountID, Side: domain.Debit, Amount: decimal.RequireFromString("500.00")},
		domain.LineInput{AccountID: loan.AccountID, Side: domain.Credit, Amount: decimal.RequireFromString("500.00")},
	)
	suite.post(
		domain.LineInput{AccountID: cash.AccountID, Side: domain.Debit, Amount: decimal.RequireFromString("0.10")},
		domain.LineInput{AccountID: sales.AccountID, Side: domain.Credit, Amount: decimal.RequireFromString("0.10")},
	)
	suite.post(
		domain.LineInput{AccountID: loan.AccountID, Side: domain.Debit, Amount: decimal.RequireFromString("100")},
		domain.LineInput{AccountID: cash.AccountID, Side: domain.Credit, Amount: decimal.RequireFromString("100")},
	)

	cashBal, err := suite.accounts.GetAccountBalance(suite.ctx, cash.AccountID)
	suite.Require().NoError(err)
	suite.Equal(domain.Debit, cashBal.NormalSide)
	suite.Equal("400.1", cashBal.Balance.String())

	loanBal, err := suite.accounts.GetAccountBalance(suite.ctx, loan.AccountID)
	suite.Require().NoError(err)
	suite.Equal(domain.Credit, loanBal.NormalSide)
	suite.Equal("400", loanBal.Balance.String())

	salesBal, err := suite.accounts.GetAccountBalance(suite.ctx, sales.AccountID)
	suite.Require().NoError(err)
	suite.Equal("0.1", salesBal.Balance.String())
}

func (suite *AccountServiceTestSuite) TestGetAccountBalance_NoLines() {
	acc := suite.register("Cash", domain.Asset)

	bal, err := suite.accounts.GetAccountBalance(suite.ctx, acc.AccountID)
	suite.Require().NoError(err)
	suite.True(bal.Balance.IsZero())
}

func (suite *AccountServiceTestSuite) TestGetAccountBalance_NotFound() {
	_, err := suite.accounts.GetAccountBalance(suite.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestGetAccountBalance_UnknownStoredCategory() {
	suite.Require().NoError(suite.store.SaveAccount(suite.ctx, domain.Account{
		AccountID: "legacy",
		Name:      "Legacy income",
		Category:  domain.AccountCategory("INCOME"),
	}))

	_, err := suite.accounts.GetAccountBalance(suite.ctx, "legacy")
	var appErr *apperrors.AppError
	suite.Require().ErrorAs(err, &appErr)
	suite.Equal(500, appErr.Code)
}

func (suite *AccountServiceTestSuite) TestListAccounts_InvalidCategoryFilter() {
	bogus := domain.AccountCategory("BOGUS")
	_, _, err := suite.accounts.ListAccounts(suite.ctx, domain.AccountFilter{Category: &bogus}, 10, nil)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestIterateAccounts_WalksAllPages() {
	for _, name := range []string{"E", "D", "C", "B", "A"} {
		suite.register(name, domain.Asset)
	}

	var names []string
	for acc, err := range suite.accounts.IterateAccounts(suite.ctx, domain.AccountFilter{}) {
		suite.Require().NoError(err)
		names = append(names, acc.Name)
	}
	suite.Equal([]string{"A", "B", "C", "D", "E"}, names)
}

func (suite *AccountServiceTestSuite) TestIterateAccounts_StopsEarly() {
	for _, name := range []string{"A", "B", "C"} {
		suite.register(name, domain.Asset)
	}

	count := 0
	for range suite.accounts.IterateAccounts(suite.ctx, domain.AccountFilter{}) {
		count++
		if count == 1 {
			break
		}
	}
	suite.Equal(1, count)
}

func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

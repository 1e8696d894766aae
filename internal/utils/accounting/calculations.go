package accounting

import (
	"fmt"
	"math/big"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// NormalSide returns the side on which an account of the given category increases.
//
//	ASSET, EXPENSE                -> DEBIT  (balance = debits - credits)
//	LIABILITY, EQUITY, REVENUE    -> CREDIT (balance = credits - debits)
func NormalSide(category domain.AccountCategory) (domain.EntrySide, error) {
	switch category {
	case domain.Asset, domain.Expense:
		return domain.Debit, nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return domain.Credit, nil
	default:
		return "", fmt.Errorf("unknown account category '%s'", category)
	}
}

// SignedBalance folds debit and credit totals into a balance for the given category.
func SignedBalance(category domain.AccountCategory, totals domain.LineTotals) (decimal.Decimal, error) {
	normal, err := NormalSide(category)
	if err != nil {
		return decimal.Zero, err
	}
	net := totals.DebitTotal.Sub(totals.CreditTotal)
	if normal == domain.Credit {
		net = net.Neg()
	}
	return net, nil
}

// Amounts are stored as NUMERIC(38, 18).
const (
	MaxAmountScale         = 18
	MaxAmountIntegerDigits = 20
)

// ValidateLineShapes checks rule 3 of posting: every side is known and every amount
// is > 0 and fits the stored precision. It runs before any totals are summed.
func ValidateLineShapes(lines []domain.LineInput) error {
	for i, l := range lines {
		if !l.Side.IsValid() {
			return apperrors.NewLineValidationError(i, "side", fmt.Sprintf("must be %s or %s", domain.Debit, domain.Credit))
		}
		if !l.Amount.IsPositive() {
			return apperrors.NewLineValidationError(i, "amount", "must be greater than zero")
		}
		if msg := checkAmountPrecision(l.Amount); msg != "" {
			return apperrors.NewLineValidationError(i, "amount", msg)
		}
	}
	return nil
}

// checkAmountPrecision works on the coefficient and exponent only, so an input
// like 1e-2000000000 is rejected without rescaling it.
func checkAmountPrecision(amount decimal.Decimal) string {
	coef := amount.Coefficient()
	coef.Abs(coef)
	exp := int64(amount.Exponent())
	digits := int64(len(coef.Text(10)))

	if digits+exp > MaxAmountIntegerDigits {
		return fmt.Sprintf("must have at most %d integer digits", MaxAmountIntegerDigits)
	}
	if exp >= -MaxAmountScale {
		return ""
	}

	// Trailing zeros beyond the scale are harmless; anything else would be rounded.
	scaleMsg := fmt.Sprintf("must have at most %d decimal places", MaxAmountScale)
	drop := -MaxAmountScale - exp
	if drop >= digits {
		return scaleMsg
	}
	ten, rem := big.NewInt(10), new(big.Int)
	for ; drop > 0; drop-- {
		coef.QuoRem(coef, ten, rem)
		if rem.Sign() != 0 {
			return scaleMsg
		}
	}
	return ""
}

// EntryTotals sums both sides with exact decimal arithmetic.
func EntryTotals(lines []domain.LineInput) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		if l.Side == domain.Debit {
			debit = debit.Add(l.Amount)
		} else {
			credit = credit.Add(l.Amount)
		}
	}
	return debit, credit
}

// ValidateEntryBalance checks rules 4 and 5 of posting: debits equal credits
// and neither side is empty.
func ValidateEntryBalance(lines []domain.LineInput) error {
	debit, credit := EntryTotals(lines)
	if !debit.Equal(credit) {
		return &apperrors.ImbalanceError{DebitTotal: debit, CreditTotal: credit}
	}
	if !debit.IsPositive() || !credit.IsPositive() {
		return &apperrors.ImbalanceError{DebitTotal: debit, CreditTotal: credit, Reason: "an entry needs both a debit and a credit side"}
	}
	return nil
}

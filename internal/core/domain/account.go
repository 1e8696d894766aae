package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountCategory defines the fundamental accounting category of an account.
type AccountCategory string

const (
	Asset     AccountCategory = "ASSET"
	Liability AccountCategory = "LIABILITY"
	Equity    AccountCategory = "EQUITY"
	Revenue   AccountCategory = "REVENUE"
	Expense   AccountCategory = "EXPENSE"
)

// AccountCategories lists the closed set of categories in chart-of-accounts order.
var AccountCategories = []AccountCategory{Asset, Liability, Equity, Revenue, Expense}

// IsValid reports whether c belongs to the fixed category set.
func (c AccountCategory) IsValid() bool {
	switch c {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// ParseAccountCategory normalises user input ("asset", " Asset ") into a category.
func ParseAccountCategory(s string) (AccountCategory, bool) {
	c := AccountCategory(strings.ToUpper(strings.TrimSpace(s)))
	return c, c.IsValid()
}

// Account represents a ledger account in the chart of accounts.
// Balance is never stored; it is derived from journal lines at read time.
type Account struct {
	AccountID string          `json:"accountID"`
	Name      string          `json:"name"`
	Category  AccountCategory `json:"category"`
	AuditFields
}

// AccountPatch carries the optional fields of an account update.
type AccountPatch struct {
	Name     *string
	Category *AccountCategory
}

// IsEmpty reports whether the patch changes nothing.
func (p AccountPatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil
}

// LineTotals is the fold of every journal line that references one account.
type LineTotals struct {
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
	LineCount   int64
}

// AccountBalance is the derived balance of an account under its category's normal-balance sign.
type AccountBalance struct {
	AccountID   string
	Category    AccountCategory
	NormalSide  EntrySide
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
	Balance     decimal.Decimal
	AsOf        time.Time
}

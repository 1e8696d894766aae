package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to register a new account.
type CreateAccountRequest struct {
	Name     string `json:"name"`
	Category string `json:"category" binding:"required,ledger_category"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category" binding:"omitempty,ledger_category"`
}

// ToPatch converts the request into a domain patch. Categories are normalised to upper case.
func (r UpdateAccountRequest) ToPatch() domain.AccountPatch {
	patch := domain.AccountPatch{Name: r.Name}
	if r.Category != nil {
		c, _ := domain.ParseAccountCategory(*r.Category)
		patch.Category = &c
	}
	return patch
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string                 `json:"accountID"`
	Name          string                 `json:"name"`
	Category      domain.AccountCategory `json:"category"`
	CreatedAt     time.Time              `json:"createdAt"`
	LastUpdatedAt time.Time              `json:"lastUpdatedAt"`
}

// AccountDetailResponse is an account together with its derived balance.
type AccountDetailResponse struct {
	AccountResponse
	Balance decimal.Decimal `json:"balance"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		Name:          acc.Name,
		Category:      acc.Category,
		CreatedAt:     acc.CreatedAt,
		LastUpdatedAt: acc.LastUpdatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// AccountBalanceResponse defines the data returned for an account balance query.
// Balance is signed by the category's normal side: positive means the account grew on that side.
type AccountBalanceResponse struct {
	AccountID   string                 `json:"accountID"`
	Category    domain.AccountCategory `json:"category"`
	NormalSide  domain.EntrySide       `json:"normalSide"`
	DebitTotal  decimal.Decimal        `json:"debitTotal"`
	CreditTotal decimal.Decimal        `json:"creditTotal"`
	Balance     decimal.Decimal        `json:"balance"`
	AsOf        time.Time              `json:"asOf"`
}

// ToAccountBalanceResponse converts a domain.AccountBalance.
func ToAccountBalanceResponse(b *domain.AccountBalance) AccountBalanceResponse {
	return AccountBalanceResponse{
		AccountID:   b.AccountID,
		Category:    b.Category,
		NormalSide:  b.NormalSide,
		DebitTotal:  b.DebitTotal,
		CreditTotal: b.CreditTotal,
		Balance:     b.Balance,
		AsOf:        b.AsOf,
	}
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Category  string  `form:"category" binding:"omitempty,ledger_category"`
	Name      string  `form:"name"`
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=500"`
	NextToken *string `form:"nextToken"`
}

// ToFilter converts the query parameters into a domain filter.
func (p ListAccountsParams) ToFilter() domain.AccountFilter {
	filter := domain.AccountFilter{NameLike: p.Name}
	if p.Category != "" {
		c, _ := domain.ParseAccountCategory(p.Category)
		filter.Category = &c
	}
	return filter
}

// ListAccountsResponse wraps one page of accounts.
type ListAccountsResponse struct {
	Accounts  []AccountResponse `json:"accounts"`
	NextToken *string           `json:"nextToken,omitempty"`
}

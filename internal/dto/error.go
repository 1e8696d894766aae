package dto

import (
	"errors"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string        `json:"error"`
	Details *ErrorDetails `json:"details,omitempty"`
}

// ErrorDetails carries enough context to render a field-level message.
type ErrorDetails struct {
	Field       string           `json:"field,omitempty"`
	LineIndex   *int             `json:"lineIndex,omitempty"`
	Resource    string           `json:"resource,omitempty"`
	ID          string           `json:"id,omitempty"`
	DebitTotal  *decimal.Decimal `json:"debitTotal,omitempty" swaggertype:"string"`
	CreditTotal *decimal.Decimal `json:"creditTotal,omitempty" swaggertype:"string"`
	Policy      string           `json:"policy,omitempty"`
	Retryable   bool             `json:"retryable,omitempty"`
}

// NewErrorResponse renders err, extracting typed ledger error details when present.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{Error: message}
	if err == nil {
		return resp
	}

	var (
		validationErr *apperrors.ValidationError
		notFoundErr   *apperrors.NotFoundError
		conflictErr   *apperrors.ConflictError
		imbalanceErr  *apperrors.ImbalanceError
		policyErr     *apperrors.PolicyError
	)
	switch {
	case errors.As(err, &validationErr):
		resp.Details = &ErrorDetails{Field: validationErr.Field, LineIndex: lineIndex(validationErr.LineIndex)}
	case errors.As(err, &notFoundErr):
		resp.Details = &ErrorDetails{Resource: notFoundErr.Resource, ID: notFoundErr.ID, LineIndex: lineIndex(notFoundErr.LineIndex)}
	case errors.As(err, &conflictErr):
		resp.Details = &ErrorDetails{Resource: conflictErr.Resource, ID: conflictErr.ID}
	case errors.As(err, &imbalanceErr):
		debit, credit := imbalanceErr.DebitTotal, imbalanceErr.CreditTotal
		resp.Details = &ErrorDetails{DebitTotal: &debit, CreditTotal: &credit}
	case errors.As(err, &policyErr):
		resp.Details = &ErrorDetails{Policy: policyErr.Policy, ID: policyErr.AccountID}
	}
	return resp
}

// Retryable marks the response as safe to retry.
func (r ErrorResponse) Retryable() ErrorResponse {
	if r.Details == nil {
		r.Details = &ErrorDetails{}
	}
	r.Details.Retryable = true
	return r
}

func lineIndex(i int) *int {
	if i == apperrors.NoLine {
		return nil
	}
	return &i
}

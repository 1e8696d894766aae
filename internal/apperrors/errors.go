package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrConflict indicates that the request conflicts with the current ledger state,
// e.g. a duplicate account name or an account that is still referenced.
var ErrConflict = errors.New("conflict")

// ErrImbalance indicates that a journal entry's debit and credit totals differ
// or that one side of the entry is empty.
var ErrImbalance = errors.New("journal entry is not balanced")

// ErrPolicyViolation indicates that an optional posting policy rejected an otherwise valid entry.
var ErrPolicyViolation = errors.New("posting policy violation")

// ErrInternal indicates an unexpected infrastructure failure.
var ErrInternal = errors.New("internal error")

// NoLine is used as LineIndex when an error does not concern a specific journal line.
const NoLine = -1

// ValidationError describes malformed input down to the offending field or line.
type ValidationError struct {
	Field     string
	LineIndex int
	Message   string
}

func (e *ValidationError) Error() string {
	if e.LineIndex != NoLine {
		return fmt.Sprintf("%s: line %d: %s: %s", ErrValidation, e.LineIndex, e.Field, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError that is not tied to a journal line.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, LineIndex: NoLine, Message: message}
}

// NewLineValidationError builds a ValidationError for the journal line at index.
func NewLineValidationError(index int, field, message string) error {
	return &ValidationError{Field: field, LineIndex: index, Message: message}
}

// NotFoundError reports an unknown identifier. LineIndex is set when the id came from a journal line.
type NotFoundError struct {
	Resource  string
	ID        string
	LineIndex int
}

func (e *NotFoundError) Error() string {
	if e.LineIndex != NoLine {
		return fmt.Sprintf("%s: line %d references unknown %s %s", ErrNotFound, e.LineIndex, e.Resource, e.ID)
	}
	return fmt.Sprintf("%s: %s %s", ErrNotFound, e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError builds a NotFoundError for a resource id.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id, LineIndex: NoLine}
}

// ConflictError reports a request that is well formed but clashes with stored state.
type ConflictError struct {
	Resource string
	ID       string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s %s: %s", ErrConflict, e.Resource, e.ID, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflictError builds a ConflictError.
func NewConflictError(resource, id, reason string) error {
	return &ConflictError{Resource: resource, ID: id, Reason: reason}
}

// ImbalanceError carries both totals of a rejected journal entry.
type ImbalanceError struct {
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
	Reason      string
}

func (e *ImbalanceError) Error() string {
	msg := fmt.Sprintf("%s: debits total %s and credits total %s", ErrImbalance, e.DebitTotal.String(), e.CreditTotal.String())
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *ImbalanceError) Unwrap() error { return ErrImbalance }

// PolicyError reports a rejection by an optional posting policy.
type PolicyError struct {
	Policy    string
	AccountID string
	Message   string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s: %s: account %s: %s", ErrPolicyViolation, e.Policy, e.AccountID, e.Message)
}

func (e *PolicyError) Unwrap() error { return ErrPolicyViolation }

// AppError wraps infrastructure failures with an HTTP-ish status code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInternal
}

// NewAppError wraps err with a status code and message.
func NewAppError(code int, message string, err error) error {
	return &AppError{Code: code, Message: message, Err: err}
}

package dto

import (
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ParseDate accepts a calendar date ("2024-03-31") or an RFC 3339 timestamp.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, apperrors.NewValidationError(field, "must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
}

func parseOptionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseDate(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateJournalLineRequest is one line of a posting request. Side and amount are
// checked by the posting path so that errors come back in posting order.
type CreateJournalLineRequest struct {
	AccountID string          `json:"accountID"`
	Side      string          `json:"side"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string" example:"25000.00"`
}

// CreateJournalEntryRequest defines the data needed to post a journal entry.
type CreateJournalEntryRequest struct {
	Date        string                     `json:"date" binding:"required" example:"2024-03-31"`
	Description string                     `json:"description"`
	Lines       []CreateJournalLineRequest `json:"lines"`
}

// ToInput converts the request into a posting input.
func (r CreateJournalEntryRequest) ToInput() (domain.PostEntryInput, error) {
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return domain.PostEntryInput{}, err
	}
	lines := make([]domain.LineInput, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.LineInput{
			AccountID: strings.TrimSpace(l.AccountID),
			Side:      domain.EntrySide(strings.ToUpper(strings.TrimSpace(l.Side))),
			Amount:    l.Amount,
		}
	}
	return domain.PostEntryInput{Date: date, Description: r.Description, Lines: lines}, nil
}

// ReverseJournalEntryRequest carries optional overrides for a reversing entry.
type ReverseJournalEntryRequest struct {
	Date        *string `json:"date" example:"2024-04-01"`
	Description string  `json:"description"`
}

// ToInput converts the request into a reversal input.
func (r ReverseJournalEntryRequest) ToInput() (domain.ReverseEntryInput, error) {
	date, err := parseOptionalDate("date", r.Date)
	if err != nil {
		return domain.ReverseEntryInput{}, err
	}
	return domain.ReverseEntryInput{Date: date, Description: r.Description}, nil
}

// JournalLineResponse defines the data returned for one journal line.
type JournalLineResponse struct {
	LineID    string           `json:"lineID"`
	LineNo    int              `json:"lineNo"`
	AccountID string           `json:"accountID"`
	Side      domain.EntrySide `json:"side"`
	Amount    decimal.Decimal  `json:"amount" swaggertype:"string"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID         string                `json:"entryID"`
	Date            string                `json:"date"`
	Description     string                `json:"description"`
	ReversesEntryID *string               `json:"reversesEntryID,omitempty"`
	DebitTotal      decimal.Decimal       `json:"debitTotal" swaggertype:"string"`
	CreditTotal     decimal.Decimal       `json:"creditTotal" swaggertype:"string"`
	Lines           []JournalLineResponse `json:"lines"`
	CreatedAt       time.Time             `json:"createdAt"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to its DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	debit, credit := e.Totals()
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			LineID:    l.LineID,
			LineNo:    l.LineNo,
			AccountID: l.AccountID,
			Side:      l.Side,
			Amount:    l.Amount,
		}
	}
	return JournalEntryResponse{
		EntryID:         e.EntryID,
		Date:            e.EntryDate.UTC().Format(dateLayout),
		Description:     e.Description,
		ReversesEntryID: e.ReversesEntryID,
		DebitTotal:      debit,
		CreditTotal:     credit,
		Lines:           lines,
		CreatedAt:       e.CreatedAt,
	}
}

// ListJournalEntriesParams defines query parameters for listing journal entries.
type ListJournalEntriesParams struct {
	AccountID   string  `form:"accountId"`
	From        *string `form:"from"`
	To          *string `form:"to"`
	Description string  `form:"description"`
	Limit       int     `form:"limit" binding:"omitempty,min=1,max=500"`
	NextToken   *string `form:"nextToken"`
}

// ToFilter converts the query parameters into a domain filter.
func (p ListJournalEntriesParams) ToFilter() (domain.EntryFilter, error) {
	from, err := parseOptionalDate("from", p.From)
	if err != nil {
		return domain.EntryFilter{}, err
	}
	to, err := parseOptionalDate("to", p.To)
	if err != nil {
		return domain.EntryFilter{}, err
	}
	return domain.EntryFilter{
		AccountID:       strings.TrimSpace(p.AccountID),
		From:            from,
		To:              to,
		DescriptionLike: p.Description,
	}, nil
}

// ListJournalEntriesResponse wraps one page of journal entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

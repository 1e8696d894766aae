package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntrySide indicates whether a journal line is a debit or a credit.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// IsValid reports whether s is DEBIT or CREDIT.
func (s EntrySide) IsValid() bool {
	return s == Debit || s == Credit
}

// Opposite returns the other side; used when building reversing entries.
func (s EntrySide) Opposite() EntrySide {
	if s == Debit {
		return Credit
	}
	return Debit
}

// JournalEntry is an immutable, balanced financial event. Lines keep their posting order.
type JournalEntry struct {
	EntryID         string        `json:"entryID"`
	EntryDate       time.Time     `json:"entryDate"`
	Description     string        `json:"description"`
	ReversesEntryID *string       `json:"reversesEntryID,omitempty"`
	Lines           []JournalLine `json:"lines"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// JournalLine is owned by its entry and references exactly one account.
type JournalLine struct {
	LineID    string          `json:"lineID"`
	EntryID   string          `json:"entryID"`
	LineNo    int             `json:"lineNo"`
	AccountID string          `json:"accountID"`
	Side      EntrySide       `json:"side"`
	Amount    decimal.Decimal `json:"amount"`
}

// LineInput is one requested line of a postEntry call.
type LineInput struct {
	AccountID string
	Side      EntrySide
	Amount    decimal.Decimal
}

// PostEntryInput holds everything needed to post a journal entry.
type PostEntryInput struct {
	Date        time.Time
	Description string
	Lines       []LineInput
}

// Totals returns the debit and credit sums of the entry's lines.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		if l.Side == Debit {
			debit = debit.Add(l.Amount)
		} else {
			credit = credit.Add(l.Amount)
		}
	}
	return debit, credit
}

// ReverseEntryInput holds optional overrides for a reversing entry.
// A nil Date uses the original entry's date; an empty Description is generated.
type ReverseEntryInput struct {
	Date        *time.Time
	Description string
}

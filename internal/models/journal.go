package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// EntrySide mirrors the CHECK constraint on journal_lines.side.
type EntrySide string

// JournalEntry is a row of journal_entries.
type JournalEntry struct {
	EntryID         string         `db:"entry_id"`
	EntryDate       time.Time      `db:"entry_date"`
	Description     string         `db:"description"`
	ReversesEntryID sql.NullString `db:"reverses_entry_id"`
	CreatedAt       time.Time      `db:"created_at"`
}

// JournalLine is a row of journal_lines.
type JournalLine struct {
	LineID    string          `db:"line_id"`
	EntryID   string          `db:"entry_id"`
	LineNo    int             `db:"line_no"`
	AccountID string          `db:"account_id"`
	Side      EntrySide       `db:"side"`
	Amount    decimal.Decimal `db:"amount"`
}

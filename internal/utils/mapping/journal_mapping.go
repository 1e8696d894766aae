package mapping

import (
	"database/sql"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/models"
)

// ToModelJournalEntry converts the header of a domain JournalEntry to a model row.
// Lines are mapped separately with ToModelJournalLine.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	var reverses sql.NullString
	if d.ReversesEntryID != nil {
		reverses = sql.NullString{String: *d.ReversesEntryID, Valid: true}
	}
	return models.JournalEntry{
		EntryID:         d.EntryID,
		EntryDate:       domain.TruncateDate(d.EntryDate),
		Description:     d.Description,
		ReversesEntryID: reverses,
		CreatedAt:       d.CreatedAt,
	}
}

// ToDomainJournalEntry converts a model row and its lines to a domain JournalEntry.
func ToDomainJournalEntry(m models.JournalEntry, lines []models.JournalLine) domain.JournalEntry {
	var reverses *string
	if m.ReversesEntryID.Valid {
		id := m.ReversesEntryID.String
		reverses = &id
	}
	return domain.JournalEntry{
		EntryID:         m.EntryID,
		EntryDate:       domain.TruncateDate(m.EntryDate),
		Description:     m.Description,
		ReversesEntryID: reverses,
		Lines:           ToDomainJournalLineSlice(lines),
		CreatedAt:       m.CreatedAt,
	}
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:    d.LineID,
		EntryID:   d.EntryID,
		LineNo:    d.LineNo,
		AccountID: d.AccountID,
		Side:      models.EntrySide(d.Side),
		Amount:    d.Amount,
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:    m.LineID,
		EntryID:   m.EntryID,
		LineNo:    m.LineNo,
		AccountID: m.AccountID,
		Side:      domain.EntrySide(m.Side),
		Amount:    m.Amount,
	}
}

// ToDomainJournalLineSlice converts a slice of model lines, keeping their order.
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalLine(m)
	}
	return ds
}

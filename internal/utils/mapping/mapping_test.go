package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestJournalEntryMapping_ReversalLinkAndDate(t *testing.T) {
	original := "01HZY0000000000000000000AA"
	d := domain.JournalEntry{
		EntryID:         "01HZY0000000000000000000BB",
		EntryDate:       time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC),
		Description:     "reversal",
		ReversesEntryID: &original,
		Lines: []domain.JournalLine{
			{LineID: "l1", EntryID: "01HZY0000000000000000000BB", AccountID: "a", Side: domain.Credit, Amount: decimal.NewFromInt(3)},
		},
	}

	m := ToModelJournalEntry(d)
	assert.True(t, m.ReversesEntryID.Valid)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), m.EntryDate)

	back := ToDomainJournalEntry(m, nil)
	assert.Equal(t, original, *back.ReversesEntryID)
	assert.Empty(t, back.Lines)

	line := ToDomainJournalLine(ToModelJournalLine(d.Lines[0]))
	assert.Equal(t, d.Lines[0], line)
}

func TestJournalEntryMapping_NoReversal(t *testing.T) {
	m := ToModelJournalEntry(domain.JournalEntry{EntryID: "e"})
	assert.False(t, m.ReversesEntryID.Valid)
	assert.Nil(t, ToDomainJournalEntry(m, nil).ReversesEntryID)
}
